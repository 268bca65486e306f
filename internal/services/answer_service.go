package services

import (
	"context"

	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/policy"
	"github.com/baharkarakas/qa-forum/internal/render"
	repo "github.com/baharkarakas/qa-forum/internal/repository"
	"github.com/baharkarakas/qa-forum/internal/validate"
)

type AnswerInput struct {
	Body string `json:"body"`
}

func (in AnswerInput) normalize() (AnswerInput, error) {
	out := AnswerInput{Body: validate.Text(in.Body)}
	var errs validate.Errs
	errs.Add(validate.Length("body", out.Body, 10, 1000))
	return out, errs.Err()
}

type AnswerService struct {
	answers   repo.Answers
	questions repo.Questions
	policy    policy.Policy
	render    *render.Renderer
}

func NewAnswerService(a repo.Answers, q repo.Questions, p policy.Policy, rr *render.Renderer) *AnswerService {
	return &AnswerService{answers: a, questions: q, policy: p, render: rr}
}

func (s *AnswerService) Create(ctx context.Context, actorID string, questionID int64, in AnswerInput) (models.Answer, error) {
	if err := s.policy.Authorize(actorID, policy.Create, nil, "answer"); err != nil {
		return models.Answer{}, err
	}
	if err := checkID(questionID); err != nil {
		return models.Answer{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Answer{}, err
	}
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return models.Answer{}, err
	}
	a, err := s.answers.Create(ctx, models.Answer{UserID: actorID, QuestionID: questionID, Body: in.Body})
	if err != nil {
		return models.Answer{}, err
	}
	metrics.ContentOpsTotal.WithLabelValues("answer", "create").Inc()
	return a, nil
}

func (s *AnswerService) ListByQuestion(ctx context.Context, questionID int64, viewerID string) ([]models.AnswerView, error) {
	if err := checkID(questionID); err != nil {
		return nil, err
	}
	list, err := s.answers.ListByQuestion(ctx, questionID, viewerID)
	if err != nil {
		return nil, err
	}
	if s.render != nil {
		for i := range list {
			list[i].BodyHTML = s.render.HTML(list[i].Body)
		}
	}
	return list, nil
}

func (s *AnswerService) Update(ctx context.Context, actorID string, id int64, in AnswerInput) (models.Answer, error) {
	if err := requireActor(actorID); err != nil {
		return models.Answer{}, err
	}
	if err := checkID(id); err != nil {
		return models.Answer{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Answer{}, err
	}
	a, err := s.owned(ctx, actorID, id, policy.Update)
	if err != nil {
		return models.Answer{}, err
	}
	a.Body = in.Body
	a, err = s.answers.Update(ctx, a)
	if err != nil {
		return models.Answer{}, err
	}
	metrics.ContentOpsTotal.WithLabelValues("answer", "update").Inc()
	return a, nil
}

func (s *AnswerService) Delete(ctx context.Context, actorID string, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.owned(ctx, actorID, id, policy.Delete); err != nil {
		return err
	}
	if err := s.answers.Delete(ctx, id); err != nil {
		return err
	}
	metrics.ContentOpsTotal.WithLabelValues("answer", "delete").Inc()
	return nil
}

func (s *AnswerService) owned(ctx context.Context, actorID string, id int64, action policy.Action) (models.Answer, error) {
	if err := requireActor(actorID); err != nil {
		return models.Answer{}, err
	}
	a, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return models.Answer{}, err
	}
	if err := s.policy.Authorize(actorID, action, &a, "answer"); err != nil {
		return models.Answer{}, err
	}
	return a, nil
}
