package services

import (
	"context"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/policy"
	"github.com/baharkarakas/qa-forum/internal/render"
	repo "github.com/baharkarakas/qa-forum/internal/repository"
	"github.com/baharkarakas/qa-forum/internal/validate"
)

type QuestionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in QuestionInput) normalize() (QuestionInput, error) {
	out := QuestionInput{Title: validate.Text(in.Title), Description: validate.Text(in.Description)}
	var errs validate.Errs
	errs.Add(validate.Length("title", out.Title, 5, 100))
	errs.Add(validate.Length("description", out.Description, 10, 1000))
	return out, errs.Err()
}

type QuestionService struct {
	r      repo.Questions
	policy policy.Policy
	render *render.Renderer
}

func NewQuestionService(r repo.Questions, p policy.Policy, rr *render.Renderer) *QuestionService {
	return &QuestionService{r: r, policy: p, render: rr}
}

func (s *QuestionService) Create(ctx context.Context, actorID string, in QuestionInput) (models.Question, error) {
	if err := s.policy.Authorize(actorID, policy.Create, nil, "question"); err != nil {
		return models.Question{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Question{}, err
	}
	q, err := s.r.Create(ctx, models.Question{UserID: actorID, Title: in.Title, Description: in.Description})
	if err != nil {
		return models.Question{}, err
	}
	metrics.ContentOpsTotal.WithLabelValues("question", "create").Inc()
	return q, nil
}

func (s *QuestionService) Get(ctx context.Context, id int64, viewerID string) (models.QuestionView, error) {
	if err := checkID(id); err != nil {
		return models.QuestionView{}, err
	}
	v, err := s.r.View(ctx, id, viewerID)
	if err != nil {
		return models.QuestionView{}, err
	}
	v.DescriptionHTML = s.html(v.Description)
	return v, nil
}

func (s *QuestionService) List(ctx context.Context, page models.Page, viewerID string) ([]models.QuestionView, error) {
	list, err := s.r.List(ctx, page.Normalize(), viewerID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].DescriptionHTML = s.html(list[i].Description)
	}
	return list, nil
}

func (s *QuestionService) Update(ctx context.Context, actorID string, id int64, in QuestionInput) (models.Question, error) {
	if err := requireActor(actorID); err != nil {
		return models.Question{}, err
	}
	if err := checkID(id); err != nil {
		return models.Question{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Question{}, err
	}
	q, err := s.owned(ctx, actorID, id, policy.Update)
	if err != nil {
		return models.Question{}, err
	}
	q.Title, q.Description = in.Title, in.Description
	q, err = s.r.Update(ctx, q)
	if err != nil {
		return models.Question{}, err
	}
	metrics.ContentOpsTotal.WithLabelValues("question", "update").Inc()
	return q, nil
}

// Delete removes the question along with its answers and all their votes.
func (s *QuestionService) Delete(ctx context.Context, actorID string, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, err := s.owned(ctx, actorID, id, policy.Delete); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return err
	}
	metrics.ContentOpsTotal.WithLabelValues("question", "delete").Inc()
	return nil
}

// owned looks the question up and runs the ownership gate. A missing
// question is NotFound before ownership is considered.
func (s *QuestionService) owned(ctx context.Context, actorID string, id int64, action policy.Action) (models.Question, error) {
	if err := requireActor(actorID); err != nil {
		return models.Question{}, err
	}
	q, err := s.r.GetByID(ctx, id)
	if err != nil {
		return models.Question{}, err
	}
	if err := s.policy.Authorize(actorID, action, &q, "question"); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

func (s *QuestionService) html(src string) string {
	if s.render == nil {
		return ""
	}
	return s.render.HTML(src)
}

func requireActor(actorID string) error {
	if actorID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	return nil
}

func checkID(id int64) error {
	if id <= 0 {
		return apperr.Invalid(apperr.FieldError{Field: "id", Msg: "must be a positive integer"})
	}
	return nil
}
