package services

import (
	"context"
	"log/slog"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/models"
	repo "github.com/baharkarakas/qa-forum/internal/repository"
)

type VoteService struct {
	votes     repo.Votes
	questions repo.Questions
	answers   repo.Answers
	log       *slog.Logger
}

func NewVoteService(v repo.Votes, q repo.Questions, a repo.Answers, log *slog.Logger) *VoteService {
	return &VoteService{votes: v, questions: q, answers: a, log: log}
}

// Toggle applies value to the actor's vote on target: first vote inserts,
// repeating the same value retracts, the opposite value flips. It returns
// the action taken and the target's fresh score.
func (s *VoteService) Toggle(ctx context.Context, actorID string, target models.Target, value int) (models.VoteResult, error) {
	if actorID == "" {
		return models.VoteResult{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	v, err := models.ParseVoteValue(value)
	if err != nil {
		return models.VoteResult{}, err
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return models.VoteResult{}, err
	}

	action, err := s.votes.Toggle(ctx, actorID, target, v, models.Decide)
	if err != nil {
		return models.VoteResult{}, err
	}
	metrics.VotesTotal.WithLabelValues(string(target.Kind), string(action)).Inc()

	score, err := s.votes.Score(ctx, target)
	if err != nil {
		return models.VoteResult{}, err
	}
	s.log.Debug("vote toggled",
		slog.String("user_id", actorID),
		slog.String("target", target.String()),
		slog.String("action", string(action)),
		slog.Int64("score", score),
	)
	return models.VoteResult{Target: target, Action: action, MyVote: action.Resulting(v), Score: score}, nil
}

// Score is always computed from the vote rows, never cached.
func (s *VoteService) Score(ctx context.Context, target models.Target) (int64, error) {
	if err := s.ensureTarget(ctx, target); err != nil {
		return 0, err
	}
	return s.votes.Score(ctx, target)
}

func (s *VoteService) ensureTarget(ctx context.Context, target models.Target) error {
	if err := target.Validate(); err != nil {
		return err
	}
	var err error
	switch target.Kind {
	case models.TargetQuestion:
		_, err = s.questions.GetByID(ctx, target.ID)
	case models.TargetAnswer:
		_, err = s.answers.GetByID(ctx, target.ID)
	}
	return err
}

// MyVote is the caller's current vote on target: 1, -1, or 0 without one.
func (s *VoteService) MyVote(ctx context.Context, actorID string, target models.Target) (int, error) {
	if actorID == "" {
		return 0, nil
	}
	if err := target.Validate(); err != nil {
		return 0, err
	}
	v, err := s.votes.Get(ctx, actorID, target)
	switch {
	case apperr.Is(err, apperr.NotFound):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return int(v.Value), nil
}
