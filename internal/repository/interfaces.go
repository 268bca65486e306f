package repository

import (
	"context"

	"github.com/baharkarakas/qa-forum/internal/models"
)

// Lookups return an apperr NotFound error when the row does not exist and
// an apperr Conflict error when a uniqueness constraint rejects a write.

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Availability(ctx context.Context, username, email string) (models.Availability, error)
	// UpdatePasswordHash swaps the hash only while it still equals oldHash;
	// otherwise it reports NotFound.
	UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) error
}

type Questions interface {
	Create(ctx context.Context, q models.Question) (models.Question, error)
	GetByID(ctx context.Context, id int64) (models.Question, error)
	// View loads a question with its author and live score. viewerID may be
	// empty for anonymous readers.
	View(ctx context.Context, id int64, viewerID string) (models.QuestionView, error)
	List(ctx context.Context, page models.Page, viewerID string) ([]models.QuestionView, error)
	Update(ctx context.Context, q models.Question) (models.Question, error)
	// Delete removes the question together with its answers and every vote on either.
	Delete(ctx context.Context, id int64) error
}

type Answers interface {
	Create(ctx context.Context, a models.Answer) (models.Answer, error)
	GetByID(ctx context.Context, id int64) (models.Answer, error)
	ListByQuestion(ctx context.Context, questionID int64, viewerID string) ([]models.AnswerView, error)
	Update(ctx context.Context, a models.Answer) (models.Answer, error)
	// Delete removes the answer and every vote on it.
	Delete(ctx context.Context, id int64) error
}

// DecideFunc chooses what to do with a (user, target) vote slot given the
// value currently stored there, nil when there is none.
type DecideFunc func(existing *models.VoteValue, requested models.VoteValue) models.VoteAction

type Votes interface {
	// Toggle reads the caller's current vote on target, asks decide what to
	// do and applies it. The read and the write are serialized against any
	// other Toggle on the same (userID, target).
	Toggle(ctx context.Context, userID string, target models.Target, value models.VoteValue, decide DecideFunc) (models.VoteAction, error)
	// Score is the sum of vote values on target, 0 without votes.
	Score(ctx context.Context, target models.Target) (int64, error)
	Get(ctx context.Context, userID string, target models.Target) (models.Vote, error)
}

// Store bundles the repositories one backend provides.
type Store struct {
	Users     Users
	Questions Questions
	Answers   Answers
	Votes     Votes
	Ping      func(ctx context.Context) error
}
