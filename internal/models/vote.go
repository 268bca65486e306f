package models

import (
	"strconv"
	"time"

	"github.com/baharkarakas/qa-forum/internal/apperr"
)

type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

// Target is what a vote applies to: exactly one question or one answer.
// Build it with QuestionTarget or AnswerTarget.
type Target struct {
	Kind TargetKind `json:"target"`
	ID   int64      `json:"id"`
}

func QuestionTarget(id int64) Target { return Target{Kind: TargetQuestion, ID: id} }
func AnswerTarget(id int64) Target   { return Target{Kind: TargetAnswer, ID: id} }

func (t Target) Validate() error {
	switch t.Kind {
	case TargetQuestion, TargetAnswer:
	default:
		return apperr.Invalid(apperr.FieldError{Field: "target", Msg: "must be question or answer"})
	}
	if t.ID <= 0 {
		return apperr.Invalid(apperr.FieldError{Field: "id", Msg: "must be a positive integer"})
	}
	return nil
}

// Columns maps the target onto the (question_id, answer_id) pair used by the
// votes table. Exactly one of the two is non-nil.
func (t Target) Columns() (questionID, answerID *int64) {
	id := t.ID
	if t.Kind == TargetAnswer {
		return nil, &id
	}
	return &id, nil
}

func (t Target) String() string { return string(t.Kind) + ":" + strconv.FormatInt(t.ID, 10) }

type VoteValue int

const (
	Upvote   VoteValue = 1
	Downvote VoteValue = -1
)

func ParseVoteValue(v int) (VoteValue, error) {
	switch VoteValue(v) {
	case Upvote, Downvote:
		return VoteValue(v), nil
	}
	return 0, apperr.Invalid(apperr.FieldError{Field: "value", Msg: "must be 1 or -1"})
}

type VoteAction string

const (
	VoteInsert VoteAction = "insert"
	VoteDelete VoteAction = "delete"
	VoteUpdate VoteAction = "update"
)

// Decide is the toggle state machine for one (user, target) slot.
// No vote inserts, the same value retracts, the opposite value flips in place.
func Decide(existing *VoteValue, requested VoteValue) VoteAction {
	switch {
	case existing == nil:
		return VoteInsert
	case *existing == requested:
		return VoteDelete
	default:
		return VoteUpdate
	}
}

// Resulting returns the caller's vote after action was applied: 0 when retracted.
func (a VoteAction) Resulting(requested VoteValue) int {
	if a == VoteDelete {
		return 0
	}
	return int(requested)
}

type Vote struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Target    Target    `json:"target"`
	Value     VoteValue `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteResult struct {
	Target
	Action VoteAction `json:"action"`
	MyVote int        `json:"my_vote"`
	Score  int64      `json:"score"`
}
