package models

import "time"

type Question struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Question) OwnerID() string { return q.UserID }

// QuestionView is a question as listed or displayed: author, live score and,
// for an identified reader, the reader's own vote.
type QuestionView struct {
	Question
	Username        string `json:"username"`
	Score           int64  `json:"score"`
	AnswerCount     int64  `json:"answer_count"`
	MyVote          int    `json:"my_vote"`
	DescriptionHTML string `json:"description_html"`
}

type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
