package models

import "time"

type Answer struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID int64     `json:"question_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Answer) OwnerID() string { return a.UserID }

type AnswerView struct {
	Answer
	Username string `json:"username"`
	Score    int64  `json:"score"`
	MyVote   int    `json:"my_vote"`
	BodyHTML string `json:"body_html"`
}
