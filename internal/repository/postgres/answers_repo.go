package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
)

type answersRepo struct{ pool *pgxpool.Pool }

const answerNotFound = "answer not found"

func (r *answersRepo) Create(ctx context.Context, a models.Answer) (models.Answer, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO answers(user_id, question_id, body)
		 VALUES($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		a.UserID, a.QuestionID, a.Body,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		// the only foreign keys are the author and the question
		return models.Answer{}, wrap("create answer", mapErr(err, questionNotFound))
	}
	return a, nil
}

func (r *answersRepo) GetByID(ctx context.Context, id int64) (models.Answer, error) {
	var a models.Answer
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, question_id, body, created_at, updated_at FROM answers WHERE id=$1`, id,
	).Scan(&a.ID, &a.UserID, &a.QuestionID, &a.Body, &a.CreatedAt, &a.UpdatedAt)
	return a, mapErr(err, answerNotFound)
}

func (r *answersRepo) ListByQuestion(ctx context.Context, questionID int64, viewerID string) ([]models.AnswerView, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE id=$1)`, questionID).Scan(&exists); err != nil {
		return nil, mapErr(err, questionNotFound)
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, questionNotFound)
	}

	rows, err := r.pool.Query(ctx, `
SELECT a.id, a.user_id, a.question_id, a.body, a.created_at, a.updated_at,
       u.username,
       COALESCE(SUM(v.value), 0)::bigint AS score,
       COALESCE(MAX(v.value) FILTER (WHERE v.user_id::text = $2), 0)::int AS my_vote
  FROM answers a
  JOIN users u ON u.id = a.user_id
  LEFT JOIN votes v ON v.answer_id = a.id
 WHERE a.question_id = $1
 GROUP BY a.id, u.username
 ORDER BY a.created_at DESC, a.id DESC`,
		questionID, viewerID,
	)
	if err != nil {
		return nil, wrap("list answers", mapErr(err, answerNotFound))
	}
	defer rows.Close()

	out := []models.AnswerView{}
	for rows.Next() {
		var v models.AnswerView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.QuestionID, &v.Body, &v.CreatedAt, &v.UpdatedAt,
			&v.Username, &v.Score, &v.MyVote,
		); err != nil {
			return nil, wrap("scan answer", mapErr(err, answerNotFound))
		}
		out = append(out, v)
	}
	return out, mapErr(rows.Err(), answerNotFound)
}

func (r *answersRepo) Update(ctx context.Context, a models.Answer) (models.Answer, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE answers
		    SET body=$2, updated_at=now()
		  WHERE id=$1
		  RETURNING user_id, question_id, created_at, updated_at`,
		a.ID, a.Body,
	).Scan(&a.UserID, &a.QuestionID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Answer{}, mapErr(err, answerNotFound)
	}
	return a, nil
}

// Delete relies on ON DELETE CASCADE for votes.
func (r *answersRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE id=$1`, id)
	return rowsAffected(tag, err, answerNotFound)
}
