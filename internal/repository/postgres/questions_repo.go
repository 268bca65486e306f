package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/qa-forum/internal/models"
)

type questionsRepo struct{ pool *pgxpool.Pool }

const questionNotFound = "question not found"

// questionViewSelect computes the score and the viewer's vote at read time.
// $1 is the viewer id, compared as text so anonymous readers can pass ''.
const questionViewSelect = `
SELECT q.id, q.user_id, q.title, q.description, q.created_at, q.updated_at,
       u.username,
       COALESCE((SELECT SUM(v.value) FROM votes v WHERE v.question_id = q.id), 0)::bigint AS score,
       (SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id)::bigint AS answer_count,
       COALESCE((SELECT v.value FROM votes v WHERE v.question_id = q.id AND v.user_id::text = $1), 0)::int AS my_vote
  FROM questions q
  JOIN users u ON u.id = q.user_id`

func scanQuestionView(row rowScanner) (models.QuestionView, error) {
	var v models.QuestionView
	err := row.Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.CreatedAt, &v.UpdatedAt,
		&v.Username, &v.Score, &v.AnswerCount, &v.MyVote,
	)
	return v, err
}

func (r *questionsRepo) Create(ctx context.Context, q models.Question) (models.Question, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions(user_id, title, description)
		 VALUES($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		q.UserID, q.Title, q.Description,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return models.Question{}, wrap("create question", mapErr(err, "user not found"))
	}
	return q, nil
}

func (r *questionsRepo) GetByID(ctx context.Context, id int64) (models.Question, error) {
	var q models.Question
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at FROM questions WHERE id=$1`, id,
	).Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &q.CreatedAt, &q.UpdatedAt)
	return q, mapErr(err, questionNotFound)
}

func (r *questionsRepo) View(ctx context.Context, id int64, viewerID string) (models.QuestionView, error) {
	v, err := scanQuestionView(r.pool.QueryRow(ctx, questionViewSelect+` WHERE q.id = $2`, viewerID, id))
	return v, mapErr(err, questionNotFound)
}

func (r *questionsRepo) List(ctx context.Context, page models.Page, viewerID string) ([]models.QuestionView, error) {
	page = page.Normalize()
	rows, err := r.pool.Query(ctx,
		questionViewSelect+` ORDER BY q.created_at DESC, q.id DESC LIMIT $2 OFFSET $3`,
		viewerID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, wrap("list questions", mapErr(err, questionNotFound))
	}
	defer rows.Close()

	out := []models.QuestionView{}
	for rows.Next() {
		v, err := scanQuestionView(rows)
		if err != nil {
			return nil, wrap("scan question", mapErr(err, questionNotFound))
		}
		out = append(out, v)
	}
	return out, mapErr(rows.Err(), questionNotFound)
}

func (r *questionsRepo) Update(ctx context.Context, q models.Question) (models.Question, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE questions
		    SET title=$2, description=$3, updated_at=now()
		  WHERE id=$1
		  RETURNING user_id, created_at, updated_at`,
		q.ID, q.Title, q.Description,
	).Scan(&q.UserID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return models.Question{}, mapErr(err, questionNotFound)
	}
	return q, nil
}

// Delete relies on ON DELETE CASCADE for answers and votes.
func (r *questionsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	return rowsAffected(tag, err, questionNotFound)
}
