package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/repository"
)

func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:     &usersRepo{pool},
		Questions: &questionsRepo{pool},
		Answers:   &answersRepo{pool},
		Votes:     &votesRepo{pool},
		Ping:      pool.Ping,
	}
}

// withTx runs fn in one read-committed transaction, rolled back on error.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeSerializationFail   = "40001"
	codeDeadlockDetected    = "40P01"
)

var uniqueMessages = map[string]string{
	"users_username_lower_uq": "username already taken",
	"users_email_lower_uq":    "email already registered",
}

// Default names from the unnamed REFERENCES clauses in 0001_init.
var foreignKeyMessages = map[string]string{
	"votes_user_id_fkey":       "user not found",
	"questions_user_id_fkey":   "user not found",
	"answers_user_id_fkey":     "user not found",
	"votes_question_id_fkey":   "question not found",
	"votes_answer_id_fkey":     "answer not found",
	"answers_question_id_fkey": "question not found",
}

// mapErr turns driver errors into the categories callers branch on.
// notFound is the message used when the row does not exist.
func mapErr(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.NotFound, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			msg, ok := uniqueMessages[pgErr.ConstraintName]
			if !ok {
				msg = "already exists"
			}
			return apperr.Wrap(apperr.Conflict, msg, err)
		case codeForeignKeyViolation:
			msg, ok := foreignKeyMessages[pgErr.ConstraintName]
			if !ok {
				msg = notFound
			}
			return apperr.Wrap(apperr.NotFound, msg, err)
		}
	}
	return apperr.Wrap(apperr.Internal, "database", err)
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFail || pgErr.Code == codeDeadlockDetected
	}
	return false
}

func rowsAffected(tag pgconn.CommandTag, err error, notFound string) error {
	if err != nil {
		return mapErr(err, notFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, notFound)
	}
	return nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
