package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/repository"
)

type votesRepo struct{ pool *pgxpool.Pool }

const maxToggleAttempts = 5

// errSlotTaken means a concurrent toggle inserted the row between our
// locked read and our insert.
var errSlotTaken = errors.New("vote slot taken concurrently")

func targetColumn(t models.Target) (string, error) {
	switch t.Kind {
	case models.TargetQuestion:
		return "question_id", nil
	case models.TargetAnswer:
		return "answer_id", nil
	}
	return "", apperr.Invalid(apperr.FieldError{Field: "target", Msg: "must be question or answer"})
}

// Toggle locks the (user, target) row when it exists. When it does not,
// the partial unique index arbitrates concurrent inserts: the loser sees
// ON CONFLICT DO NOTHING return no row and starts over, this time finding
// and locking the winner's row.
func (r *votesRepo) Toggle(ctx context.Context, userID string, target models.Target, value models.VoteValue, decide repository.DecideFunc) (models.VoteAction, error) {
	col, err := targetColumn(target)
	if err != nil {
		return "", err
	}
	notFound := string(target.Kind) + " not found"

	var action models.VoteAction
	for attempt := 1; ; attempt++ {
		err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
			var (
				id      int64
				current int16
			)
			err := tx.QueryRow(ctx,
				fmt.Sprintf(`SELECT id, value FROM votes WHERE user_id=$1 AND %s=$2 FOR UPDATE`, col),
				userID, target.ID,
			).Scan(&id, &current)

			switch {
			case errors.Is(err, pgx.ErrNoRows):
				action = decide(nil, value)
				if action != models.VoteInsert {
					return nil
				}
				var inserted int64
				err = tx.QueryRow(ctx,
					fmt.Sprintf(`INSERT INTO votes(user_id, %[1]s, value) VALUES($1,$2,$3)
					 ON CONFLICT (user_id, %[1]s) WHERE %[1]s IS NOT NULL DO NOTHING
					 RETURNING id`, col),
					userID, target.ID, int16(value),
				).Scan(&inserted)
				if errors.Is(err, pgx.ErrNoRows) {
					return errSlotTaken
				}
				return err
			case err != nil:
				return err
			}

			existing := models.VoteValue(current)
			action = decide(&existing, value)
			switch action {
			case models.VoteDelete:
				_, err = tx.Exec(ctx, `DELETE FROM votes WHERE id=$1`, id)
			case models.VoteUpdate:
				_, err = tx.Exec(ctx, `UPDATE votes SET value=$2, updated_at=now() WHERE id=$1`, id, int16(value))
			}
			return err
		})
		if err == nil {
			return action, nil
		}
		if (errors.Is(err, errSlotTaken) || retryable(err)) && attempt < maxToggleAttempts {
			continue
		}
		if errors.Is(err, errSlotTaken) {
			return "", apperr.Wrap(apperr.Conflict, "vote changed concurrently, try again", err)
		}
		return "", wrap("toggle vote", mapErr(err, notFound))
	}
}

func (r *votesRepo) Score(ctx context.Context, target models.Target) (int64, error) {
	col, err := targetColumn(target)
	if err != nil {
		return 0, err
	}
	var score int64
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COALESCE(SUM(value), 0)::bigint FROM votes WHERE %s=$1`, col), target.ID,
	).Scan(&score)
	return score, mapErr(err, string(target.Kind)+" not found")
}

func (r *votesRepo) Get(ctx context.Context, userID string, target models.Target) (models.Vote, error) {
	col, err := targetColumn(target)
	if err != nil {
		return models.Vote{}, err
	}
	var (
		v     models.Vote
		value int16
	)
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, user_id, value, created_at, updated_at FROM votes WHERE user_id::text=$1 AND %s=$2`, col),
		userID, target.ID,
	).Scan(&v.ID, &v.UserID, &value, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return models.Vote{}, mapErr(err, "vote not found")
	}
	v.Target = target
	v.Value = models.VoteValue(value)
	return v, nil
}
