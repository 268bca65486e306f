package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/models"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users(id, username, email, first_name, last_name, password_hash)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING created_at, updated_at`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, wrap("create user", mapErr(err, "user not found"))
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	return u, mapErr(err, "user not found")
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
	return u, mapErr(err, "user not found")
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username)=lower($1)`, username))
	return u, mapErr(err, "user not found")
}

func (r *usersRepo) Availability(ctx context.Context, username, email string) (models.Availability, error) {
	var a models.Availability
	err := r.pool.QueryRow(ctx,
		`SELECT
		   $1 <> '' AND EXISTS(SELECT 1 FROM users WHERE lower(username)=lower($1)),
		   $2 <> '' AND EXISTS(SELECT 1 FROM users WHERE lower(email)=lower($2))`,
		username, email,
	).Scan(&a.UsernameTaken, &a.EmailTaken)
	return a, mapErr(err, "user not found")
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, oldHash, newHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1 AND password_hash=$3`,
		id, newHash, oldHash,
	)
	return rowsAffected(tag, err, "user not found")
}
