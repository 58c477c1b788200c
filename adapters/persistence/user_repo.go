package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio/pkg/apperror"
)

// User is an admin account of the postgres driver.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Upsert(ctx context.Context, u *User) error
}

type postgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(db *pgxpool.Pool) UserRepository {
	return &postgresUserRepo{db: db}
}

func (r *postgresUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash
		FROM users
		WHERE email = $1
	`
	u := &User{}
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, apperror.NewInternal("error when query user", err)
	}
	return u, nil
}

// Upsert creates the account or replaces its password.
func (r *postgresUserRepo) Upsert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`
	if _, err := r.db.Exec(ctx, query, u.ID, u.Email, u.PasswordHash); err != nil {
		return apperror.NewInternal("failed to save user", err)
	}
	return nil
}
