package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role}
}

type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}

	return &u, nil
}

func (r *UsersRepo) Create(ctx context.Context, username, passwordHash string, role Role) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	span.SetAttributes(attribute.String("role", string(role)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	u := User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`,
		username, passwordHash, role,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}

	return &u, nil
}

// EnsureAdmin creates the admin user when missing. An existing user is left untouched.
func (r *UsersRepo) EnsureAdmin(ctx context.Context, username, passwordHash string) (*User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return r.Create(ctx, username, passwordHash, RoleAdmin)
}
