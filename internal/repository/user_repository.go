package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.id, u.username, u.email, u.password_hash, u.profile_pic, u.created_at, u.updated_at,
	ARRAY(SELECT c.id::text FROM channels c WHERE c.owner_id = u.id),
	ARRAY(SELECT s.channel_id::text FROM channel_subscriptions s WHERE s.user_id = u.id ORDER BY s.created_at)
`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, profile_pic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfilePic,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return mapError(err, "user")
	}

	user.Channels = []uuid.UUID{}
	user.Subscriptions = []uuid.UUID{}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var channels, subs []string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePic,
		&user.CreatedAt,
		&user.UpdatedAt,
		pq.Array(&channels),
		pq.Array(&subs),
	)
	if err != nil {
		return nil, mapError(err, "user")
	}

	if user.Channels, err = parseUUIDs(channels); err != nil {
		return nil, err
	}
	if user.Subscriptions, err = parseUUIDs(subs); err != nil {
		return nil, err
	}
	return user, nil
}

// EmailExists reports whether a user already registered with email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// UsernameExists reports whether username is taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}
