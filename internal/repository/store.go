package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vidshare/backend/internal/database"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

// UserStore persists users. Reads populate the derived channel and
// subscription references.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// ChannelStore persists channels and the subscription membership that both
// Channel.SubscriberList and User.Subscriptions are read from.
type ChannelStore interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Channel, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ChannelUpdate) (*models.Channel, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsSubscriber(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	AddSubscriber(ctx context.Context, channelID, userID uuid.UUID) error
	RemoveSubscriber(ctx context.Context, channelID, userID uuid.UUID) error
}

// VideoStore persists videos and their reactions.
type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	Update(ctx context.Context, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (*models.Video, error)
	SetReaction(ctx context.Context, videoID, userID uuid.UUID, r models.Reaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByChannel(ctx context.Context, channelID uuid.UUID) (int64, error)
}

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Comment, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByVideos(ctx context.Context, videoIDs []uuid.UUID) (int64, error)
}

// Store groups the entity stores. InTx runs fn against stores bound to a
// single transaction; nested calls reuse the outer transaction.
type Store interface {
	Users() UserStore
	Channels() ChannelStore
	Videos() VideoStore
	Comments() CommentStore
	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is the Store backed by PostgreSQL.
type PostgresStore struct {
	db       *database.DB
	tx       *sql.Tx
	users    *UserRepository
	channels *ChannelRepository
	videos   *VideoRepository
	comments *CommentRepository
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return newPostgresStore(db, nil)
}

func newPostgresStore(db *database.DB, tx *sql.Tx) *PostgresStore {
	var q DBTX = db
	if tx != nil {
		q = tx
	}
	return &PostgresStore{
		db:       db,
		tx:       tx,
		users:    NewUserRepository(q),
		channels: NewChannelRepository(q),
		videos:   NewVideoRepository(q),
		comments: NewCommentRepository(q),
	}
}

func (s *PostgresStore) Users() UserStore       { return s.users }
func (s *PostgresStore) Channels() ChannelStore { return s.channels }
func (s *PostgresStore) Videos() VideoStore     { return s.videos }
func (s *PostgresStore) Comments() CommentStore { return s.comments }

func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		return fn(newPostgresStore(s.db, tx))
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const uniqueViolation = "23505"

// mapError translates driver errors into the errs taxonomy. what names the
// entity for user-facing messages.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(what + " not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errs.Wrap(errs.KindConflict, conflictMessage(what, pqErr.Constraint), err)
	}
	return errs.Internal(fmt.Sprintf("failed to access %s", what), err)
}

func conflictMessage(what, constraint string) string {
	switch {
	case strings.Contains(constraint, "email"):
		return "Email already in use"
	case strings.Contains(constraint, "username"):
		return "Username already taken"
	case strings.Contains(constraint, "owner"):
		return "You already have a channel"
	default:
		return what + " already exists"
	}
}

// parseUUIDs converts the text form of a uuid[] column.
func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uuid %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// likePattern builds an ILIKE pattern matching q as a literal substring.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
