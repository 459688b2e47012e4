package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository"
)

func seedUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Username: name, Email: name + "@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedChannel(t *testing.T, s *Store, owner *models.User) *models.Channel {
	t.Helper()
	ch := &models.Channel{ID: uuid.New(), Handle: uuid.NewString()[:12], OwnerID: owner.ID, Name: owner.Username + "'s channel"}
	require.NoError(t, s.Channels().Create(context.Background(), ch))
	return ch
}

func seedVideo(t *testing.T, s *Store, ch *models.Channel, title string) *models.Video {
	t.Helper()
	v := &models.Video{ID: uuid.New(), Title: title, UploaderID: ch.OwnerID, ChannelID: ch.ID, CreatedAt: time.Now()}
	require.NoError(t, s.Videos().Create(context.Background(), v))
	return v
}

func TestUsers_UniqueConstraints(t *testing.T) {
	s := New()
	seedUser(t, s, "alice")

	err := s.Users().Create(context.Background(), &models.User{ID: uuid.New(), Username: "other", Email: "alice@example.com"})
	assert.True(t, errors.Is(err, errs.ErrConflict))

	err = s.Users().Create(context.Background(), &models.User{ID: uuid.New(), Username: "alice", Email: "new@example.com"})
	assert.True(t, errors.Is(err, errs.ErrConflict))
}

func TestChannels_OnePerOwnerAndDerivedLinks(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	ch := seedChannel(t, s, alice)

	err := s.Channels().Create(ctx, &models.Channel{ID: uuid.New(), Handle: "another", OwnerID: alice.ID, Name: "second"})
	assert.True(t, errors.Is(err, errs.ErrConflict))

	require.NoError(t, s.Channels().AddSubscriber(ctx, ch.ID, bob.ID))

	got, err := s.Channels().GetByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.SubscriberList)
	assert.Equal(t, 1, got.Subscribes)

	u, err := s.Users().GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ch.ID}, u.Subscriptions)

	owner, err := s.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ch.ID}, owner.Channels)
}

func TestVideos_DeleteRejectedWhileCommentsRemain(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	ch := seedChannel(t, s, alice)
	v := seedVideo(t, s, ch, "clip")

	require.NoError(t, s.Comments().Create(ctx, &models.Comment{ID: uuid.New(), Text: "hi", AuthorID: alice.ID, VideoID: v.ID}))

	assert.Error(t, s.Videos().Delete(ctx, v.ID))
	assert.Error(t, s.Channels().Delete(ctx, ch.ID))

	n, err := s.Comments().DeleteByVideos(ctx, []uuid.UUID{v.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, s.Videos().Delete(ctx, v.ID))
	require.NoError(t, s.Channels().Delete(ctx, ch.ID))
}

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	ch := seedChannel(t, s, alice)
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Channels().AddSubscriber(ctx, ch.ID, alice.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ok, err := s.Channels().IsSubscriber(ctx, ch.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.InTx(ctx, func(tx repository.Store) error {
		return tx.Channels().AddSubscriber(ctx, ch.ID, alice.ID)
	})
	require.NoError(t, err)

	ok, err = s.Channels().IsSubscriber(ctx, ch.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVideos_ListNewestFirstWithQuery(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	ch := seedChannel(t, s, alice)
	first := seedVideo(t, s, ch, "Go tutorial")
	seedVideo(t, s, ch, "Cooking pasta")
	third := seedVideo(t, s, ch, "Advanced go")

	all, err := s.Videos().List(ctx, models.VideoFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)

	hits, err := s.Videos().List(ctx, models.VideoFilter{Query: " GO "})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, third.ID, hits[0].ID)
	assert.Equal(t, first.ID, hits[1].ID)
	assert.Equal(t, "alice", hits[0].Uploader.Username)
	assert.Equal(t, ch.Name, hits[0].Channel.Name)
}

func TestVideos_ReactionsAreDisjoint(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := seedUser(t, s, "alice")
	ch := seedChannel(t, s, alice)
	v := seedVideo(t, s, ch, "clip")

	require.NoError(t, s.Videos().SetReaction(ctx, v.ID, alice.ID, models.ReactionLike))
	require.NoError(t, s.Videos().SetReaction(ctx, v.ID, alice.ID, models.ReactionDislike))

	got, err := s.Videos().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Equal(t, []uuid.UUID{alice.ID}, got.Dislikes)
}
