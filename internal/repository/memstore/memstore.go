// Package memstore is an in-memory repository.Store. It enforces the same
// uniqueness and reference constraints as the PostgreSQL schema, so deleting
// a video that still has comments fails here as it does there.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository"
)

type subKey struct{ channel, user uuid.UUID }

type reactKey struct{ video, user uuid.UUID }

type reaction struct {
	value models.Reaction
	seq   int64
}

type subscription struct {
	seq int64
}

type userRec struct {
	u   models.User
	seq int64
}

type channelRec struct {
	c   models.Channel
	seq int64
}

type videoRec struct {
	v   models.Video
	seq int64
}

type commentRec struct {
	c   models.Comment
	seq int64
}

type state struct {
	seq       int64
	users     map[uuid.UUID]userRec
	channels  map[uuid.UUID]channelRec
	subs      map[subKey]subscription
	videos    map[uuid.UUID]videoRec
	reactions map[reactKey]reaction
	comments  map[uuid.UUID]commentRec
}

func newState() *state {
	return &state{
		users:     make(map[uuid.UUID]userRec),
		channels:  make(map[uuid.UUID]channelRec),
		subs:      make(map[subKey]subscription),
		videos:    make(map[uuid.UUID]videoRec),
		reactions: make(map[reactKey]reaction),
		comments:  make(map[uuid.UUID]commentRec),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.channels {
		c.channels[k] = v
	}
	for k, v := range st.subs {
		c.subs[k] = v
	}
	for k, v := range st.videos {
		c.videos[k] = v
	}
	for k, v := range st.reactions {
		c.reactions[k] = v
	}
	for k, v := range st.comments {
		c.comments[k] = v
	}
	return c
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store is safe for concurrent use.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState()}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() repository.UserStore       { return users{s} }
func (s *Store) Channels() repository.ChannelStore { return channels{s} }
func (s *Store) Videos() repository.VideoStore     { return videos{s} }
func (s *Store) Comments() repository.CommentStore { return comments{s} }

// InTx runs fn against a private copy of the state and publishes the copy
// only when fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, st: s.st.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// users

type users struct{ s *Store }

func (r users) Create(ctx context.Context, u *models.User) error {
	defer r.s.lock()()
	st := r.s.st
	for _, rec := range st.users {
		if rec.u.Email == u.Email {
			return errs.Conflict("Email already in use")
		}
		if rec.u.Username == u.Username {
			return errs.Conflict("Username already taken")
		}
	}
	if _, ok := st.users[u.ID]; ok {
		return errs.Conflict("user already exists")
	}
	stored := *u
	stored.Channels, stored.Subscriptions = nil, nil
	st.users[u.ID] = userRec{u: stored, seq: st.next()}
	u.Channels = []uuid.UUID{}
	u.Subscriptions = []uuid.UUID{}
	return nil
}

func (r users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()
	rec, ok := r.s.st.users[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	return r.s.st.hydrateUser(rec.u), nil
}

func (r users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.s.lock()()
	for _, rec := range r.s.st.users {
		if rec.u.Email == email {
			return r.s.st.hydrateUser(rec.u), nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (r users) EmailExists(ctx context.Context, email string) (bool, error) {
	defer r.s.lock()()
	for _, rec := range r.s.st.users {
		if rec.u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r users) UsernameExists(ctx context.Context, username string) (bool, error) {
	defer r.s.lock()()
	for _, rec := range r.s.st.users {
		if rec.u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (st *state) hydrateUser(u models.User) *models.User {
	out := u
	out.Channels = []uuid.UUID{}
	for _, rec := range st.channels {
		if rec.c.OwnerID == u.ID {
			out.Channels = append(out.Channels, rec.c.ID)
		}
	}
	type pair struct {
		id  uuid.UUID
		seq int64
	}
	var subs []pair
	for k, v := range st.subs {
		if k.user == u.ID {
			subs = append(subs, pair{k.channel, v.seq})
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })
	out.Subscriptions = make([]uuid.UUID, 0, len(subs))
	for _, p := range subs {
		out.Subscriptions = append(out.Subscriptions, p.id)
	}
	return &out
}

// channels

type channels struct{ s *Store }

func (r channels) Create(ctx context.Context, ch *models.Channel) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.users[ch.OwnerID]; !ok {
		return errs.Internal("failed to access channel", fmt.Errorf("owner %s does not exist", ch.OwnerID))
	}
	for _, rec := range st.channels {
		if rec.c.OwnerID == ch.OwnerID {
			return errs.Conflict("You already have a channel")
		}
		if rec.c.Handle == ch.Handle {
			return errs.Conflict("channel already exists")
		}
	}
	stored := *ch
	stored.SubscriberList, stored.Videos, stored.Subscribes = nil, nil, 0
	st.channels[ch.ID] = channelRec{c: stored, seq: st.next()}
	ch.SetSubscribers([]uuid.UUID{})
	ch.Videos = []uuid.UUID{}
	return nil
}

func (r channels) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	defer r.s.lock()()
	rec, ok := r.s.st.channels[id]
	if !ok {
		return nil, errs.NotFound("channel not found")
	}
	return r.s.st.hydrateChannel(rec.c), nil
}

func (r channels) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Channel, error) {
	defer r.s.lock()()
	for _, rec := range r.s.st.channels {
		if rec.c.OwnerID == ownerID {
			return r.s.st.hydrateChannel(rec.c), nil
		}
	}
	return nil, errs.NotFound("channel not found")
}

func (r channels) Update(ctx context.Context, id uuid.UUID, upd models.ChannelUpdate) (*models.Channel, error) {
	defer r.s.lock()()
	st := r.s.st
	rec, ok := st.channels[id]
	if !ok {
		return nil, errs.NotFound("channel not found")
	}
	if upd.Name != nil {
		rec.c.Name = *upd.Name
	}
	if upd.Description != nil {
		rec.c.Description = *upd.Description
	}
	if upd.BannerURL != nil {
		rec.c.BannerURL = upd.BannerURL
	}
	if upd.BannerPublicID != nil {
		rec.c.BannerPublicID = upd.BannerPublicID
	}
	rec.c.UpdatedAt = time.Now()
	st.channels[id] = rec
	return st.hydrateChannel(rec.c), nil
}

func (r channels) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.channels[id]; !ok {
		return errs.NotFound("channel not found")
	}
	for _, rec := range st.videos {
		if rec.v.ChannelID == id {
			return errs.Internal("failed to access channel", fmt.Errorf("channel %s still has videos", id))
		}
	}
	for k := range st.subs {
		if k.channel == id {
			delete(st.subs, k)
		}
	}
	delete(st.channels, id)
	return nil
}

func (r channels) IsSubscriber(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	defer r.s.lock()()
	_, ok := r.s.st.subs[subKey{channelID, userID}]
	return ok, nil
}

func (r channels) AddSubscriber(ctx context.Context, channelID, userID uuid.UUID) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.channels[channelID]; !ok {
		return errs.NotFound("channel not found")
	}
	if _, ok := st.users[userID]; !ok {
		return errs.NotFound("user not found")
	}
	key := subKey{channelID, userID}
	if _, ok := st.subs[key]; !ok {
		st.subs[key] = subscription{seq: st.next()}
	}
	return nil
}

func (r channels) RemoveSubscriber(ctx context.Context, channelID, userID uuid.UUID) error {
	defer r.s.lock()()
	delete(r.s.st.subs, subKey{channelID, userID})
	return nil
}

func (st *state) hydrateChannel(c models.Channel) *models.Channel {
	out := c
	type pair struct {
		id  uuid.UUID
		seq int64
	}
	var subs, vids []pair
	for k, v := range st.subs {
		if k.channel == c.ID {
			subs = append(subs, pair{k.user, v.seq})
		}
	}
	for id, rec := range st.videos {
		if rec.v.ChannelID == c.ID {
			vids = append(vids, pair{id, rec.seq})
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })
	sort.Slice(vids, func(i, j int) bool { return vids[i].seq < vids[j].seq })

	list := make([]uuid.UUID, 0, len(subs))
	for _, p := range subs {
		list = append(list, p.id)
	}
	out.SetSubscribers(list)
	out.Videos = make([]uuid.UUID, 0, len(vids))
	for _, p := range vids {
		out.Videos = append(out.Videos, p.id)
	}
	return &out
}

// videos

type videos struct{ s *Store }

func (r videos) Create(ctx context.Context, v *models.Video) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.channels[v.ChannelID]; !ok {
		return errs.Internal("failed to access video", fmt.Errorf("channel %s does not exist", v.ChannelID))
	}
	if _, ok := st.users[v.UploaderID]; !ok {
		return errs.Internal("failed to access video", fmt.Errorf("uploader %s does not exist", v.UploaderID))
	}
	stored := *v
	stored.Likes, stored.Dislikes, stored.Comments = nil, nil, nil
	stored.Uploader, stored.Channel = nil, nil
	st.videos[v.ID] = videoRec{v: stored, seq: st.next()}
	v.Likes = []uuid.UUID{}
	v.Dislikes = []uuid.UUID{}
	v.Comments = []uuid.UUID{}
	return nil
}

func (r videos) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	defer r.s.lock()()
	rec, ok := r.s.st.videos[id]
	if !ok {
		return nil, errs.NotFound("video not found")
	}
	return r.s.st.hydrateVideo(rec.v), nil
}

func (r videos) List(ctx context.Context, f models.VideoFilter) ([]models.Video, error) {
	defer r.s.lock()()
	st := r.s.st
	q := strings.ToLower(strings.TrimSpace(f.Query))

	var recs []videoRec
	for _, rec := range st.videos {
		if f.UploaderID != uuid.Nil && rec.v.UploaderID != f.UploaderID {
			continue
		}
		if f.ChannelID != uuid.Nil && rec.v.ChannelID != f.ChannelID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.v.Title), q) &&
			!strings.Contains(strings.ToLower(rec.v.Description), q) {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].v.CreatedAt.Equal(recs[j].v.CreatedAt) {
			return recs[i].v.CreatedAt.After(recs[j].v.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	out := make([]models.Video, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *st.hydrateVideo(rec.v))
	}
	return out, nil
}

func (r videos) Update(ctx context.Context, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	defer r.s.lock()()
	st := r.s.st
	rec, ok := st.videos[id]
	if !ok {
		return nil, errs.NotFound("video not found")
	}
	v := &rec.v
	setString(&v.Title, upd.Title)
	setString(&v.Description, upd.Description)
	setString(&v.Category, upd.Category)
	setString(&v.VideoURL, upd.VideoURL)
	setString(&v.VideoPublicID, upd.VideoPublicID)
	setString(&v.ThumbnailURL, upd.ThumbnailURL)
	setString(&v.ThumbnailPublicID, upd.ThumbnailPublicID)
	if upd.Duration != nil {
		v.Duration = *upd.Duration
	}
	v.UpdatedAt = time.Now()
	st.videos[id] = rec
	return st.hydrateVideo(rec.v), nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (r videos) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	defer r.s.lock()()
	st := r.s.st
	rec, ok := st.videos[id]
	if !ok {
		return nil, errs.NotFound("video not found")
	}
	rec.v.Views++
	st.videos[id] = rec
	return st.hydrateVideo(rec.v), nil
}

func (r videos) SetReaction(ctx context.Context, videoID, userID uuid.UUID, value models.Reaction) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.videos[videoID]; !ok {
		return errs.NotFound("video not found")
	}
	key := reactKey{videoID, userID}
	if value == models.ReactionNone {
		delete(st.reactions, key)
		return nil
	}
	st.reactions[key] = reaction{value: value, seq: st.next()}
	return nil
}

func (r videos) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.videos[id]; !ok {
		return errs.NotFound("video not found")
	}
	if err := st.checkNoComments(id); err != nil {
		return err
	}
	st.dropVideo(id)
	return nil
}

func (r videos) DeleteByChannel(ctx context.Context, channelID uuid.UUID) (int64, error) {
	defer r.s.lock()()
	st := r.s.st
	var ids []uuid.UUID
	for id, rec := range st.videos {
		if rec.v.ChannelID == channelID {
			if err := st.checkNoComments(id); err != nil {
				return 0, err
			}
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		st.dropVideo(id)
	}
	return int64(len(ids)), nil
}

func (st *state) checkNoComments(videoID uuid.UUID) error {
	for _, rec := range st.comments {
		if rec.c.VideoID == videoID {
			return errs.Internal("failed to access video", fmt.Errorf("video %s is still referenced by comments", videoID))
		}
	}
	return nil
}

func (st *state) dropVideo(id uuid.UUID) {
	for k := range st.reactions {
		if k.video == id {
			delete(st.reactions, k)
		}
	}
	delete(st.videos, id)
}

func (st *state) hydrateVideo(v models.Video) *models.Video {
	out := v
	type pair struct {
		id  uuid.UUID
		seq int64
	}
	var likes, dislikes []pair
	for k, r := range st.reactions {
		if k.video != v.ID {
			continue
		}
		if r.value == models.ReactionLike {
			likes = append(likes, pair{k.user, r.seq})
		} else {
			dislikes = append(dislikes, pair{k.user, r.seq})
		}
	}
	ordered := func(ps []pair) []uuid.UUID {
		sort.Slice(ps, func(i, j int) bool { return ps[i].seq < ps[j].seq })
		ids := make([]uuid.UUID, 0, len(ps))
		for _, p := range ps {
			ids = append(ids, p.id)
		}
		return ids
	}
	out.Likes = ordered(likes)
	out.Dislikes = ordered(dislikes)

	cmts := st.commentsOf(v.ID)
	out.Comments = make([]uuid.UUID, 0, len(cmts))
	for _, c := range cmts {
		out.Comments = append(out.Comments, c.ID)
	}

	if u, ok := st.users[v.UploaderID]; ok {
		out.Uploader = u.u.Ref()
	}
	if ch, ok := st.channels[v.ChannelID]; ok {
		out.Channel = ch.c.Ref()
	}
	return &out
}

// commentsOf returns a video's comments, newest first.
func (st *state) commentsOf(videoID uuid.UUID) []models.Comment {
	var recs []commentRec
	for _, rec := range st.comments {
		if rec.c.VideoID == videoID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].c.CreatedAt.Equal(recs[j].c.CreatedAt) {
			return recs[i].c.CreatedAt.After(recs[j].c.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]models.Comment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *st.hydrateComment(rec.c))
	}
	return out
}

// comments

type comments struct{ s *Store }

func (r comments) Create(ctx context.Context, c *models.Comment) error {
	defer r.s.lock()()
	st := r.s.st
	if _, ok := st.videos[c.VideoID]; !ok {
		return errs.NotFound("video not found")
	}
	if _, ok := st.users[c.AuthorID]; !ok {
		return errs.Internal("failed to access comment", fmt.Errorf("author %s does not exist", c.AuthorID))
	}
	stored := *c
	stored.Author = nil
	st.comments[c.ID] = commentRec{c: stored, seq: st.next()}
	return nil
}

func (r comments) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	defer r.s.lock()()
	rec, ok := r.s.st.comments[id]
	if !ok {
		return nil, errs.NotFound("comment not found")
	}
	return r.s.st.hydrateComment(rec.c), nil
}

func (r comments) ListByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Comment, error) {
	defer r.s.lock()()
	return r.s.st.commentsOf(videoID), nil
}

func (r comments) UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error) {
	defer r.s.lock()()
	st := r.s.st
	rec, ok := st.comments[id]
	if !ok {
		return nil, errs.NotFound("comment not found")
	}
	rec.c.Text = text
	rec.c.UpdatedAt = time.Now()
	st.comments[id] = rec
	return st.hydrateComment(rec.c), nil
}

func (r comments) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()
	if _, ok := r.s.st.comments[id]; !ok {
		return errs.NotFound("comment not found")
	}
	delete(r.s.st.comments, id)
	return nil
}

func (r comments) DeleteByVideos(ctx context.Context, videoIDs []uuid.UUID) (int64, error) {
	defer r.s.lock()()
	set := make(map[uuid.UUID]bool, len(videoIDs))
	for _, id := range videoIDs {
		set[id] = true
	}
	var n int64
	for id, rec := range r.s.st.comments {
		if set[rec.c.VideoID] {
			delete(r.s.st.comments, id)
			n++
		}
	}
	return n, nil
}

func (st *state) hydrateComment(c models.Comment) *models.Comment {
	out := c
	if u, ok := st.users[c.AuthorID]; ok {
		out.Author = u.u.Ref()
	}
	return &out
}
