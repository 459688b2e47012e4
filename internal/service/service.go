// Package service implements the account, channel, video and comment
// operations on top of a repository.Store and a media.Store.
package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/media"
)

// Services groups the operation sets served over HTTP.
type Services struct {
	Auth     *AuthService
	Channels *ChannelService
	Videos   *VideoService
	Comments *CommentService
}

// mediaRef names a hosted asset scheduled for removal.
type mediaRef struct {
	publicID string
	kind     media.Kind
}

// discardMedia deletes each asset independently. Failures are logged and
// never stop the remaining deletions.
func discardMedia(ctx context.Context, store media.Store, reason string, refs ...mediaRef) int {
	ctx = context.WithoutCancel(ctx)
	failed := 0
	for _, ref := range refs {
		if ref.publicID == "" {
			continue
		}
		if err := store.Delete(ctx, ref.publicID, ref.kind); err != nil {
			failed++
			slog.Warn("media cleanup failed",
				"reason", reason,
				"public_id", ref.publicID,
				"kind", ref.kind,
				"error", err,
			)
		}
	}
	return failed
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func floorSeconds(d float64) int {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return int(math.Floor(d))
}

// newHandle returns a short public identifier for a channel.
func newHandle() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
