package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
)

// Memory keeps uploads in process. It serves development runs without
// hosting credentials and tests that need to observe media calls.
type Memory struct {
	mu      sync.Mutex
	assets  map[string][]byte
	deleted []string

	// VideoDuration is reported for every video upload.
	VideoDuration float64
	// FailUploads and FailDeletes make the corresponding calls error.
	FailUploads bool
	FailDeletes bool
}

func NewMemory() *Memory {
	return &Memory{assets: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, data []byte, kind Kind, folder string) (*Asset, error) {
	if err := Validate(data, kind); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploads {
		return nil, errs.UploadFailed("Failed to upload file", fmt.Errorf("upload disabled"))
	}

	id := folder + "/" + uuid.NewString()
	m.assets[id] = data
	asset := &Asset{URL: "memory://" + id, PublicID: id}
	if kind == KindVideo {
		asset.Duration = m.VideoDuration
	}
	return asset, nil
}

func (m *Memory) Delete(ctx context.Context, publicID string, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes {
		return fmt.Errorf("failed to delete %s: delete disabled", publicID)
	}
	delete(m.assets, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}

// Has reports whether publicID is currently stored.
func (m *Memory) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[publicID]
	return ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

// Deleted returns every public id passed to Delete, in call order.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
