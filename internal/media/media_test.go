package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidshare/backend/internal/errs"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	mp4Bytes  = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		kind    Kind
		wantErr bool
	}{
		{"png image", pngBytes, KindImage, false},
		{"jpeg image", jpegBytes, KindImage, false},
		{"mp4 video", mp4Bytes, KindVideo, false},
		{"mp4 as image", mp4Bytes, KindImage, true},
		{"png as video", pngBytes, KindVideo, true},
		{"plain text", []byte("hello, world"), KindImage, true},
		{"empty", nil, KindVideo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.data, tt.kind)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errs.ErrValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFolder(t *testing.T) {
	assert.Equal(t, "youtube-clone/videos", Folder("youtube-clone", FolderVideos))
	assert.Equal(t, "profiles", Folder("", FolderProfiles))
}

func TestDurationOf(t *testing.T) {
	assert.Equal(t, 12.7, durationOf(map[string]interface{}{"duration": 12.7}))
	assert.Zero(t, durationOf(map[string]interface{}{"duration": "12"}))
	assert.Zero(t, durationOf(nil))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.VideoDuration = 3.9

	v, err := m.Upload(ctx, mp4Bytes, KindVideo, FolderVideos)
	require.NoError(t, err)
	assert.Equal(t, 3.9, v.Duration)
	assert.True(t, m.Has(v.PublicID))

	_, err = m.Upload(ctx, []byte("nope"), KindImage, FolderProfiles)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, v.PublicID, KindVideo))
	assert.False(t, m.Has(v.PublicID))
	assert.Equal(t, []string{v.PublicID}, m.Deleted())

	m.FailUploads = true
	_, err = m.Upload(ctx, pngBytes, KindImage, FolderProfiles)
	assert.True(t, errors.Is(err, errs.ErrUploadFailed))
}
