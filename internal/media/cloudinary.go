package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/vidshare/backend/internal/errs"
)

// Cloudinary stores media with the Cloudinary upload API.
type Cloudinary struct {
	cld  *cloudinary.Cloudinary
	root string
}

func NewCloudinary(cloudName, apiKey, apiSecret, rootFolder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, root: rootFolder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, data []byte, kind Kind, folder string) (*Asset, error) {
	if err := Validate(data, kind); err != nil {
		return nil, err
	}

	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       Folder(c.root, folder),
		ResourceType: string(kind),
	})
	if err != nil {
		return nil, errs.UploadFailed("Failed to upload file", err)
	}
	if resp.Error.Message != "" {
		return nil, errs.UploadFailed("Failed to upload file", fmt.Errorf("cloudinary: %s", resp.Error.Message))
	}

	asset := &Asset{URL: resp.SecureURL, PublicID: resp.PublicID}
	if kind == KindVideo {
		asset.Duration = durationOf(resp.Response)
	}

	slog.Debug("media uploaded", "public_id", asset.PublicID, "kind", kind, "bytes", len(data))
	return asset, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string, kind Kind) error {
	if publicID == "" {
		return nil
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete %s: %s", publicID, resp.Error.Message)
	}
	return nil
}

// durationOf reads the duration field from the raw upload response.
func durationOf(raw interface{}) float64 {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return 0
	}
	d, ok := m["duration"].(float64)
	if !ok || math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}
