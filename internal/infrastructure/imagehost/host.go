// Package imagehost stores profile images in object storage and exposes them
// through a public base URL.
package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

const MaxImageSize = 5 << 20

// Rejected uploads surface to clients as validation errors.
var (
	ErrNotAnImage    = domain.NewValidationError("profile picture must be an image")
	ErrImageTooLarge = domain.NewValidationError("profile picture must be at most 5MB")
)

// objectStore is the minimal object storage surface a Host needs.
type objectStore interface {
	PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// Host implements ports.ImageHost on top of an object store. The object key
// doubles as the external id.
type Host struct {
	store     objectStore
	folder    string
	publicURL string
	newID     func() string
}

func newHost(store objectStore, folder, publicURL string) *Host {
	return &Host{
		store:     store,
		folder:    strings.Trim(folder, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		newID:     uuid.NewString,
	}
}

// Upload stores the image under a fresh key. The type is sniffed from the
// bytes; the client supplied Content-Type is ignored.
func (h *Host) Upload(ctx context.Context, img ports.ImageUpload) (*domain.ProfileImage, error) {
	if img.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(img.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrNotAnImage
	}

	key := h.objectKey(img.Filename)
	if err := h.store.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), mtype.String()); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	return &domain.ProfileImage{ExternalID: key, URL: h.publicURL + "/" + key}, nil
}

func (h *Host) Destroy(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}
	if err := h.store.DeleteObject(ctx, externalID); err != nil {
		return fmt.Errorf("delete %s: %w", externalID, err)
	}
	return nil
}

func (h *Host) objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if h.folder == "" {
		return h.newID() + ext
	}
	return h.folder + "/" + h.newID() + ext
}
