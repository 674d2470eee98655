package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"trainwise/fitness-app/internal/storage"

	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported content type, expected image/jpeg, image/png or image/webp")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadTicket tells the client where to PUT a file and how it will be served.
type UploadTicket struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"object_key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// newImageObjectKey builds prefix/<owner>/<uuid><ext> for an image upload.
func newImageObjectKey(prefix, owner, contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, owner, uuid.NewString(), ext), nil
}

func presignImageUpload(ctx context.Context, files storage.FileStorage, key, contentType string) (*UploadTicket, error) {
	uploadURL, err := files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, storeError("presign upload", err)
	}
	return &UploadTicket{
		UploadURL: uploadURL,
		ObjectKey: key,
		PublicURL: files.PublicURL(key),
		ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}
