package services

import (
	"context"
	"errors"
	"log"
	"path"
	"strings"

	"github.com/moling/userservice/config"
	"github.com/moling/userservice/internal/storage"
	"github.com/moling/userservice/types"
)

// Avatar validation failures, rejected before any storage I/O.
var (
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// extByType maps every acceptable image MIME type to the extension used in
// derived object keys. The configured allow-list narrows this set.
var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStore is the slice of the storage contract the avatar service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// AvatarService validates, addresses, and stores avatar images. Access
// control happens before this service is invoked; nothing here branches on
// the caller's identity.
type AvatarService struct {
	objects  ObjectStore
	repo     UserRepository
	maxBytes int64
	allowed  map[string]string
}

func NewAvatarService(objects ObjectStore, repo UserRepository, cfg config.AvatarConfig) *AvatarService {
	allowed := make(map[string]string, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		if ext, ok := extByType[t]; ok {
			allowed[t] = ext
		}
	}
	return &AvatarService{
		objects:  objects,
		repo:     repo,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
	}
}

// Upload validates the image and stores it under the user's derived key.
// Oversized or non-image payloads are rejected before any storage call.
// Replacing an avatar deletes the superseded object best-effort, so backends
// do not accumulate orphans.
func (s *AvatarService) Upload(ctx context.Context, userID int, data []byte, contentType string) (types.AvatarRef, error) {
	if int64(len(data)) > s.maxBytes {
		return types.AvatarRef{}, ErrPayloadTooLarge
	}
	mediaType := normalizeMediaType(contentType)
	ext, ok := s.allowed[mediaType]
	if !ok {
		return types.AvatarRef{}, ErrUnsupportedMediaType
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.AvatarRef{}, err
	}

	key := storage.AvatarKey(userID, storage.ContentHash(data), ext)
	location, err := s.objects.Put(ctx, key, data, mediaType)
	if err != nil {
		return types.AvatarRef{}, err
	}

	if err := s.repo.SetAvatarKey(ctx, userID, key); err != nil {
		return types.AvatarRef{}, err
	}

	if prev := user.AvatarKey; prev != "" && prev != key {
		if err := s.objects.Delete(ctx, prev); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("failed to delete superseded avatar %s: %v", prev, err)
		}
	}

	return types.AvatarRef{
		Key:         key,
		Location:    location,
		ContentType: mediaType,
		Size:        int64(len(data)),
	}, nil
}

// Retrieve returns the avatar bytes and content type for an object key.
func (s *AvatarService) Retrieve(ctx context.Context, key string) ([]byte, string, error) {
	data, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return data, contentTypeForKey(key), nil
}

// Remove deletes the user's current avatar, if any.
func (s *AvatarService) Remove(ctx context.Context, userID int) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarKey == "" {
		return storage.ErrObjectNotFound
	}
	if err := s.objects.Delete(ctx, user.AvatarKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	return s.repo.SetAvatarKey(ctx, userID, "")
}

func normalizeMediaType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func contentTypeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for mediaType, e := range extByType {
		if e == ext {
			return mediaType
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg"
	}
	return "application/octet-stream"
}
