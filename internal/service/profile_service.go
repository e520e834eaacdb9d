package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository"
	"github.com/dom/sticky-notes/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

const avatarKeyPrefix = "avatars"

// allowedAvatarExts maps accepted file extensions to the decoded image format.
var allowedAvatarExts = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

type ProfileService struct {
	userRepo       repository.UserRepository
	store          storage.ObjectStore
	maxAvatarBytes int64
	log            *zap.Logger
}

func NewProfileService(userRepo repository.UserRepository, store storage.ObjectStore, maxAvatarBytes int64, log *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo:       userRepo,
		store:          store,
		maxAvatarBytes: maxAvatarBytes,
		log:            log.Named("profile"),
	}
}

// AvatarUpload is an uploaded image. Content must support seeking so the
// header can be inspected before the upload.
type AvatarUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// UpdateProfileInput contains the data for updating a profile; nil fields are left unchanged.
type UpdateProfileInput struct {
	Name   *string
	Avatar *AvatarUpload
}

// GetByUsername returns the public profile of a user
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update changes the name and/or avatar of the caller's own profile
func (s *ProfileService) Update(ctx context.Context, callerID uuid.UUID, username string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID != callerID {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		n := utf8.RuneCountInString(*input.Name)
		if n < 1 || n > domain.NameMaxLen {
			return nil, domain.ErrInvalidName
		}
		user.Name = *input.Name
	}

	var newKey string
	oldKey := user.AvatarKey
	if input.Avatar != nil {
		key, url, err := s.storeAvatar(ctx, input.Avatar)
		if err != nil {
			return nil, err
		}
		newKey = key
		user.AvatarKey = &key
		user.AvatarURL = &url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if newKey != "" {
			s.deleteObject(ctx, newKey)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if newKey != "" && oldKey != nil && *oldKey != newKey {
		s.deleteObject(ctx, *oldKey)
	}

	return user, nil
}

func (s *ProfileService) storeAvatar(ctx context.Context, avatar *AvatarUpload) (key, url string, err error) {
	if avatar.Size <= 0 || avatar.Content == nil {
		return "", "", domain.ErrInvalidAvatar
	}
	if avatar.Size > s.maxAvatarBytes {
		return "", "", domain.ErrAvatarTooBig
	}

	ext := strings.ToLower(filepath.Ext(avatar.Filename))
	if _, ok := allowedAvatarExts[ext]; !ok {
		return "", "", domain.ErrInvalidAvatar
	}

	// Decode only the header; the extension alone is not trusted.
	_, format, err := image.DecodeConfig(avatar.Content)
	if err != nil {
		return "", "", domain.ErrInvalidAvatar
	}
	if _, err := avatar.Content.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind avatar: %w", err)
	}

	storedExt := format
	if format == "jpeg" {
		storedExt = "jpg"
	}
	if _, ok := allowedAvatarExts["."+storedExt]; !ok {
		return "", "", domain.ErrInvalidAvatar
	}

	key = storage.NewKey(avatarKeyPrefix, storedExt)
	url, err = s.store.Put(ctx, key, "image/"+format, avatar.Content, avatar.Size)
	if err != nil {
		return "", "", fmt.Errorf("store avatar: %w", err)
	}
	return key, url, nil
}

func (s *ProfileService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete avatar object", zap.String("key", key), zap.Error(err))
	}
}
