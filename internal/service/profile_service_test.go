package service_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository/postgres"
	"github.com/dom/sticky-notes/internal/service"
	"github.com/dom/sticky-notes/internal/storage"
	"github.com/dom/sticky-notes/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(name string, data []byte) *service.AvatarUpload {
	return &service.AvatarUpload{
		Filename: name,
		Size:     int64(len(data)),
		Content:  bytes.NewReader(data),
	}
}

func TestProfileService_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	uploadDir := t.TempDir()
	store, err := storage.NewLocalStore(uploadDir, "/uploads")
	require.NoError(t, err)
	profileService := service.NewProfileService(repos.User, store, 64<<10, testutil.TestLogger(t))
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().WithUsername("owner").Build(t, testDB.DB)
	intruder, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	img := pngBytes(t)

	t.Run("rename", func(t *testing.T) {
		name := "New Name"
		user, err := profileService.Update(ctx, owner.ID, "owner", service.UpdateProfileInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)

		stored, err := repos.User.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", stored.Name)
	})

	t.Run("avatar upload and replace", func(t *testing.T) {
		first, err := profileService.Update(ctx, owner.ID, "owner", service.UpdateProfileInput{Avatar: upload("me.png", img)})
		require.NoError(t, err)
		require.NotNil(t, first.AvatarURL)
		require.NotNil(t, first.AvatarKey)
		assert.True(t, strings.HasPrefix(*first.AvatarURL, "/uploads/avatars/"), *first.AvatarURL)
		assert.True(t, strings.HasSuffix(*first.AvatarKey, ".png"))

		firstPath := filepath.Join(uploadDir, filepath.FromSlash(*first.AvatarKey))
		data, err := os.ReadFile(firstPath)
		require.NoError(t, err)
		assert.Equal(t, img, data)

		firstKey := *first.AvatarKey
		second, err := profileService.Update(ctx, owner.ID, "owner", service.UpdateProfileInput{Avatar: upload("again.PNG", img)})
		require.NoError(t, err)
		assert.NotEqual(t, firstKey, *second.AvatarKey)

		_, err = os.Stat(firstPath)
		assert.True(t, os.IsNotExist(err), "previous avatar should be removed")
	})

	rejected := []struct {
		name    string
		caller  uuid.UUID
		target  string
		input   service.UpdateProfileInput
		wantErr error
	}{
		{
			name:    "not an image",
			caller:  owner.ID,
			target:  "owner",
			input:   service.UpdateProfileInput{Avatar: upload("evil.png", []byte("#!/bin/sh\necho hi\n"))},
			wantErr: domain.ErrInvalidAvatar,
		},
		{
			name:    "extension not allowed",
			caller:  owner.ID,
			target:  "owner",
			input:   service.UpdateProfileInput{Avatar: upload("me.svg", img)},
			wantErr: domain.ErrInvalidAvatar,
		},
		{
			name:    "too large",
			caller:  owner.ID,
			target:  "owner",
			input:   service.UpdateProfileInput{Avatar: upload("big.png", make([]byte, 64<<10+1))},
			wantErr: domain.ErrAvatarTooBig,
		},
		{
			name:    "empty name",
			caller:  owner.ID,
			target:  "owner",
			input:   service.UpdateProfileInput{Name: new(string)},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "someone else's profile",
			caller:  intruder.ID,
			target:  "owner",
			input:   service.UpdateProfileInput{Avatar: upload("me.png", img)},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "unknown user",
			caller:  owner.ID,
			target:  "ghost",
			input:   service.UpdateProfileInput{},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			before, err := repos.User.GetByID(ctx, owner.ID)
			require.NoError(t, err)

			_, err = profileService.Update(ctx, tt.caller, tt.target, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			after, err := repos.User.GetByID(ctx, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, before.Name, after.Name)
			assert.Equal(t, before.AvatarKey, after.AvatarKey)
		})
	}
}

func TestProfileService_GetByUsername(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	profileService := service.NewProfileService(repos.User, nil, 1<<20, testutil.TestLogger(t))
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("visible").Build(t, testDB.DB)

	got, err := profileService.GetByUsername(ctx, "visible")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = profileService.GetByUsername(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
