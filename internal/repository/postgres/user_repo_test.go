package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository/postgres"
	"github.com/dom/sticky-notes/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUser(username, email string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com")))

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "distinct user",
			user: newUser("bob", "bob@example.com"),
		},
		{
			name:    "duplicate username",
			user:    newUser("alice", "other@example.com"),
			wantErr: gorm.ErrDuplicatedKey,
		},
		{
			name:    "duplicate email",
			user:    newUser("alice2", "alice@example.com"),
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("lookup_user").
		WithEmail("lookup@example.com").
		Build(t, testDB.DB)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, got.Username)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "lookup_user")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "lookup@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestUserRepository_Exists(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithUsername("taken").
		WithEmail("taken@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name   string
		exists func(context.Context, string) (bool, error)
		value  string
		want   bool
	}{
		{"username taken", repo.ExistsByUsername, "taken", true},
		{"username free", repo.ExistsByUsername, "free", false},
		{"email taken", repo.ExistsByEmail, "taken@example.com", true},
		{"email free", repo.ExistsByEmail, "free@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.exists(ctx, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	url, key := "/uploads/avatars/a.png", "avatars/a.png"
	user.Name = "Renamed"
	user.AvatarURL = &url
	user.AvatarKey = &key
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, url, *got.AvatarURL)
	require.NotNil(t, got.AvatarKey)
	assert.Equal(t, key, *got.AvatarKey)
}
