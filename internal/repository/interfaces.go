package repository

import (
	"context"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
}

// NoteRepository scopes every read and write to the owning user.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, note *domain.Note) error
	UpdatePriority(ctx context.Context, userID, id uuid.UUID, priority int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Repositories struct {
	User UserRepository
	Note NoteRepository
}
