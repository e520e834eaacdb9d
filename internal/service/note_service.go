package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// reorderWriteLimit bounds concurrent priority writes during a reorder.
const reorderWriteLimit = 4

// Change reasons published to the sync hub.
const (
	ReasonCreated   = "created"
	ReasonUpdated   = "updated"
	ReasonDeleted   = "deleted"
	ReasonReordered = "reordered"
)

// Notifier is told when a user's notes changed so other sessions can re-fetch.
type Notifier interface {
	NotifyNotesChanged(userID uuid.UUID, reason string, noteIDs []uuid.UUID)
}

type nopNotifier struct{}

func (nopNotifier) NotifyNotesChanged(uuid.UUID, string, []uuid.UUID) {}

type NoteService struct {
	noteRepo repository.NoteRepository
	notifier Notifier
	validate *validator.Validate
	log      *zap.Logger
}

func NewNoteService(noteRepo repository.NoteRepository, notifier Notifier, log *zap.Logger) *NoteService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &NoteService{
		noteRepo: noteRepo,
		notifier: notifier,
		validate: newValidator(),
		log:      log.Named("notes"),
	}
}

type CreateNoteInput struct {
	Title    string
	Content  string
	Color    domain.Color
	Priority *int
}

// UpdateNoteInput is a partial update; nil fields are left unchanged.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	Color    *domain.Color
	Priority *int
}

type noteFields struct {
	Title    string       `validate:"required,max=200"`
	Content  string       `validate:"required,max=10000"`
	Color    domain.Color `validate:"notecolor"`
	Priority int          `validate:"min=0"`
}

func noteFieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "required" {
			return domain.ErrMissingTitleOrContent
		}
		return domain.ErrInvalidTitle
	case "Content":
		if fe.Tag() == "required" {
			return domain.ErrMissingTitleOrContent
		}
		return domain.ErrInvalidContent
	case "Color":
		return domain.ErrInvalidColor
	case "Priority":
		return domain.ErrInvalidPriority
	}
	return domain.ErrMissingTitleOrContent
}

func (s *NoteService) check(n *domain.Note) error {
	return firstFieldError(s.validate, noteFields{
		Title:    n.Title,
		Content:  n.Content,
		Color:    n.Color,
		Priority: n.Priority,
	}, noteFieldError)
}

// Create stores a new note. Without an explicit priority the note is
// appended after the user's existing notes. Two racing creates may end up
// with the same priority; display order then falls back to creation time.
func (s *NoteService) Create(ctx context.Context, userID uuid.UUID, input CreateNoteInput) (*domain.Note, error) {
	if input.Title == "" || input.Content == "" {
		return nil, domain.ErrMissingTitleOrContent
	}

	note := &domain.Note{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   input.Title,
		Content: input.Content,
		Color:   input.Color,
	}
	if note.Color == "" {
		note.Color = domain.DefaultColor
	}
	if input.Priority != nil {
		note.Priority = *input.Priority
	}

	if err := s.check(note); err != nil {
		return nil, err
	}

	if input.Priority == nil {
		count, err := s.noteRepo.CountByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count notes: %w", err)
		}
		note.Priority = domain.NextPriority(count)
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.notifier.NotifyNotesChanged(userID, ReasonCreated, []uuid.UUID{note.ID})
	return note, nil
}

// List returns the user's notes in display order.
func (s *NoteService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error) {
	notes, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	domain.SortNotes(notes)
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id uuid.UUID, input UpdateNoteInput) (*domain.Note, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.Color != nil {
		note.Color = *input.Color
	}
	if input.Priority != nil {
		note.Priority = *input.Priority
	}

	if err := s.check(note); err != nil {
		return nil, err
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	s.notifier.NotifyNotesChanged(userID, ReasonUpdated, []uuid.UUID{note.ID})
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.noteRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.notifier.NotifyNotesChanged(userID, ReasonDeleted, []uuid.UUID{id})
	return nil
}

// Reorder takes the full sequence of the user's notes, gives every note
// priority = its index in ids and persists the notes whose priority changed,
// one write per note. The writes are not atomic: on failure the notes
// already written keep their new priority and the error is returned so the
// caller can re-fetch.
func (s *NoteService) Reorder(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Note, error) {
	if err := domain.CheckOrder(ids); err != nil {
		return nil, err
	}

	current, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.Note, len(current))
	for _, n := range current {
		byID[n.ID] = n
	}

	ordered := make([]*domain.Note, 0, len(ids))
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			return nil, domain.ErrNoteNotFound
		}
		ordered = append(ordered, n)
	}
	if len(ordered) != len(current) {
		return nil, domain.ErrInvalidOrder
	}

	changes := domain.Renumber(ordered)

	var (
		mu      sync.Mutex
		written []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reorderWriteLimit)
	for _, c := range changes {
		g.Go(func() error {
			if err := s.noteRepo.UpdatePriority(gctx, userID, c.NoteID, c.To); err != nil {
				return fmt.Errorf("note %s: %w", c.NoteID, err)
			}
			mu.Lock()
			written = append(written, c.NoteID)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()

	if len(written) > 0 {
		s.notifier.NotifyNotesChanged(userID, ReasonReordered, written)
	}
	if err != nil {
		s.log.Warn("reorder partially applied",
			zap.String("user_id", userID.String()),
			zap.Int("written", len(written)),
			zap.Int("planned", len(changes)),
			zap.Error(err))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("reorder notes: %w", err)
	}

	return s.List(ctx, userID)
}
