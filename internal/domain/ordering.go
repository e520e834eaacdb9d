package domain

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// SortNotes orders notes for display: ascending priority, then creation
// time, then id so that colliding priorities still give a stable order.
func SortNotes(notes []*Note) {
	slices.SortStableFunc(notes, compareNotes)
}

func compareNotes(a, b *Note) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// PriorityChange is a single renumbering step produced by Renumber.
type PriorityChange struct {
	NoteID uuid.UUID
	From   int
	To     int
}

// Renumber assigns priority = index to every note in the given sequence and
// returns only the notes whose priority actually changed.
func Renumber(ordered []*Note) []PriorityChange {
	var changes []PriorityChange
	for i, n := range ordered {
		if n.Priority == i {
			continue
		}
		changes = append(changes, PriorityChange{NoteID: n.ID, From: n.Priority, To: i})
		n.Priority = i
	}
	return changes
}

// CheckOrder rejects an empty order or one that lists a note twice.
func CheckOrder(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}
	return nil
}

// NextPriority is the priority given to a new note appended after count existing ones.
func NextPriority(count int64) int {
	return int(count) + 1
}
