package handlers

import (
	"net/http"
	"time"

	"github.com/dom/sticky-notes/internal/api/middleware"
	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NoteHandler struct {
	noteService *service.NoteService
	log         *zap.Logger
}

func NewNoteHandler(noteService *service.NoteService, log *zap.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, log: log}
}

type CreateNoteRequest struct {
	Title    string       `json:"title"`
	Content  string       `json:"content"`
	Color    domain.Color `json:"color"`
	Priority *int         `json:"priority"`
}

type UpdateNoteRequest struct {
	Title    *string       `json:"title"`
	Content  *string       `json:"content"`
	Color    *domain.Color `json:"color"`
	Priority *int          `json:"priority"`
}

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color.String(),
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoteResponses(notes []*domain.Note) []NoteResponse {
	resp := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	return resp
}

// List returns the caller's notes in display order
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	notes, err := h.noteService.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toNoteResponses(notes)})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Create(r.Context(), userID, service.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Color:    req.Color,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: toNoteResponse(note)})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var req UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.Update(r.Context(), userID, id, service.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Color:    req.Color,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toNoteResponse(note)})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.noteService.Delete(r.Context(), userID, id); err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Note deleted successfully"})
}

// Reorder assigns priorities from the submitted id order and returns the
// resulting list.
func (h *NoteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notes, err := h.noteService.Reorder(r.Context(), userID, req.IDs)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toNoteResponses(notes)})
}
