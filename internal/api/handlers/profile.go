package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dom/sticky-notes/internal/api/middleware"
	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartOverhead is room for the form fields around the avatar file.
const multipartOverhead = 1 << 20

type ProfileHandler struct {
	profileService *service.ProfileService
	maxAvatarBytes int64
	log            *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, maxAvatarBytes int64, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, maxAvatarBytes: maxAvatarBytes, log: log}
}

// ProfileResponse is the public view of a user
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.profileService.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// Update accepts a multipart form with an optional "name" field and an
// optional "avatar" file.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxAvatarBytes + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, h.log, domain.ErrAvatarTooBig)
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var input service.UpdateProfileInput
	if names, ok := r.MultipartForm.Value["name"]; ok && len(names) > 0 {
		input.Name = &names[0]
	}

	if files := r.MultipartForm.File["avatar"]; len(files) > 0 {
		header := files[0]
		file, err := header.Open()
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		defer file.Close()

		input.Avatar = &service.AvatarUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	}

	user, err := h.profileService.Update(r.Context(), userID, chi.URLParam(r, "username"), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}
