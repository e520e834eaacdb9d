package service

import (
	"github.com/dom/sticky-notes/internal/config"
	"github.com/dom/sticky-notes/internal/repository"
	"github.com/dom/sticky-notes/internal/storage"
	"go.uber.org/zap"
)

type Services struct {
	Auth    *AuthService
	Note    *NoteService
	Profile *ProfileService
}

func NewServices(repos *repository.Repositories, store storage.ObjectStore, notifier Notifier, cfg *config.Config, log *zap.Logger) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, cfg, log),
		Note:    NewNoteService(repos.Note, notifier, log),
		Profile: NewProfileService(repos.User, store, cfg.Storage.AvatarMaxBytes, log),
	}
}
