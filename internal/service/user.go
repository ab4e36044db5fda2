package service

import (
	"context"
	"errors"
	"os"

	"github.com/ilinovom/fido5011-bot/internal/model"
	"github.com/ilinovom/fido5011-bot/internal/repository"
)

// UserService edits the user-controlled part of a user's state.
type UserService struct {
	repo repository.UserStateRepository
}

func NewUserService(repo repository.UserStateRepository) *UserService {
	return &UserService{repo: repo}
}

// Descr returns the user's directory text or "" if none was set.
func (s *UserService) Descr(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.Get(ctx, userID)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.DescrText(), nil
}

// SetDescr stores the user's directory text. A user that has never been seen
// is registered first with lastSeen = now.
func (s *UserService) SetDescr(ctx context.Context, userID int64, descr string, now int64) error {
	err := s.repo.UpdateDescr(ctx, userID, descr)
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := s.repo.Create(ctx, &model.UserState{UserID: userID, LastSeen: now}); err != nil {
		return err
	}
	return s.repo.UpdateDescr(ctx, userID, descr)
}
