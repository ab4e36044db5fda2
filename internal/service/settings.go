package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ilinovom/fido5011-bot/internal/model"
	"github.com/ilinovom/fido5011-bot/internal/repository"
)

// ErrNegativeInterval is returned when an interval below zero is requested.
var ErrNegativeInterval = errors.New("interval must not be negative")

// SettingsService manages the global announcement settings.
type SettingsService struct {
	repo            repository.SettingsRepository
	admins          map[int64]bool
	defaultInterval int64
	unit            int64
}

// NewSettingsService creates the service. defaultInterval is stored on the first
// read when the storage has no interval yet; unit is the number of seconds in
// one displayed interval unit.
func NewSettingsService(repo repository.SettingsRepository, admins map[int64]bool, defaultInterval, unit int64) *SettingsService {
	if unit <= 0 {
		unit = 1
	}
	return &SettingsService{repo: repo, admins: admins, defaultInterval: defaultInterval, unit: unit}
}

// IsAdmin reports whether the user may change global settings.
func (s *SettingsService) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

// Unit returns the number of seconds in one displayed interval unit.
func (s *SettingsService) Unit() int64 {
	return s.unit
}

// Interval returns the announcement interval in seconds.
func (s *SettingsService) Interval(ctx context.Context) (int64, error) {
	v, err := s.repo.GetInterval(ctx)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	if err := s.repo.SaveInterval(ctx, s.defaultInterval); err != nil {
		return 0, err
	}
	return s.defaultInterval, nil
}

// SetInterval stores a new interval given in seconds.
func (s *SettingsService) SetInterval(ctx context.Context, seconds int64) error {
	if seconds < 0 {
		return ErrNegativeInterval
	}
	return s.repo.SaveInterval(ctx, seconds)
}

// ToSeconds converts a value in display units into seconds.
func (s *SettingsService) ToSeconds(units int64) (int64, error) {
	if units < 0 {
		return 0, ErrNegativeInterval
	}
	if units > math.MaxInt64/s.unit {
		return 0, fmt.Errorf("interval %d is too large", units)
	}
	return units * s.unit, nil
}

// Settings returns a snapshot of the global settings.
func (s *SettingsService) Settings(ctx context.Context) (model.GlobalSettings, error) {
	interval, err := s.Interval(ctx)
	if err != nil {
		return model.GlobalSettings{}, err
	}
	admins := make(map[int64]bool, len(s.admins))
	for id := range s.admins {
		admins[id] = true
	}
	return model.GlobalSettings{AnnouncementInterval: interval, AdminIDs: admins}, nil
}
