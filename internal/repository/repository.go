package repository

import (
	"context"

	"github.com/ilinovom/fido5011-bot/internal/model"
)

// UserStateRepository abstracts persistence of per-user announcement state.
// Methods report a missing user with os.ErrNotExist.
type UserStateRepository interface {
	Get(ctx context.Context, userID int64) (*model.UserState, error)
	// Create stores a new state. An existing row for the same user is left as is.
	Create(ctx context.Context, state *model.UserState) error
	UpdateSeen(ctx context.Context, userID, lastSeen int64, shortCount int) error
	UpdateAddr(ctx context.Context, userID int64, addr string) error
	UpdateDescr(ctx context.Context, userID int64, descr string) error
	List(ctx context.Context) ([]*model.UserState, error)
}

// SettingsRepository stores the global announcement interval.
type SettingsRepository interface {
	// GetInterval returns os.ErrNotExist until an interval has been saved.
	GetInterval(ctx context.Context) (int64, error)
	SaveInterval(ctx context.Context, seconds int64) error
}

// Repository is a storage backend serving both users and settings.
type Repository interface {
	UserStateRepository
	SettingsRepository
	Close() error
}
