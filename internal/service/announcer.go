package service

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ilinovom/fido5011-bot/internal/model"
	"github.com/ilinovom/fido5011-bot/internal/repository"
	"github.com/rs/zerolog"
)

// FullFormEvery is how often the full address is shown instead of the short one.
const FullFormEvery = 12

type OutcomeKind int

const (
	Suppressed OutcomeKind = iota
	Announce
)

type SuppressReason int

const (
	ReasonNone SuppressReason = iota
	ReasonTooSoon
	ReasonNoAddressYet
	ReasonUnknownUserJustRegistered
	ReasonStorageFailure
)

func (r SuppressReason) String() string {
	switch r {
	case ReasonTooSoon:
		return "too_soon"
	case ReasonNoAddressYet:
		return "no_address_yet"
	case ReasonUnknownUserJustRegistered:
		return "unknown_user_just_registered"
	case ReasonStorageFailure:
		return "storage_failure"
	default:
		return "none"
	}
}

// Outcome is the result of Decide. Text is set only for Announce.
type Outcome struct {
	Kind   OutcomeKind
	Reason SuppressReason
	Text   string
}

func suppressed(r SuppressReason) Outcome { return Outcome{Kind: Suppressed, Reason: r} }

// IntervalSource provides the current announcement interval in seconds.
type IntervalSource interface {
	Interval(ctx context.Context) (int64, error)
}

// RefreshScheduler queues a directory lookup without waiting for it.
type RefreshScheduler interface {
	Schedule(userID int64) bool
}

// Announcer decides whether a user's address should be announced.
type Announcer struct {
	users       repository.UserStateRepository
	interval    IntervalSource
	refresh     RefreshScheduler
	placeholder string
	log         zerolog.Logger
}

func NewAnnouncer(users repository.UserStateRepository, interval IntervalSource, refresh RefreshScheduler, placeholder string, log zerolog.Logger) *Announcer {
	return &Announcer{
		users:       users,
		interval:    interval,
		refresh:     refresh,
		placeholder: placeholder,
		log:         log.With().Str("component", "announcer").Logger(),
	}
}

// Decide handles a message sent by userID at unix time now. It never fails:
// storage errors are logged and reported as a suppressed outcome.
func (a *Announcer) Decide(ctx context.Context, userID, now int64) Outcome {
	u, err := a.users.Get(ctx, userID)
	if errors.Is(err, os.ErrNotExist) {
		if err := a.users.Create(ctx, &model.UserState{UserID: userID, LastSeen: now}); err != nil {
			a.log.Error().Err(err).Int64("user_id", userID).Msg("register user")
			return suppressed(ReasonStorageFailure)
		}
		a.refresh.Schedule(userID)
		return suppressed(ReasonUnknownUserJustRegistered)
	}
	if err != nil {
		a.log.Error().Err(err).Int64("user_id", userID).Msg("load user")
		return suppressed(ReasonStorageFailure)
	}

	interval, err := a.interval.Interval(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("load interval")
		return suppressed(ReasonStorageFailure)
	}
	if now-u.LastSeen <= interval {
		return suppressed(ReasonTooSoon)
	}

	// last_seen stays as is so the user is announced as soon as the address arrives
	if u.Addr == nil {
		a.refresh.Schedule(userID)
		return suppressed(ReasonNoAddressYet)
	}

	count := u.ShortCount + 1
	addr := *u.Addr
	if count >= FullFormEvery {
		count = 0
	} else {
		addr = ShortAddress(addr)
	}
	if err := a.users.UpdateSeen(ctx, userID, now, count); err != nil {
		a.log.Error().Err(err).Int64("user_id", userID).Msg("update last seen")
		return suppressed(ReasonStorageFailure)
	}
	a.refresh.Schedule(userID)

	if strings.TrimSpace(addr) == "" {
		addr = a.placeholder
	}
	text := strings.TrimSpace(addr + " " + u.DescrText())
	return Outcome{Kind: Announce, Text: text}
}
