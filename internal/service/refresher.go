package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/model"
	"github.com/ilinovom/fido5011-bot/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Fetcher loads the directory records of a Telegram user.
type Fetcher interface {
	Fetch(ctx context.Context, userID int64) ([]model.DirectoryRecord, error)
}

type RefresherConfig struct {
	StripPrefix string
	Timeout     time.Duration // per fetch
	RPS         int
	Workers     int
	QueueSize   int
}

// Refresher resolves user addresses in the background. Schedule never
// blocks and the caller never learns about failures; they are only logged.
type Refresher struct {
	fetcher Fetcher
	users   repository.UserStateRepository
	cfg     RefresherConfig
	limiter *rate.Limiter
	log     zerolog.Logger

	queue   chan int64
	mu      sync.Mutex
	pending map[int64]struct{}
}

func NewRefresher(fetcher Fetcher, users repository.UserStateRepository, cfg RefresherConfig, log zerolog.Logger) *Refresher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 256
	}
	if cfg.RPS < 1 {
		cfg.RPS = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Refresher{
		fetcher: fetcher,
		users:   users,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		log:     log.With().Str("component", "refresher").Logger(),
		queue:   make(chan int64, cfg.QueueSize),
		pending: map[int64]struct{}{},
	}
}

// Schedule queues a refresh for userID. A user that is already queued is not
// queued twice. It returns false when the queue is full and the request was dropped.
func (r *Refresher) Schedule(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[userID]; ok {
		return true
	}
	select {
	case r.queue <- userID:
		r.pending[userID] = struct{}{}
		return true
	default:
		r.log.Warn().Int64("user_id", userID).Msg("refresh queue is full, request dropped")
		return false
	}
}

// ResyncAll queues every known user, waiting for queue space when needed.
func (r *Refresher) ResyncAll(ctx context.Context) (int, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	n := 0
	for _, u := range users {
		for !r.Schedule(u.UserID) {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}
		n++
	}
	return n, nil
}

// Run starts the workers and blocks until ctx is cancelled. Queued jobs that
// have not started are abandoned.
func (r *Refresher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()
	return nil
}

func (r *Refresher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-r.queue:
			r.mu.Lock()
			delete(r.pending, id)
			r.mu.Unlock()
			if err := r.Refresh(ctx, id); err != nil {
				r.log.Warn().Err(err).Int64("user_id", id).Msg("refresh address")
			}
		}
	}
}

// Refresh fetches and stores the address of one user. On any error the
// previously stored address is kept.
func (r *Refresher) Refresh(ctx context.Context, userID int64) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	fctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	records, err := r.fetcher.Fetch(fctx, userID)
	cancel()
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	addr, err := NormalizeAddress(records, r.cfg.StripPrefix)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.users.UpdateAddr(ctx, userID, addr); err != nil {
		return fmt.Errorf("store address: %w", err)
	}
	r.log.Debug().Int64("user_id", userID).Str("addr", addr).Msg("address refreshed")
	return nil
}
