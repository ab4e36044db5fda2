package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/app/cmdHandlers"
	"github.com/ilinovom/fido5011-bot/internal/config"
	"github.com/ilinovom/fido5011-bot/internal/directory"
	"github.com/ilinovom/fido5011-bot/internal/repository"
	"github.com/ilinovom/fido5011-bot/internal/service"
	"github.com/ilinovom/fido5011-bot/pkg/telegram"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Poller is the source of Telegram updates.
type Poller interface {
	GetUpdates(ctx context.Context, offset int) ([]telegram.Update, error)
}

// MessageHandler processes one incoming message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, m *telegram.Message)
}

// App coordinates the services and telegram client.
type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	tgClient  *telegram.Client
	handler   *cmdHandlers.CmdHandler
	refresher *service.Refresher
	scheduler *Scheduler
}

// New wires all components. The repository is owned by the caller.
func New(cfg *config.Config, repo repository.Repository, tgClient *telegram.Client, log zerolog.Logger) (*App, error) {
	dirClient := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout)
	refresher := service.NewRefresher(dirClient, repo, service.RefresherConfig{
		StripPrefix: cfg.StripPrefix,
		Timeout:     cfg.DirectoryTimeout,
		RPS:         cfg.DirectoryRPS,
		Workers:     cfg.RefreshWorkers,
	}, log)
	settings := service.NewSettingsService(repo, cfg.AdminIDs(), cfg.AnnouncementInterval, cfg.IntervalUnit)
	announcer := service.NewAnnouncer(repo, settings, refresher, cfg.Messages["no_address"], log)
	handler := cmdHandlers.NewCmdHandler(tgClient, service.NewUserService(repo), settings, announcer, cfg.Messages, log)

	a := &App{
		cfg:       cfg,
		log:       log,
		tgClient:  tgClient,
		handler:   handler,
		refresher: refresher,
	}
	if cfg.RefreshSchedule != "" {
		s, err := NewScheduler(cfg.RefreshSchedule, refresher, log)
		if err != nil {
			return nil, err
		}
		a.scheduler = s
	}
	return a, nil
}

// Run serves updates until ctx is cancelled or the process gets SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.handler.SetCommands(ctx, a.tgClient)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.refresher.Run(ctx) })
	if a.scheduler != nil {
		g.Go(func() error { return a.scheduler.Run(ctx) })
	}
	g.Go(func() error {
		serve(ctx, a.tgClient, a.handler, a.cfg.Workers, a.log)
		return nil
	})

	a.log.Info().Int("workers", a.cfg.Workers).Str("storage", a.cfg.StorageDriver).Msg("bot started")
	err := g.Wait()
	a.log.Info().Msg("bot stopped")
	return err
}

// serve polls updates and hands messages to workers. Messages of one chat
// always go to the same worker, so they are processed in arrival order.
func serve(ctx context.Context, poller Poller, h MessageHandler, workers int, log zerolog.Logger) {
	if workers < 1 {
		workers = 1
	}
	shards := make([]chan *telegram.Message, workers)
	done := make(chan struct{})
	for i := range shards {
		shards[i] = make(chan *telegram.Message, 64)
	}
	for i := range shards {
		go func(in <-chan *telegram.Message) {
			defer func() { done <- struct{}{} }()
			for m := range in {
				h.HandleMessage(ctx, m)
			}
		}(shards[i])
	}

	poll(ctx, poller, log, func(m *telegram.Message) {
		select {
		case shards[shardFor(m.Chat.ID, workers)] <- m:
		case <-ctx.Done():
		}
	})

	for _, ch := range shards {
		close(ch)
	}
	for range shards {
		<-done
	}
}

func poll(ctx context.Context, poller Poller, log zerolog.Logger, dispatch func(*telegram.Message)) {
	offset := 0
	for ctx.Err() == nil {
		updates, err := poller.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("get updates")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			dispatch(u.Message)
		}
	}
}

func shardFor(chatID int64, n int) int {
	return int(uint64(chatID) % uint64(n))
}
