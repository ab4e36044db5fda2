package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Resyncer queues a directory refresh for every known user.
type Resyncer interface {
	ResyncAll(ctx context.Context) (int, error)
}

// Scheduler runs the periodic directory resync.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	resyncer Resyncer
	log      zerolog.Logger
}

// NewScheduler validates spec. Both 5-field and 6-field (with seconds) cron
// expressions are accepted, as well as descriptors like "@daily".
func NewScheduler(spec string, resyncer Resyncer, log zerolog.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron:     cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
		spec:     spec,
		resyncer: resyncer,
		log:      log.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run starts the cron and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() { s.resync(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) resync(ctx context.Context) {
	n, err := s.resyncer.ResyncAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("queued", n).Msg("directory resync")
		return
	}
	s.log.Info().Int("queued", n).Msg("directory resync queued")
}
