package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type SchedulerConfig struct {
	UpdateInterval     time.Duration
	TokenCheckInterval time.Duration
}

// Scheduler runs the periodic jobs: refreshing every watched tournament and renewing start.gg
// tokens that are about to expire. Each job runs in singleton mode, so a slow run delays the
// next one instead of overlapping it.
type Scheduler struct {
	sched       gocron.Scheduler
	tournaments TournamentService
	tokens      TokenRefreshService
	cfg         SchedulerConfig
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(tournaments TournamentService, tokens TokenRefreshService, cfg SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		sched:       sched,
		tournaments: tournaments,
		tokens:      tokens,
		cfg:         cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.UpdateInterval),
		gocron.NewTask(s.refreshTournaments),
		gocron.WithName("refresh-watched-tournaments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule tournament refresh: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(cfg.TokenCheckInterval),
		gocron.NewTask(s.refreshTokens),
		gocron.WithName("refresh-expiring-tokens"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule token refresh: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("scheduler started",
		slog.Duration("update_interval", s.cfg.UpdateInterval),
		slog.Duration("token_check_interval", s.cfg.TokenCheckInterval))
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.sched.Shutdown()
}

func (s *Scheduler) refreshTournaments() {
	if err := s.tournaments.RefreshWatched(s.ctx); err != nil {
		s.logger.Warn("scheduler: tournament refresh finished with errors", slog.Any("error", err))
	}
}

func (s *Scheduler) refreshTokens() {
	// Tokens that would expire before the next check are renewed now.
	refreshed, err := s.tokens.RefreshExpiring(s.ctx, s.cfg.TokenCheckInterval+accessTokenSkew)
	if err != nil {
		s.logger.Warn("scheduler: token refresh finished with errors", slog.Int("refreshed", refreshed), slog.Any("error", err))
		return
	}
	if refreshed > 0 {
		s.logger.Info("scheduler: tokens refreshed", slog.Int("refreshed", refreshed))
	}
}
