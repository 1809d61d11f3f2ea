package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Contracta/internal/telemetry"
)

// ErrInvalidSchedule: некорректное cron-выражение.
var ErrInvalidSchedule = errors.New("invalid sweep schedule")

const (
	// DefaultRetention: срок хранения завершённых заданий.
	DefaultRetention = 30 * 24 * time.Hour

	// DefaultSchedule: расписание по умолчанию: раз в час.
	DefaultSchedule = "0 * * * *"
)

// Store удаляет завершённые задания.
type Store interface {
	DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Locker обеспечивает единственного активного sweeper'а.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Config: конфигурация Sweeper.
type Config struct {
	Store Store

	// Locker необязателен: без него каждый экземпляр удаляет сам.
	Locker Locker

	Retention time.Duration // default: DefaultRetention
	Schedule  string        // default: DefaultSchedule

	Logger *slog.Logger
	Now    func() time.Time
}

// Sweeper периодически удаляет старые задания рендеринга.
type Sweeper struct {
	store     Store
	locker    Locker
	retention time.Duration
	schedule  cron.Schedule
	expr      string
	logger    *slog.Logger
	now       func() time.Time

	cron *cron.Cron
}

// New создаёт Sweeper. Возвращает ErrInvalidSchedule для некорректного cron.
func New(cfg Config) (*Sweeper, error) {
	expr := cfg.Schedule
	if expr == "" {
		expr = DefaultSchedule
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}

	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Sweeper{
		store:     cfg.Store,
		locker:    cfg.Locker,
		retention: retention,
		schedule:  schedule,
		expr:      expr,
		logger:    logger,
		now:       now,
	}, nil
}

// Start запускает cron. Перекрывающиеся запуски пропускаются.
func (s *Sweeper) Start(ctx context.Context) {
	log := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("sweep failed", "error", err)
		}
	}))
	s.cron.Start()

	s.logger.Info("sweeper started",
		"schedule", s.expr,
		"retention", s.retention.String(),
		"next_run", s.schedule.Next(s.now()).UTC(),
	)
}

// Stop дожидается текущего запуска и отпускает лидерство.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.locker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.locker.Unlock(ctx); err != nil {
			s.logger.Warn("failed to release sweeper lock", "error", err)
		}
	}
	s.logger.Info("sweeper stopped")
}

// Sweep выполняет одно удаление. Не лидер ничего не удаляет и возвращает 0.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if s.locker != nil {
		leader, err := s.locker.TryLock(ctx)
		if err != nil {
			return 0, fmt.Errorf("leader election: %w", err)
		}
		if !leader {
			s.logger.Debug("not a leader, skipping sweep")
			return 0, nil
		}
	}

	before := s.now().Add(-s.retention)
	deleted, err := s.store.DeleteFinishedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("delete finished render jobs: %w", err)
	}

	telemetry.SweptJobsTotal.Add(float64(deleted))
	s.logger.Info("sweep completed",
		"deleted", deleted,
		"before", before.UTC().Format(time.RFC3339),
	)
	return deleted, nil
}
