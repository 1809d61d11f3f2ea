package renderer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
	"github.com/shaiso/Contracta/internal/export"
	"github.com/shaiso/Contracta/internal/mq"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 20
	defaultPrefetch     = 2
	defaultStaleAfter   = 10 * time.Minute
)

// JobStore: хранилище заданий (repo.RenderJobRepo).
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RenderJob, error)
	Claim(ctx context.Context, job *domain.RenderJob, staleBefore time.Time) error
	Release(ctx context.Context, job *domain.RenderJob) error
	Update(ctx context.Context, job *domain.RenderJob) error
	ListPending(ctx context.Context, staleBefore time.Time, limit int) ([]domain.RenderJob, error)
}

// ContractStore: хранилище снимков контрактов (repo.ContractRepo).
type ContractStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
}

// TemplateStore: хранилище версий шаблонов (repo.ContractTypeRepo).
type TemplateStore interface {
	GetVersion(ctx context.Context, contractTypeID uuid.UUID, version int) (*domain.TemplateVersion, error)
	GetLatestVersion(ctx context.Context, contractTypeID uuid.UUID) (*domain.TemplateVersion, error)
}

// CompletionPublisher публикует итог задания (mq.Publisher).
type CompletionPublisher interface {
	PublishRenderCompleted(ctx context.Context, payload mq.RenderCompletedPayload) error
}

// Config: конфигурация Renderer.
type Config struct {
	Jobs      JobStore
	Contracts ContractStore
	Templates TemplateStore

	// Printer нужен только для заданий формата pdf.
	Printer export.Printer

	// Publisher и Conn необязательны: без них работает только polling.
	Publisher CompletionPublisher
	Conn      *mq.Connection

	// Funcs переопределяет встроенные функции шаблонов.
	Funcs *engine.Funcs

	PollInterval time.Duration
	BatchSize    int

	// StaleAfter: через сколько задание в RUNNING считается брошенным
	// и может быть взято повторно.
	StaleAfter time.Duration

	Logger *slog.Logger

	// Now подменяет часы в тестах.
	Now func() time.Time
}

// Renderer обрабатывает задания рендеринга.
type Renderer struct {
	jobs      JobStore
	contracts ContractStore
	templates TemplateStore
	publisher CompletionPublisher
	conn      *mq.Connection
	opts      RenderOptions

	pollInterval time.Duration
	batchSize    int
	staleAfter   time.Duration
	now          func() time.Time

	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New создаёт Renderer.
func New(cfg Config) *Renderer {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		jobs:      cfg.Jobs,
		contracts: cfg.Contracts,
		templates: cfg.Templates,
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		opts: RenderOptions{
			Funcs:   cfg.Funcs,
			Printer: cfg.Printer,
			Logger:  logger,
		},
		pollInterval: pollInterval,
		batchSize:    batchSize,
		staleAfter:   staleAfter,
		now:          now,
		logger:       logger,
	}
}

// Start запускает consumer renders.requested (если есть соединение) и polling.
func (r *Renderer) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.logger.Info("starting renderer",
		"poll_interval", r.pollInterval,
		"batch_size", r.batchSize,
		"stale_after", r.staleAfter,
		"event_driven", r.conn != nil,
	)

	if r.conn != nil {
		consumer := mq.NewConsumer(r.conn, r.logger, mq.ConsumerConfig{
			Queue:    mq.QueueRendersRequested,
			Handler:  r.handleRenderRequested,
			Prefetch: defaultPrefetch,
		})
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("render consumer error", "error", err)
			}
		}()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.pollLoop(ctx)
	}()
}

// Stop останавливает обработку и ждёт завершения текущих заданий.
func (r *Renderer) Stop() {
	r.logger.Info("stopping renderer...")
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("renderer stopped")
}

func (r *Renderer) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Первый проход сразу: задания могли накопиться, пока сервис был выключен.
	r.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Poll(ctx)
		}
	}
}

// staleBefore: задания в RUNNING, взятые раньше этого момента, брошены.
func (r *Renderer) staleBefore() time.Time {
	return r.now().Add(-r.staleAfter)
}

// Poll обрабатывает одну пачку заданий PENDING и брошенных RUNNING.
func (r *Renderer) Poll(ctx context.Context) {
	jobs, err := r.jobs.ListPending(ctx, r.staleBefore(), r.batchSize)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	r.logger.Debug("poll found pending jobs", "count", len(jobs))
	for i := range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := r.Process(ctx, jobs[i].ID); err != nil && !isSkip(err) {
			r.logger.Error("failed to process job from poll", "job_id", jobs[i].ID, "error", err)
		}
	}
}

func isSkip(err error) bool {
	return errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrJobNotPending)
}
