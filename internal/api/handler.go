package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
	"github.com/shaiso/Contracta/internal/export"
	"github.com/shaiso/Contracta/internal/repo"
)

// ContractTypeStore: хранилище типов контрактов и шаблонов.
type ContractTypeStore interface {
	Create(ctx context.Context, ct *domain.ContractType) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractType, error)
	List(ctx context.Context) ([]domain.ContractType, error)
	Update(ctx context.Context, ct *domain.ContractType) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateVersion(ctx context.Context, contractTypeID uuid.UUID, html string) (*domain.TemplateVersion, error)
	GetVersion(ctx context.Context, contractTypeID uuid.UUID, version int) (*domain.TemplateVersion, error)
	GetLatestVersion(ctx context.Context, contractTypeID uuid.UUID) (*domain.TemplateVersion, error)
	ListVersions(ctx context.Context, contractTypeID uuid.UUID) ([]domain.TemplateVersion, error)
}

// ContractStore: хранилище снимков контрактов.
type ContractStore interface {
	Create(ctx context.Context, c *domain.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	List(ctx context.Context, filter repo.ContractFilter) ([]domain.Contract, error)
	Update(ctx context.Context, c *domain.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RenderJobStore: хранилище заданий рендеринга.
type RenderJobStore interface {
	Create(ctx context.Context, job *domain.RenderJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RenderJob, error)
	GetOutput(ctx context.Context, id uuid.UUID) (*domain.RenderJob, error)
	List(ctx context.Context, filter repo.RenderJobFilter) ([]domain.RenderJob, error)
}

// RenderPublisher уведомляет воркеры о новом задании.
type RenderPublisher interface {
	PublishRenderRequested(ctx context.Context, jobID, contractID uuid.UUID) error
}

// Handler: главный обработчик API с зависимостями.
type Handler struct {
	types     ContractTypeStore
	contracts ContractStore
	jobs      RenderJobStore
	publisher RenderPublisher
	printer   export.Printer
	funcs     *engine.Funcs
	now       func() time.Time
	logger    *slog.Logger
}

// Config: конфигурация для создания Handler.
type Config struct {
	ContractTypes ContractTypeStore
	Contracts     ContractStore
	RenderJobs    RenderJobStore

	// Publisher необязателен: без него задания подхватит polling рендерера.
	Publisher RenderPublisher

	// Printer нужен для предпросмотра в PDF.
	Printer export.Printer

	Funcs *engine.Funcs
	Now   func() time.Time

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	funcs := cfg.Funcs
	if funcs == nil {
		funcs = engine.DefaultFuncs()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		types:     cfg.ContractTypes,
		contracts: cfg.Contracts,
		jobs:      cfg.RenderJobs,
		publisher: cfg.Publisher,
		printer:   cfg.Printer,
		funcs:     funcs,
		now:       now,
		logger:    logger,
	}
}
