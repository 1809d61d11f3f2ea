package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Contracta/internal/domain"
)

// RenderJobRepo: репозиторий заданий рендеринга.
type RenderJobRepo struct {
	pool *pgxpool.Pool
}

// NewRenderJobRepo создаёт новый RenderJobRepo.
func NewRenderJobRepo(pool *pgxpool.Pool) *RenderJobRepo {
	return &RenderJobRepo{pool: pool}
}

// RenderJobFilter: параметры фильтрации заданий.
type RenderJobFilter struct {
	ContractID *uuid.UUID
	Status     domain.RenderStatus
	Limit      int
	Offset     int
}

const renderJobColumns = `
	id, contract_id, contract_type_id, template_version, status, format,
	started_at, finished_at, error, created_at
`

// Create создаёт задание.
func (r *RenderJobRepo) Create(ctx context.Context, job *domain.RenderJob) error {
	query := `
		INSERT INTO render_jobs (id, contract_id, contract_type_id, template_version, status, format, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.ContractID,
		job.ContractTypeID,
		job.TemplateVersion,
		job.Status,
		job.Format,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert render job: %w", mapError(err))
	}
	return nil
}

// GetByID возвращает задание без результата.
func (r *RenderJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenderJob, error) {
	query := `SELECT ` + renderJobColumns + ` FROM render_jobs WHERE id = $1`
	job, err := scanRenderJob(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

// GetOutput возвращает задание вместе с результатом.
func (r *RenderJobRepo) GetOutput(ctx context.Context, id uuid.UUID) (*domain.RenderJob, error) {
	query := `SELECT ` + renderJobColumns + `, output FROM render_jobs WHERE id = $1`

	var job domain.RenderJob
	var jobError *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.ContractID,
		&job.ContractTypeID,
		&job.TemplateVersion,
		&job.Status,
		&job.Format,
		&job.StartedAt,
		&job.FinishedAt,
		&jobError,
		&job.CreatedAt,
		&job.Output,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get render output: %w", err)
	}
	if jobError != nil {
		job.Error = *jobError
	}
	return &job, nil
}

// List возвращает задания с фильтрацией, новые первыми.
func (r *RenderJobRepo) List(ctx context.Context, filter RenderJobFilter) ([]domain.RenderJob, error) {
	query := `
		SELECT ` + renderJobColumns + `
		FROM render_jobs
		WHERE ($1::uuid IS NULL OR contract_id = $1)
		  AND ($2::text IS NULL OR status = $2::render_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.ContractID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list render jobs: %w", err)
	}
	defer rows.Close()

	return collectRenderJobs(rows)
}

// ListPending возвращает задания в статусе PENDING и задания в RUNNING,
// взятые раньше staleBefore. Старые первыми.
func (r *RenderJobRepo) ListPending(ctx context.Context, staleBefore time.Time, limit int) ([]domain.RenderJob, error) {
	query := `
		SELECT ` + renderJobColumns + `
		FROM render_jobs
		WHERE status = 'PENDING'
		   OR (status = 'RUNNING' AND started_at < $1)
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending render jobs: %w", err)
	}
	defer rows.Close()

	return collectRenderJobs(rows)
}

// Claim атомарно переводит задание в RUNNING. Забрать можно задание
// в PENDING или зависшее в RUNNING с started_at раньше staleBefore.
// Возвращает ErrInvalidState, если задание уже забрал другой воркер.
func (r *RenderJobRepo) Claim(ctx context.Context, job *domain.RenderJob, staleBefore time.Time) error {
	job.MarkRunning()
	result, err := r.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status = 'RUNNING', started_at = $2
		WHERE id = $1
		  AND (status = 'PENDING' OR (status = 'RUNNING' AND started_at < $3))
	`, job.ID, job.StartedAt, staleBefore)
	if err != nil {
		return fmt.Errorf("claim render job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Release возвращает взятое задание в PENDING.
func (r *RenderJobRepo) Release(ctx context.Context, job *domain.RenderJob) error {
	job.MarkPending()
	result, err := r.pool.Exec(ctx, `
		UPDATE render_jobs
		SET status = 'PENDING', started_at = NULL
		WHERE id = $1 AND status = 'RUNNING'
	`, job.ID)
	if err != nil {
		return fmt.Errorf("release render job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// Update сохраняет статус и результат задания.
func (r *RenderJobRepo) Update(ctx context.Context, job *domain.RenderJob) error {
	query := `
		UPDATE render_jobs
		SET status = $2, template_version = $3, output = $4,
		    started_at = $5, finished_at = $6, error = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Status,
		job.TemplateVersion,
		job.Output,
		job.StartedAt,
		job.FinishedAt,
		nullString(job.Error),
	)
	if err != nil {
		return fmt.Errorf("update render job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFinishedBefore удаляет завершённые задания старше before.
// Возвращает число удалённых записей.
func (r *RenderJobRepo) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM render_jobs
		WHERE status IN ('SUCCEEDED', 'FAILED') AND finished_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("delete finished render jobs: %w", err)
	}
	return result.RowsAffected(), nil
}

// --- Helpers ---

func scanRenderJob(row pgx.Row) (*domain.RenderJob, error) {
	var job domain.RenderJob
	var jobError *string

	err := row.Scan(
		&job.ID,
		&job.ContractID,
		&job.ContractTypeID,
		&job.TemplateVersion,
		&job.Status,
		&job.Format,
		&job.StartedAt,
		&job.FinishedAt,
		&jobError,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan render job: %w", err)
	}
	if jobError != nil {
		job.Error = *jobError
	}
	return &job, nil
}

func collectRenderJobs(rows pgx.Rows) ([]domain.RenderJob, error) {
	var jobs []domain.RenderJob
	for rows.Next() {
		job, err := scanRenderJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
