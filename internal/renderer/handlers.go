package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/mq"
	"github.com/shaiso/Contracta/internal/repo"
	"github.com/shaiso/Contracta/internal/telemetry"
)

// handleRenderRequested обрабатывает событие из renders.requested.
func (r *Renderer) handleRenderRequested(ctx context.Context, msg *mq.Message) error {
	payload, err := mq.ParsePayload[mq.RenderRequestedPayload](msg)
	if err != nil {
		return fmt.Errorf("%w: %v", mq.ErrPermanent, err)
	}

	err = r.Process(ctx, payload.JobID)
	if isSkip(err) {
		r.logger.Debug("job not processed", "job_id", payload.JobID, "reason", err)
		return nil
	}
	return err
}

// Process выполняет одно задание.
//
// Возвращает ErrJobNotFound или ErrJobNotPending, если задание нечего делать,
// и ошибку инфраструктуры, если данные не удалось загрузить или сохранить.
// Ошибка инфраструктуры возвращает задание в PENDING. Ошибка данных
// (нет контракта, шаблона, принтера, битый шаблон) ошибкой Process не
// является: задание получает FAILED.
func (r *Renderer) Process(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.jobs.GetByID(ctx, jobID)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	staleBefore := r.staleBefore()
	stale := job.IsStale(staleBefore)
	if job.Status != domain.RenderStatusPending && !stale {
		return ErrJobNotPending
	}

	if err := r.jobs.Claim(ctx, job, staleBefore); err != nil {
		if errors.Is(err, repo.ErrInvalidState) {
			return ErrJobNotPending
		}
		return fmt.Errorf("claim job: %w", err)
	}

	logger := telemetry.ForJob(r.logger, job)
	if stale {
		logger.Warn("reclaiming stale render job")
	}
	logger.Info("render started", "template_version", job.TemplateVersion)

	var result *Result
	contract, tmpl, renderErr := r.load(ctx, job)
	if renderErr != nil && !isDataError(renderErr) {
		r.release(ctx, job, logger)
		return fmt.Errorf("render job %s: %w", job.ID, renderErr)
	}
	if renderErr == nil {
		job.TemplateVersion = tmpl.Version
		result, renderErr = Render(ctx, contract, tmpl.HTML, job.Format, r.opts)
	}

	if renderErr != nil {
		job.MarkFailed(renderErr.Error())
	} else {
		job.MarkSucceeded(result.Output)
	}

	if err := r.jobs.Update(ctx, job); err != nil {
		status := job.Status
		r.release(ctx, job, logger)
		return fmt.Errorf("update job to %s: %w", status, err)
	}

	payload := mq.RenderCompletedPayload{
		JobID:      job.ID,
		ContractID: job.ContractID,
		Status:     string(job.Status),
		Format:     string(job.Format),
		Error:      job.Error,
	}
	if result != nil {
		payload.Bytes = len(result.Output)
		payload.Unresolved = result.Stats.Unresolved
	}
	telemetry.ObserveRender(payload.Status, payload.Format, job.Duration(), payload.Unresolved)

	if renderErr != nil {
		logger.Warn("render failed", "error", renderErr, "duration", job.Duration())
	} else {
		logger.Info("render succeeded",
			"bytes", payload.Bytes,
			"unresolved", payload.Unresolved,
			"duration", job.Duration().Round(time.Millisecond),
		)
	}

	r.publishCompletion(ctx, payload)
	return nil
}

// load загружает снимок контракта и версию шаблона задания.
func (r *Renderer) load(ctx context.Context, job *domain.RenderJob) (*domain.Contract, *domain.TemplateVersion, error) {
	contract, err := r.contracts.GetByID(ctx, job.ContractID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrContractMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load contract: %w", err)
	}

	var tmpl *domain.TemplateVersion
	if job.TemplateVersion > 0 {
		tmpl, err = r.templates.GetVersion(ctx, job.ContractTypeID, job.TemplateVersion)
	} else {
		tmpl, err = r.templates.GetLatestVersion(ctx, job.ContractTypeID)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrTemplateMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load template: %w", err)
	}
	return contract, tmpl, nil
}

// release возвращает задание в PENDING. Если и это не удалось, задание
// останется в RUNNING и будет взято повторно по staleAfter.
func (r *Renderer) release(ctx context.Context, job *domain.RenderJob, logger *slog.Logger) {
	if err := r.jobs.Release(ctx, job); err != nil {
		logger.Error("failed to release render job", "error", err, "stale_after", r.staleAfter)
	}
}

// isDataError отличает ошибки данных задания от сбоев инфраструктуры.
func isDataError(err error) bool {
	return errors.Is(err, ErrContractMissing) || errors.Is(err, ErrTemplateMissing)
}

// publishCompletion публикует render.completed. Ошибка публикации не
// отменяет результат: состояние уже сохранено в БД.
func (r *Renderer) publishCompletion(ctx context.Context, payload mq.RenderCompletedPayload) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishRenderCompleted(ctx, payload); err != nil {
		r.logger.Warn("failed to publish render.completed", "job_id", payload.JobID, "error", err)
	}
}
