package domain

import (
	"time"

	"github.com/google/uuid"
)

// RenderJob описывает асинхронный рендер контракта.
//
// Задание создаётся через API, выполняется воркером contracta-renderer
// и удаляется sweeper'ом после срока хранения.
type RenderJob struct {
	ID             uuid.UUID `json:"id"`
	ContractID     uuid.UUID `json:"contract_id"`
	ContractTypeID uuid.UUID `json:"contract_type_id"`

	// TemplateVersion фиксирует версию шаблона; 0 означает "последняя на момент рендера".
	TemplateVersion int `json:"template_version"`

	Status RenderStatus `json:"status"`
	Format OutputFormat `json:"format"`

	// Output содержит готовый HTML или PDF. Не сериализуется в JSON:
	// отдаётся отдельным endpoint'ом.
	Output []byte `json:"-"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewRenderJob создаёт задание в статусе PENDING.
func NewRenderJob(contract *Contract, version int, format OutputFormat) *RenderJob {
	if !format.IsValid() {
		format = OutputFormatHTML
	}
	return &RenderJob{
		ID:              uuid.New(),
		ContractID:      contract.ID,
		ContractTypeID:  contract.ContractTypeID,
		TemplateVersion: version,
		Status:          RenderStatusPending,
		Format:          format,
		CreatedAt:       time.Now(),
	}
}

// Duration возвращает продолжительность рендера.
// Возвращает 0, если задание ещё не завершено.
func (j *RenderJob) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// MarkRunning переводит задание в RUNNING.
func (j *RenderJob) MarkRunning() {
	now := time.Now()
	j.Status = RenderStatusRunning
	j.StartedAt = &now
}

// MarkPending возвращает взятое задание в очередь.
func (j *RenderJob) MarkPending() {
	j.Status = RenderStatusPending
	j.StartedAt = nil
}

// IsStale сообщает, что задание в RUNNING было взято раньше before
// и, вероятно, брошено упавшим воркером.
func (j *RenderJob) IsStale(before time.Time) bool {
	return j.Status == RenderStatusRunning && j.StartedAt != nil && j.StartedAt.Before(before)
}

// MarkSucceeded сохраняет результат и переводит задание в SUCCEEDED.
func (j *RenderJob) MarkSucceeded(output []byte) {
	now := time.Now()
	j.Status = RenderStatusSucceeded
	j.Output = output
	j.FinishedAt = &now
	j.Error = ""
}

// MarkFailed переводит задание в FAILED с ошибкой.
func (j *RenderJob) MarkFailed(err string) {
	now := time.Now()
	j.Status = RenderStatusFailed
	j.FinishedAt = &now
	j.Error = err
}
