package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
)

// ContractType DTOs

// CreateContractTypeRequest: запрос на создание типа контракта.
type CreateContractTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// UpdateContractTypeRequest: запрос на обновление типа контракта.
type UpdateContractTypeRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ContractTypeResponse: ответ с типом контракта.
type ContractTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContractTypeFromDomain конвертирует domain.ContractType в ContractTypeResponse.
func ContractTypeFromDomain(ct domain.ContractType) ContractTypeResponse {
	return ContractTypeResponse{
		ID:          ct.ID,
		Name:        ct.Name,
		Description: ct.Description,
		IsActive:    ct.IsActive,
		CreatedAt:   ct.CreatedAt,
	}
}

// TemplateVersion DTOs

// CreateTemplateVersionRequest: запрос на загрузку новой версии шаблона.
type CreateTemplateVersionRequest struct {
	HTML string `json:"html"`
}

// TemplateVersionResponse: ответ с версией шаблона.
// HTML пустой в списках версий.
type TemplateVersionResponse struct {
	ContractTypeID uuid.UUID `json:"contract_type_id"`
	Version        int       `json:"version"`
	HTML           string    `json:"html,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TemplateVersionFromDomain конвертирует domain.TemplateVersion в TemplateVersionResponse.
func TemplateVersionFromDomain(tv domain.TemplateVersion) TemplateVersionResponse {
	return TemplateVersionResponse{
		ContractTypeID: tv.ContractTypeID,
		Version:        tv.Version,
		HTML:           tv.HTML,
		CreatedAt:      tv.CreatedAt,
	}
}

// Contract DTOs

// ContractResponse: ответ с краткой информацией о контракте.
type ContractResponse struct {
	ID             uuid.UUID `json:"id"`
	Number         string    `json:"number"`
	ContractTypeID uuid.UUID `json:"contract_type_id"`
	CustomerName   string    `json:"customer_name"`
	PlanName       string    `json:"plan_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// ContractFromDomain конвертирует domain.Contract в ContractResponse.
func ContractFromDomain(c domain.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		Number:         c.Number,
		ContractTypeID: c.ContractTypeID,
		CustomerName:   c.Customer.Name,
		PlanName:       c.Plan.Name,
		CreatedAt:      c.CreatedAt,
	}
}

// ContractDetailResponse: полный снимок вместе с пропорциональным распределением.
type ContractDetailResponse struct {
	Contract  domain.Contract   `json:"contract"`
	Proration *engine.Proration `json:"proration"`
}

// Preview DTOs

// PreviewRequest: запрос на синхронный рендер.
// Без HTML берётся версия шаблона (0 или пусто: последняя).
type PreviewRequest struct {
	HTML    string `json:"html,omitempty"`
	Version int    `json:"version,omitempty"`
	Format  string `json:"format,omitempty"`
}

// PreviewResponse: результат предпросмотра в формате html.
type PreviewResponse struct {
	HTML       string       `json:"html"`
	Stats      engine.Stats `json:"stats"`
	Unresolved []string     `json:"unresolved,omitempty"`
}

// RenderJob DTOs

// CreateRenderRequest: запрос на асинхронный рендер.
type CreateRenderRequest struct {
	Version int    `json:"version,omitempty"`
	Format  string `json:"format,omitempty"`
}

// RenderJobResponse: ответ с заданием рендеринга.
type RenderJobResponse struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ContractTypeID  uuid.UUID  `json:"contract_type_id"`
	TemplateVersion int        `json:"template_version"`
	Status          string     `json:"status"`
	Format          string     `json:"format"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	DurationMs      int64      `json:"duration_ms,omitempty"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RenderJobFromDomain конвертирует domain.RenderJob в RenderJobResponse.
func RenderJobFromDomain(j domain.RenderJob) RenderJobResponse {
	return RenderJobResponse{
		ID:              j.ID,
		ContractID:      j.ContractID,
		ContractTypeID:  j.ContractTypeID,
		TemplateVersion: j.TemplateVersion,
		Status:          string(j.Status),
		Format:          string(j.Format),
		StartedAt:       j.StartedAt,
		FinishedAt:      j.FinishedAt,
		DurationMs:      j.Duration().Milliseconds(),
		Error:           j.Error,
		CreatedAt:       j.CreatedAt,
	}
}
