package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/telemetry"
)

// ListContractTypes возвращает список типов контрактов.
// GET /api/v1/contract-types
func (h *Handler) ListContractTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ContractTypeResponse, len(types))
	for i, ct := range types {
		result[i] = ContractTypeFromDomain(ct)
	}

	List(w, result, len(result))
}

// CreateContractType создаёт тип контракта.
// POST /api/v1/contract-types
func (h *Handler) CreateContractType(w http.ResponseWriter, r *http.Request) {
	var req CreateContractTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(w, "name is required")
		return
	}

	ct := &domain.ContractType{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   h.now(),
	}
	if req.IsActive != nil {
		ct.IsActive = *req.IsActive
	}

	if err := h.types.Create(r.Context(), ct); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, ContractTypeFromDomain(*ct))
}

// GetContractType возвращает тип контракта по ID.
// GET /api/v1/contract-types/{id}
func (h *Handler) GetContractType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	ct, err := h.types.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	Success(w, ContractTypeFromDomain(*ct))
}

// UpdateContractType обновляет тип контракта.
// PUT /api/v1/contract-types/{id}
func (h *Handler) UpdateContractType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	var req UpdateContractTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	ct, err := h.types.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			BadRequest(w, "name must not be empty")
			return
		}
		ct.Name = name
	}
	if req.Description != nil {
		ct.Description = *req.Description
	}
	if req.IsActive != nil {
		ct.IsActive = *req.IsActive
	}

	if err := h.types.Update(r.Context(), ct); HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	Success(w, ContractTypeFromDomain(*ct))
}

// DeleteContractType удаляет тип контракта.
// Тип, на который ссылаются контракты, удалить нельзя (422).
// DELETE /api/v1/contract-types/{id}
func (h *Handler) DeleteContractType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	if err := h.types.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	NoContent(w)
}

// ListTemplateVersions возвращает версии шаблона без HTML.
// GET /api/v1/contract-types/{id}/templates
func (h *Handler) ListTemplateVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	if _, err := h.types.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	versions, err := h.types.ListVersions(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TemplateVersionResponse, len(versions))
	for i, v := range versions {
		result[i] = TemplateVersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateTemplateVersion загружает новую версию шаблона.
// HTML проверяется парсером до сохранения.
// POST /api/v1/contract-types/{id}/templates
func (h *Handler) CreateTemplateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	var req CreateTemplateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.HTML) == "" {
		BadRequest(w, "html is required")
		return
	}
	if _, err := document.ParseString(req.HTML); err != nil {
		BadRequest(w, "invalid template html: "+err.Error())
		return
	}

	tv, err := h.types.CreateVersion(r.Context(), id, req.HTML)
	if HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}

	telemetry.FromContext(r.Context()).Info("template version created",
		"contract_type_id", id.String(),
		"version", tv.Version,
	)

	Created(w, TemplateVersionFromDomain(*tv))
}

// GetTemplateVersion возвращает версию шаблона с HTML.
// Версия "latest" возвращает последнюю.
// GET /api/v1/contract-types/{id}/templates/{version}
func (h *Handler) GetTemplateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract type id")
		return
	}

	var tv *domain.TemplateVersion
	if raw := r.PathValue("version"); raw == "latest" {
		tv, err = h.types.GetLatestVersion(r.Context(), id)
	} else {
		version, convErr := strconv.Atoi(raw)
		if convErr != nil || version < 1 {
			BadRequest(w, "invalid template version")
			return
		}
		tv, err = h.types.GetVersion(r.Context(), id, version)
	}
	if HandleRepoError(w, h.logger, err, "template version not found") {
		return
	}

	Success(w, TemplateVersionFromDomain(*tv))
}
