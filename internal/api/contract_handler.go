package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shaiso/Contracta/internal/document"
	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/engine"
	"github.com/shaiso/Contracta/internal/renderer"
	"github.com/shaiso/Contracta/internal/repo"
	"github.com/shaiso/Contracta/internal/telemetry"
)

// ListContracts возвращает контракты.
// GET /api/v1/contracts?contract_type_id=...&limit=...&offset=...
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	filter := repo.ContractFilter{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("contract_type_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			BadRequest(w, "invalid contract_type_id")
			return
		}
		filter.ContractTypeID = &id
	}

	contracts, err := h.contracts.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ContractResponse, len(contracts))
	for i, c := range contracts {
		result[i] = ContractFromDomain(c)
	}

	List(w, result, len(result))
}

// CreateContract сохраняет снимок контракта.
// POST /api/v1/contracts
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var c domain.Contract
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if msg := validateContract(&c); msg != "" {
		BadRequest(w, msg)
		return
	}

	if _, err := h.types.GetByID(r.Context(), c.ContractTypeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			InvalidState(w, "contract type not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	c.ID = uuid.New()
	c.CreatedAt = h.now()

	if err := h.contracts.Create(r.Context(), &c); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, ContractFromDomain(c))
}

// GetContract возвращает полный снимок контракта и распределение цены.
// GET /api/v1/contracts/{id}
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	Success(w, ContractDetailResponse{
		Contract:  *c,
		Proration: engine.Prorate(c.Plan.Composition, c.Plan.Price, c.Plan.Benefit),
	})
}

// UpdateContract заменяет снимок контракта целиком.
// PUT /api/v1/contracts/{id}
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	var c domain.Contract
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if msg := validateContract(&c); msg != "" {
		BadRequest(w, msg)
		return
	}

	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt

	if err := h.contracts.Update(r.Context(), &c); HandleRepoError(w, h.logger, err, "contract not found") {
		return
	}

	Success(w, ContractFromDomain(c))
}

// DeleteContract удаляет контракт.
// DELETE /api/v1/contracts/{id}
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract id")
		return
	}

	if err := h.contracts.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "contract not found") {
		return
	}

	NoContent(w)
}

// PreviewContract синхронно рендерит контракт.
// В теле можно передать черновик шаблона, иначе берётся сохранённая версия.
// POST /api/v1/contracts/{id}/preview
func (h *Handler) PreviewContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	var req PreviewRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	format, ok := parseFormat(w, req.Format)
	if !ok {
		return
	}

	tmpl := req.HTML
	if tmpl == "" {
		tv, err := h.template(r.Context(), c.ContractTypeID, req.Version)
		if HandleRepoError(w, h.logger, err, "template version not found") {
			return
		}
		tmpl = tv.HTML
	}

	res, err := renderer.Render(r.Context(), c, tmpl, format, renderer.RenderOptions{
		Funcs:   h.funcs,
		Printer: h.printer,
		Logger:  telemetry.ForContract(h.logger, c),
		Now:     h.now,
	})
	switch {
	case errors.Is(err, engine.ErrTemplateParse):
		BadRequest(w, err.Error())
		return
	case errors.Is(err, renderer.ErrNoPrinter):
		InvalidState(w, "pdf output is not available")
		return
	case err != nil:
		InternalError(w, h.logger, err)
		return
	}

	telemetry.PreviewsTotal.Inc()

	if format == domain.OutputFormatPDF {
		Raw(w, format.ContentType(), res.Output)
		return
	}

	resp := PreviewResponse{HTML: string(res.Output), Stats: res.Stats}
	if res.Stats.Unresolved > 0 {
		if doc, err := document.ParseString(resp.HTML); err == nil {
			for _, t := range engine.Unresolved(doc) {
				resp.Unresolved = append(resp.Unresolved, t.Raw)
			}
		}
	}
	Success(w, resp)
}

// loadContract читает {id} из пути и загружает контракт.
// При ошибке ответ уже отправлен.
func (h *Handler) loadContract(w http.ResponseWriter, r *http.Request) (*domain.Contract, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid contract id")
		return nil, false
	}

	c, err := h.contracts.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "contract not found") {
		return nil, false
	}
	return c, true
}

// template возвращает версию шаблона; 0 означает последнюю.
func (h *Handler) template(ctx context.Context, typeID uuid.UUID, version int) (*domain.TemplateVersion, error) {
	if version > 0 {
		return h.types.GetVersion(ctx, typeID, version)
	}
	return h.types.GetLatestVersion(ctx, typeID)
}

func validateContract(c *domain.Contract) string {
	switch {
	case strings.TrimSpace(c.Number) == "":
		return "number is required"
	case c.ContractTypeID == uuid.Nil:
		return "contract_type_id is required"
	case strings.TrimSpace(c.Customer.Name) == "":
		return "customer.name is required"
	case c.Plan.Price < 0 || c.Plan.Benefit < 0:
		return "plan price and benefit must not be negative"
	}
	return ""
}
