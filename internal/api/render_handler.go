package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/repo"
	"github.com/shaiso/Contracta/internal/telemetry"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// CreateRender ставит контракт в очередь на рендер.
// POST /api/v1/contracts/{id}/renders
func (h *Handler) CreateRender(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	var req CreateRenderRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}
	if req.Version < 0 {
		BadRequest(w, "invalid template version")
		return
	}

	format, ok := parseFormat(w, req.Format)
	if !ok {
		return
	}

	ct, err := h.types.GetByID(r.Context(), c.ContractTypeID)
	if HandleRepoError(w, h.logger, err, "contract type not found") {
		return
	}
	if !ct.IsActive {
		InvalidState(w, "contract type is inactive")
		return
	}

	if _, err := h.template(r.Context(), c.ContractTypeID, req.Version); HandleRepoError(w, h.logger, err, "template version not found") {
		return
	}

	job := domain.NewRenderJob(c, req.Version, format)
	if err := h.jobs.Create(r.Context(), job); HandleRepoError(w, h.logger, err, "") {
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishRenderRequested(r.Context(), job.ID, c.ID); err != nil {
			// Задание останется PENDING и будет подобрано polling'ом рендерера.
			telemetry.FromContext(r.Context()).Warn("failed to publish render request",
				"job_id", job.ID.String(),
				"error", err,
			)
		}
	}

	telemetry.FromContext(r.Context()).Info("render job created",
		"job_id", job.ID.String(),
		"contract_id", c.ID.String(),
		"format", string(format),
	)

	Created(w, RenderJobFromDomain(*job))
}

// ListRenders возвращает задания рендеринга.
// GET /api/v1/renders?contract_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	filter := repo.RenderJobFilter{Limit: limit, Offset: offset}
	q := r.URL.Query()
	if raw := q.Get("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			BadRequest(w, "invalid contract_id")
			return
		}
		filter.ContractID = &id
	}
	if raw := q.Get("status"); raw != "" {
		filter.Status = domain.ParseRenderStatus(strings.ToUpper(raw))
		if filter.Status == "" {
			BadRequest(w, "invalid status")
			return
		}
	}

	jobs, err := h.jobs.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RenderJobResponse, len(jobs))
	for i, j := range jobs {
		result[i] = RenderJobFromDomain(j)
	}

	List(w, result, len(result))
}

// GetRender возвращает задание рендеринга.
// GET /api/v1/renders/{id}
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid render id")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "render not found") {
		return
	}

	Success(w, RenderJobFromDomain(*job))
}

// GetRenderOutput отдаёт готовый документ.
// GET /api/v1/renders/{id}/output
func (h *Handler) GetRenderOutput(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid render id")
		return
	}

	job, err := h.jobs.GetOutput(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "render not found") {
		return
	}

	if job.Status != domain.RenderStatusSucceeded {
		InvalidState(w, "render is "+string(job.Status))
		return
	}

	w.Header().Set("Content-Disposition", `inline; filename="`+job.ID.String()+"."+string(job.Format)+`"`)
	Raw(w, job.Format.ContentType(), job.Output)
}

// parseFormat проверяет формат вывода; пустой означает html.
func parseFormat(w http.ResponseWriter, raw string) (domain.OutputFormat, bool) {
	if raw == "" {
		return domain.OutputFormatHTML, true
	}
	format := domain.OutputFormat(strings.ToLower(raw))
	if !format.IsValid() {
		BadRequest(w, "format must be html or pdf")
		return "", false
	}
	return format, true
}

// pageParams разбирает limit и offset.
func pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = defaultPageLimit
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			BadRequest(w, "invalid limit")
			return 0, 0, false
		}
		limit = min(n, maxPageLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(w, "invalid offset")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
