package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Contract types
	mux.Handle("GET /api/v1/contract-types", chain(http.HandlerFunc(h.ListContractTypes)))
	mux.Handle("POST /api/v1/contract-types", chain(http.HandlerFunc(h.CreateContractType)))
	mux.Handle("GET /api/v1/contract-types/{id}", chain(http.HandlerFunc(h.GetContractType)))
	mux.Handle("PUT /api/v1/contract-types/{id}", chain(http.HandlerFunc(h.UpdateContractType)))
	mux.Handle("DELETE /api/v1/contract-types/{id}", chain(http.HandlerFunc(h.DeleteContractType)))

	// Template versions
	mux.Handle("GET /api/v1/contract-types/{id}/templates", chain(http.HandlerFunc(h.ListTemplateVersions)))
	mux.Handle("POST /api/v1/contract-types/{id}/templates", chain(http.HandlerFunc(h.CreateTemplateVersion)))
	mux.Handle("GET /api/v1/contract-types/{id}/templates/{version}", chain(http.HandlerFunc(h.GetTemplateVersion)))

	// Contracts
	mux.Handle("GET /api/v1/contracts", chain(http.HandlerFunc(h.ListContracts)))
	mux.Handle("POST /api/v1/contracts", chain(http.HandlerFunc(h.CreateContract)))
	mux.Handle("GET /api/v1/contracts/{id}", chain(http.HandlerFunc(h.GetContract)))
	mux.Handle("PUT /api/v1/contracts/{id}", chain(http.HandlerFunc(h.UpdateContract)))
	mux.Handle("DELETE /api/v1/contracts/{id}", chain(http.HandlerFunc(h.DeleteContract)))
	mux.Handle("POST /api/v1/contracts/{id}/preview", chain(http.HandlerFunc(h.PreviewContract)))

	// Renders
	mux.Handle("POST /api/v1/contracts/{id}/renders", chain(http.HandlerFunc(h.CreateRender)))
	mux.Handle("GET /api/v1/renders", chain(http.HandlerFunc(h.ListRenders)))
	mux.Handle("GET /api/v1/renders/{id}", chain(http.HandlerFunc(h.GetRender)))
	mux.Handle("GET /api/v1/renders/{id}/output", chain(http.HandlerFunc(h.GetRenderOutput)))

	// Placeholders
	mux.Handle("GET /api/v1/placeholders", chain(http.HandlerFunc(h.ListPlaceholders)))
}
