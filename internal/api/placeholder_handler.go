package api

import (
	"net/http"

	"github.com/shaiso/Contracta/internal/engine"
)

// ListPlaceholders возвращает каталог токенов шаблона.
// GET /api/v1/placeholders?kind=scalar|list_anchor|list_row|func
func (h *Handler) ListPlaceholders(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	result := []engine.Placeholder{}
	for _, p := range engine.Catalog(h.funcs) {
		if kind == "" || p.Kind == kind {
			result = append(result, p)
		}
	}

	List(w, result, len(result))
}
