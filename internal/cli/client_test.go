package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeAPI: минимальный сервер, отвечающий в формате Contracta API.
type fakeAPI struct {
	mu       sync.Mutex
	types    []ContractTypeResponse
	versions map[string]int
	requests []string
	uploaded map[string]string
}

func newFakeAPI(t *testing.T, types ...ContractTypeResponse) (*fakeAPI, *Client) {
	t.Helper()

	api := &fakeAPI{
		types:    types,
		versions: make(map[string]int),
		uploaded: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/contract-types", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"data": api.types, "total": len(api.types)})
	})
	mux.HandleFunc("POST /api/v1/contract-types", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		var req CreateContractTypeRequest
		json.NewDecoder(r.Body).Decode(&req)
		ct := ContractTypeResponse{ID: "type-" + req.Name, Name: req.Name, IsActive: req.IsActive == nil || *req.IsActive}
		api.mu.Lock()
		api.types = append(api.types, ct)
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"data": ct})
	})
	mux.HandleFunc("POST /api/v1/contract-types/{id}/templates", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		id := r.PathValue("id")
		api.mu.Lock()
		api.versions[id]++
		api.uploaded[id] = req["html"]
		version := api.versions[id]
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"data": TemplateVersionResponse{ContractTypeID: id, Version: version}})
	})
	mux.HandleFunc("DELETE /api/v1/contract-types/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{"code": "INVALID_STATE", "message": "contract type is referenced"},
		})
	})
	mux.HandleFunc("GET /api/v1/renders", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"data": []RenderJobResponse{{ID: "job-1", Status: "PENDING"}}, "total": 1})
	})
	mux.HandleFunc("GET /api/v1/renders/{id}/output", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	})
	mux.HandleFunc("DELETE /api/v1/contracts/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, NewClient(srv.URL)
}

func (a *fakeAPI) record(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, r.Method+" "+r.URL.RequestURI())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_ListAndCreateTypes(t *testing.T) {
	_, client := newFakeAPI(t, ContractTypeResponse{ID: "t1", Name: "PABX em nuvem", IsActive: true})

	types, err := client.ListContractTypes()
	if err != nil {
		t.Fatalf("ListContractTypes() error = %v", err)
	}
	if len(types) != 1 || types[0].Name != "PABX em nuvem" {
		t.Errorf("types = %+v", types)
	}

	ct, err := client.CreateContractType(CreateContractTypeRequest{Name: "Link dedicado"})
	if err != nil {
		t.Fatalf("CreateContractType() error = %v", err)
	}
	if ct.ID != "type-Link dedicado" || !ct.IsActive {
		t.Errorf("created = %+v", ct)
	}
}

func TestClient_APIError(t *testing.T) {
	_, client := newFakeAPI(t)

	err := client.DeleteContractType("t1")
	if err == nil {
		t.Fatal("DeleteContractType() expected error")
	}
	if !strings.Contains(err.Error(), "INVALID_STATE") {
		t.Errorf("error = %v, want INVALID_STATE", err)
	}
}

func TestClient_NoContentAndRaw(t *testing.T) {
	api, client := newFakeAPI(t)

	if err := client.DeleteContract("c1"); err != nil {
		t.Fatalf("DeleteContract() error = %v", err)
	}

	data, err := client.RenderOutput("job-1")
	if err != nil {
		t.Fatalf("RenderOutput() error = %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("output = %q", data)
	}

	jobs, err := client.ListRenders(ListRendersOpts{ContractID: "c1", Status: "PENDING", Limit: 5})
	if err != nil {
		t.Fatalf("ListRenders() error = %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(jobs))
	}

	last := api.requests[len(api.requests)-1]
	if last != "GET /api/v1/renders?contract_id=c1&limit=5&status=PENDING" {
		t.Errorf("request = %q", last)
	}
}
