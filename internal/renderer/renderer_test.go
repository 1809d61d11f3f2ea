package renderer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Contracta/internal/domain"
	"github.com/shaiso/Contracta/internal/mq"
	"github.com/shaiso/Contracta/internal/repo"
)

// --- fakes ---

type fakeJobs struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*domain.RenderJob
	updateErr error
}

func newFakeJobs(jobs ...*domain.RenderJob) *fakeJobs {
	f := &fakeJobs{jobs: make(map[uuid.UUID]*domain.RenderJob)}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*domain.RenderJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobs) Claim(_ context.Context, job *domain.RenderJob, staleBefore time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.jobs[job.ID]
	if stored.Status != domain.RenderStatusPending && !stored.IsStale(staleBefore) {
		return repo.ErrInvalidState
	}
	job.MarkRunning()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobs) Release(_ context.Context, job *domain.RenderJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobs[job.ID].Status != domain.RenderStatusRunning {
		return repo.ErrInvalidState
	}
	job.MarkPending()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobs) Update(_ context.Context, job *domain.RenderJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobs) ListPending(_ context.Context, staleBefore time.Time, limit int) ([]domain.RenderJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RenderJob
	for _, j := range f.jobs {
		if (j.Status == domain.RenderStatusPending || j.IsStale(staleBefore)) && len(out) < limit {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJobs) get(id uuid.UUID) *domain.RenderJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

type fakeContracts map[uuid.UUID]*domain.Contract

// brokenContracts имитирует недоступную БД.
type brokenContracts struct{ err error }

func (b brokenContracts) GetByID(context.Context, uuid.UUID) (*domain.Contract, error) {
	return nil, b.err
}

func (f fakeContracts) GetByID(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	c, ok := f[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

type fakeTemplates []domain.TemplateVersion

func (f fakeTemplates) GetVersion(_ context.Context, typeID uuid.UUID, version int) (*domain.TemplateVersion, error) {
	for i := range f {
		if f[i].ContractTypeID == typeID && f[i].Version == version {
			return &f[i], nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f fakeTemplates) GetLatestVersion(_ context.Context, typeID uuid.UUID) (*domain.TemplateVersion, error) {
	var latest *domain.TemplateVersion
	for i := range f {
		if f[i].ContractTypeID == typeID && (latest == nil || f[i].Version > latest.Version) {
			latest = &f[i]
		}
	}
	if latest == nil {
		return nil, repo.ErrNotFound
	}
	return latest, nil
}

type fakePrinter struct {
	got string
	err error
}

func (p *fakePrinter) Print(_ context.Context, document string) ([]byte, error) {
	p.got = document
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

type fakePublisher struct {
	events []mq.RenderCompletedPayload
}

func (p *fakePublisher) PublishRenderCompleted(_ context.Context, payload mq.RenderCompletedPayload) error {
	p.events = append(p.events, payload)
	return nil
}

// --- fixtures ---

type fixture struct {
	contract  *domain.Contract
	versions  fakeTemplates
	jobs      *fakeJobs
	publisher *fakePublisher
	printer   *fakePrinter
	renderer  *Renderer
}

func newFixture(t *testing.T, format domain.OutputFormat, templates ...string) (*fixture, *domain.RenderJob) {
	t.Helper()

	contract := &domain.Contract{
		ID:             uuid.New(),
		Number:         "CT-7",
		ContractTypeID: uuid.New(),
		Customer:       domain.Customer{Name: "Mercado Bom Preço"},
		CreatedAt:      time.Now(),
	}

	var versions fakeTemplates
	for i, html := range templates {
		versions = append(versions, domain.TemplateVersion{
			ContractTypeID: contract.ContractTypeID,
			Version:        i + 1,
			HTML:           html,
		})
	}

	job := domain.NewRenderJob(contract, 0, format)
	f := &fixture{
		contract:  contract,
		versions:  versions,
		jobs:      newFakeJobs(job),
		publisher: &fakePublisher{},
		printer:   &fakePrinter{},
	}
	f.renderer = New(Config{
		Jobs:      f.jobs,
		Contracts: fakeContracts{contract.ID: contract},
		Templates: versions,
		Printer:   f.printer,
		Publisher: f.publisher,
	})
	return f, job
}

// --- tests ---

func TestProcess_HTMLLatestTemplate(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML,
		"<p>v1 [[ cliente_nome ]]</p>",
		"<p>v2 [[ cliente_nome ]] [[ desconhecida ]]</p>",
	)

	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.jobs.get(job.ID)
	if got.Status != domain.RenderStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s (%s)", got.Status, got.Error)
	}
	if got.TemplateVersion != 2 {
		t.Errorf("expected latest version 2, got %d", got.TemplateVersion)
	}
	if string(got.Output) != "<p>v2 Mercado Bom Preço [[ desconhecida ]]</p>" {
		t.Errorf("unexpected output %q", got.Output)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 completion event, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.Status != "SUCCEEDED" || ev.Unresolved != 1 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestProcess_PDF(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatPDF, "<h1>[[ contrato_numero ]]</h1>")

	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.jobs.get(job.ID)
	if got.Status != domain.RenderStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s (%s)", got.Status, got.Error)
	}
	if !strings.HasPrefix(string(got.Output), "%PDF") {
		t.Errorf("expected pdf output, got %q", got.Output)
	}
	if !strings.Contains(f.printer.got, "<h1>CT-7</h1>") || !strings.Contains(f.printer.got, "<title>Contrato CT-7</title>") {
		t.Errorf("printer received unexpected document: %s", f.printer.got)
	}
}

func TestProcess_PrintFailure(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatPDF, "<p>x</p>")
	f.printer.err = errors.New("chrome crashed")

	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("render failure must not be returned: %v", err)
	}

	got := f.jobs.get(job.ID)
	if got.Status != domain.RenderStatusFailed || !strings.Contains(got.Error, "chrome crashed") {
		t.Errorf("expected FAILED with printer error, got %s %q", got.Status, got.Error)
	}
	if got.FinishedAt == nil {
		t.Error("finished_at must be set")
	}
}

func TestProcess_MissingTemplate(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML)

	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.jobs.get(job.ID)
	if got.Status != domain.RenderStatusFailed || got.Error != ErrTemplateMissing.Error() {
		t.Errorf("expected FAILED with missing template, got %s %q", got.Status, got.Error)
	}
	if f.publisher.events[0].Status != "FAILED" {
		t.Errorf("expected FAILED event, got %+v", f.publisher.events[0])
	}
}

func TestProcess_Skips(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")

	if err := f.renderer.Process(context.Background(), uuid.New()); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}

	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.renderer.Process(context.Background(), job.ID); !errors.Is(err, ErrJobNotPending) {
		t.Errorf("second run: expected ErrJobNotPending, got %v", err)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("job must be rendered once, got %d events", len(f.publisher.events))
	}
}

func TestHandleRenderRequested(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")

	bad := &mq.Message{Type: mq.MessageTypeRenderRequested, Payload: "not an object"}
	if err := f.renderer.handleRenderRequested(context.Background(), bad); !errors.Is(err, mq.ErrPermanent) {
		t.Errorf("malformed payload must be permanent, got %v", err)
	}

	msg := &mq.Message{
		Type:    mq.MessageTypeRenderRequested,
		Payload: map[string]any{"job_id": job.ID.String(), "contract_id": f.contract.ID.String()},
	}
	if err := f.renderer.handleRenderRequested(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Повторная доставка уже выполненного задания подтверждается без ошибки.
	if err := f.renderer.handleRenderRequested(context.Background(), msg); err != nil {
		t.Errorf("redelivery must be acked, got %v", err)
	}
}

func TestPoll(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")

	f.renderer.Poll(context.Background())

	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusSucceeded {
		t.Errorf("poll should render pending job, got %s", got.Status)
	}
}

func TestProcess_ContractStoreDown(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")
	dbErr := errors.New("connection refused")
	r := New(Config{
		Jobs:      f.jobs,
		Contracts: brokenContracts{err: dbErr},
		Templates: f.versions,
		Publisher: f.publisher,
	})

	err := r.Process(context.Background(), job.ID)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected store error to be returned, got %v", err)
	}

	got := f.jobs.get(job.ID)
	if got.Status != domain.RenderStatusPending || got.StartedAt != nil {
		t.Errorf("job must go back to PENDING, got %s started_at=%v", got.Status, got.StartedAt)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("no completion expected, got %+v", f.publisher.events)
	}

	// После восстановления БД задание выполняется.
	if err := f.renderer.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusSucceeded {
		t.Errorf("expected SUCCEEDED on retry, got %s", got.Status)
	}
}

func TestProcess_MissingContract(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")
	r := New(Config{
		Jobs:      f.jobs,
		Contracts: fakeContracts{},
		Templates: f.versions,
	})

	if err := r.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("missing contract must not be returned: %v", err)
	}
	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusFailed || got.Error != ErrContractMissing.Error() {
		t.Errorf("expected FAILED with missing contract, got %s %q", got.Status, got.Error)
	}
}

func TestProcess_UpdateFailureReleasesJob(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")
	f.jobs.updateErr = errors.New("write timeout")

	if err := f.renderer.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected update error")
	}
	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusPending {
		t.Fatalf("job must go back to PENDING, got %s", got.Status)
	}

	// Повторная доставка выполняет задание.
	f.jobs.updateErr = nil
	msg := &mq.Message{
		Type:    mq.MessageTypeRenderRequested,
		Payload: map[string]any{"job_id": job.ID.String(), "contract_id": f.contract.ID.String()},
	}
	if err := f.renderer.handleRenderRequested(context.Background(), msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusSucceeded {
		t.Errorf("expected SUCCEEDED after redelivery, got %s", got.Status)
	}
}

func TestPoll_ReclaimsStaleJob(t *testing.T) {
	f, job := newFixture(t, domain.OutputFormatHTML, "<p>x</p>")

	// Воркер взял задание и упал, не сохранив результат.
	stuck := f.jobs.get(job.ID)
	stuck.MarkRunning()
	started := time.Now().Add(-time.Hour)
	stuck.StartedAt = &started

	fresh := domain.NewRenderJob(f.contract, 0, domain.OutputFormatHTML)
	fresh.MarkRunning()
	f.jobs.jobs[fresh.ID] = fresh

	r := New(Config{
		Jobs:       f.jobs,
		Contracts:  fakeContracts{f.contract.ID: f.contract},
		Templates:  f.versions,
		StaleAfter: 10 * time.Minute,
	})
	r.Poll(context.Background())

	if got := f.jobs.get(job.ID); got.Status != domain.RenderStatusSucceeded {
		t.Errorf("stale job must be reclaimed, got %s", got.Status)
	}
	if got := f.jobs.get(fresh.ID); got.Status != domain.RenderStatusRunning {
		t.Errorf("fresh running job must be left alone, got %s", got.Status)
	}
	if err := r.Process(context.Background(), fresh.ID); !errors.Is(err, ErrJobNotPending) {
		t.Errorf("fresh running job: expected ErrJobNotPending, got %v", err)
	}
}
