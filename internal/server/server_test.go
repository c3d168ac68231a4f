package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
)

type fakeGenerator struct {
	result *core.GenerationResult
	err    error
	got    core.GenerationRequest
}

func (f *fakeGenerator) Run(_ context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeIntegrator struct {
	reply string
}

func (f *fakeIntegrator) IntegrateLinks(context.Context, string, string) string {
	return f.reply
}

func testServer(gen Generator, integrator LinkIntegrator) *Server {
	cfg := &config.Config{}
	cfg.Images.Provider = "openai"
	cfg.Images.MaxPerArticle = 4
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		runner: gen,
		writer: integrator,
	}
	s.setupRoutes()
	return s
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Expected ok status, got %s", rec.Body.String())
	}
}

func TestGenerateEndpoint(t *testing.T) {
	gen := &fakeGenerator{result: &core.GenerationResult{
		Draft: &core.ArticleDraft{ID: "d1", Title: "Generated Title"},
		SEO:   &core.SEOReport{Score: 82},
	}}
	s := testServer(gen, &fakeIntegrator{})

	body, _ := json.Marshal(core.GenerationRequest{Keywords: []string{"email marketing"}, Sections: 3})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gen.got.Keywords[0] != "email marketing" {
		t.Errorf("Expected request forwarded to pipeline, got %+v", gen.got)
	}

	var result core.GenerationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Expected JSON result: %v", err)
	}
	if result.Draft.Title != "Generated Title" || result.SEO.Score != 82 {
		t.Errorf("Unexpected result payload: %+v", result)
	}
}

func TestGenerateEndpointBadBody(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestRegenerateRequiresPrompt(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/regenerate", strings.NewReader(`{"prompt":"  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty prompt, got %d", rec.Code)
	}
}

func TestRegenerateRejectsOutOfRangeIndex(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	for _, body := range []string{
		`{"prompt":"an office plant","index":-1}`,
		`{"prompt":"an office plant","index":4}`,
	} {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/regenerate", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", body, rec.Code)
		}
	}
}

func TestRegenerateWithoutCredential(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/regenerate",
		strings.NewReader(`{"prompt":"an office plant","tone":"elegant"}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without image credentials, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegrateLinksLLMPath(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{reply: "edited [anchor](/url) article"})

	body := `{"content":"original article text","links":"anchor: /url"}`
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/links/integrate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp integrateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected JSON response: %v", err)
	}
	if resp.Method != "llm" {
		t.Errorf("Expected llm method, got %q", resp.Method)
	}
	if !strings.Contains(resp.Content, "[anchor](/url)") {
		t.Errorf("Expected edited content, got %q", resp.Content)
	}
}

func TestIntegrateLinksStringFallback(t *testing.T) {
	// Empty integrator reply forces the deterministic fallback.
	s := testServer(&fakeGenerator{}, &fakeIntegrator{reply: ""})

	body := `{"content":"Read our anchor text before starting.","links":"anchor text: /url"}`
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/links/integrate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp integrateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected JSON response: %v", err)
	}
	if resp.Method != "string" || resp.Inserted != 1 {
		t.Errorf("Expected string fallback with 1 insertion, got %+v", resp)
	}
	if !strings.Contains(resp.Content, "[anchor text](/url)") {
		t.Errorf("Expected link in content, got %q", resp.Content)
	}
}

func TestIntegrateLinksRejectsMalformedLinks(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	body := `{"content":"some text","links":"no urls here"}`
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/links/integrate", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed links, got %d", rec.Code)
	}
}

func TestPromotionsEndpoint(t *testing.T) {
	s := testServer(&fakeGenerator{}, &fakeIntegrator{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/promotions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		Projects []struct {
			Name string `json:"name"`
		} `json:"projects"`
		Styles []string `json:"styles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Expected JSON response: %v", err)
	}
	if len(resp.Projects) == 0 {
		t.Error("Expected at least one promotable project")
	}
	if len(resp.Styles) != 3 {
		t.Errorf("Expected 3 promotional styles, got %v", resp.Styles)
	}
}
