package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
	"github.com/kailas-cloud/bikeval/internal/domain/listing"
	"github.com/kailas-cloud/bikeval/internal/domain/profile"
	"github.com/kailas-cloud/bikeval/internal/usecase/comparables"
	healthuc "github.com/kailas-cloud/bikeval/internal/usecase/health"
	"github.com/kailas-cloud/bikeval/internal/usecase/pricing"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
	valuationuc "github.com/kailas-cloud/bikeval/internal/usecase/valuation"
)

// --- Mocks ---

type mockCatalog struct {
	c   *catalog.Catalog
	err error
}

func (m *mockCatalog) Catalog() (*catalog.Catalog, error) { return m.c, m.err }

type mockPredictor struct {
	price float64
	err   error
	rows  []features.Vector
}

func (m *mockPredictor) Predict(_ context.Context, rows []features.Vector) ([]float64, error) {
	m.rows = append(m.rows, rows...)
	if m.err != nil {
		return nil, m.err
	}
	return []float64{m.price}, nil
}

// --- Helpers ---

type fixture struct {
	server    *Server
	handler   http.Handler
	catalog   *mockCatalog
	predictor *mockPredictor
	logoDir   string
}

func newFixture(t *testing.T, apiKeys ...string) *fixture {
	t.Helper()

	c, err := catalog.New([]listing.Listing{
		listing.Reconstruct("Royal Enfield Classic 350", "Royal Enfield", 349, 12000, 140000, "Pune"),
		listing.Reconstruct("Royal Enfield Bullet 350", "Royal Enfield", 346, 30000, 125000, "Delhi"),
		listing.Reconstruct("KTM 390 Duke", "KTM", 373, 15000, 160000, "Mumbai"),
		listing.Reconstruct("Bajaj Pulsar 150", "Bajaj", 149, 20000, 45000, "Pune"),
	})
	if err != nil {
		t.Fatal(err)
	}
	set, err := profile.NewSet("")
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Royal Enfield.svg"), []byte("<svg/>"), 0o600); err != nil {
		t.Fatal(err)
	}
	logos := assets.NewResolver(dir, assets.FallbackLogoURL)

	cat := &mockCatalog{c: c}
	pred := &mockPredictor{price: 140000}
	valuations := valuationuc.New(pricing.New(pred, 2026), comparables.New(set), cat).WithLogos(logos)

	s := NewServer(cat, selectionuc.New(logos), valuations, healthuc.New(cat, nil, nil), logos, zap.NewNop()).
		WithClock(func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) })

	return &fixture{
		server:    s,
		handler:   NewRouter(s, apiKeys, zap.NewNop()),
		catalog:   cat,
		predictor: pred,
		logoDir:   dir,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

// --- Models & selection ---

func TestListModels(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/models?q=royal", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[ModelsResponse](t, rr)
	want := []string{"Royal Enfield Bullet 350", "Royal Enfield Classic 350"}
	if resp.Count != 2 || strings.Join(resp.Items, "|") != strings.Join(want, "|") {
		t.Errorf("items = %v, want %v", resp.Items, want)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/models?q=harley", nil)
	resp = decode[ModelsResponse](t, rr)
	if resp.Items == nil || resp.Count != 0 {
		t.Errorf("no match: got %+v, want empty list", resp)
	}
}

func TestListModels_CatalogUnavailable(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = fmt.Errorf("load catalog: %w", domain.ErrCatalogEmpty)

	rr := f.do(t, http.MethodGet, "/api/v1/models", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeCatalogUnavailable {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestGetSelection(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/selection?name=Royal+Enfield+Classic+350", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[SelectionResponse](t, rr)
	if !resp.Found || resp.DefaultPower != 349 {
		t.Errorf("selection = %+v", resp)
	}
	if resp.Brand == nil || *resp.Brand != "Royal Enfield" {
		t.Errorf("brand = %v", resp.Brand)
	}
	if resp.LogoURL != "/api/v1/logos/Royal%20Enfield" {
		t.Errorf("logo_url = %q", resp.LogoURL)
	}
	if resp.Category != "Superbike/Cruiser" {
		t.Errorf("category = %q", resp.Category)
	}
}

func TestGetSelection_Unknown(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/api/v1/selection", "/api/v1/selection?name=Nope"} {
		rr := f.do(t, http.MethodGet, target, nil)
		resp := decode[SelectionResponse](t, rr)
		if resp.Found || resp.DefaultPower != selectionuc.DefaultPower || resp.Brand != nil {
			t.Errorf("%s: selection = %+v", target, resp)
		}
		if resp.LogoURL != assets.FallbackLogoURL {
			t.Errorf("%s: logo_url = %q", target, resp.LogoURL)
		}
	}
}

// --- Valuations ---

func TestCreateValuation(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/valuations", map[string]any{
		"name":       "Royal Enfield Classic 350",
		"kms_driven": 12000,
		"year":       2020,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[ValuationResponse](t, rr)

	if resp.Label != "Royal Enfield Classic 350" || resp.Profile != profile.StandardName {
		t.Errorf("label/profile = %q/%q", resp.Label, resp.Profile)
	}
	if resp.Features.Age != 6 || resp.Features.Power != 349 || resp.Features.KmsDriven != 12000 {
		t.Errorf("features = %+v", resp.Features)
	}
	if resp.EstimateDisplay != "₹ 140,000" {
		t.Errorf("estimate_display = %q", resp.EstimateDisplay)
	}
	if resp.Range.Display != "₹ 126,000 - ₹ 154,000" {
		t.Errorf("range display = %q", resp.Range.Display)
	}
	if len(resp.Comparables) != 1 || resp.Comparables[0].Name != "Royal Enfield Classic 350" {
		t.Errorf("comparables = %+v", resp.Comparables)
	}
	if len(f.predictor.rows) != 1 {
		t.Errorf("predictor rows = %d, want 1", len(f.predictor.rows))
	}
}

func TestCreateValuation_Defaults(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/api/v1/valuations", map[string]any{"profile": "wide"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[ValuationResponse](t, rr)
	want := features.Vector{KmsDriven: valuationuc.DefaultKmsDriven, Age: 2026 - valuationuc.DefaultYear, Power: 150}
	if f.predictor.rows[0] != want {
		t.Errorf("row = %+v, want %+v", f.predictor.rows[0], want)
	}
	if resp.Label != "Custom Bike" || resp.Profile != profile.WideName {
		t.Errorf("label/profile = %q/%q", resp.Label, resp.Profile)
	}
	if resp.LogoURL != assets.FallbackLogoURL {
		t.Errorf("logo_url = %q", resp.LogoURL)
	}
}

func TestCreateValuation_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		predictErr error
		wantStatus int
		wantCode   ErrorCode
		wantField  string
	}{
		{"malformed json", "{", nil, http.StatusBadRequest, ErrorCodeBadRequest, ""},
		{"year too old", map[string]any{"year": 1980}, nil, http.StatusBadRequest, ErrorCodeValidationFailed, "year"},
		{"negative kms", map[string]any{"kms_driven": -1}, nil, http.StatusBadRequest, ErrorCodeValidationFailed, "kms_driven"},
		{"zero power", map[string]any{"power": 0}, nil, http.StatusBadRequest, ErrorCodeValidationFailed, "power"},
		{"unknown profile", map[string]any{"profile": "narrow"}, nil, http.StatusBadRequest, ErrorCodeUnknownProfile, ""},
		{
			"predictor down", map[string]any{},
			fmt.Errorf("call: %w", domain.ErrPredictorUnavailable),
			http.StatusBadGateway, ErrorCodePredictorError, "",
		},
		{
			"unexpected failure", map[string]any{},
			errors.New("boom"),
			http.StatusInternalServerError, ErrorCodeInternalError, "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.predictor.err = tc.predictErr

			rr := f.do(t, http.MethodPost, "/api/v1/valuations", tc.body)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.wantStatus, rr.Body.String())
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
			if resp.Field != tc.wantField {
				t.Errorf("field = %q, want %q", resp.Field, tc.wantField)
			}
			if strings.Contains(resp.Message, "boom") {
				t.Errorf("internal error leaked: %q", resp.Message)
			}
		})
	}
}

// --- Export ---

func TestExportValuation(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		magic       string
	}{
		{"pdf", "application/pdf", "%PDF"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			f := newFixture(t)

			rr := f.do(t, http.MethodGet,
				"/api/v1/valuations/export?format="+tc.format+"&name=KTM+390+Duke&kms_driven=15000&year=2022", nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			if got := rr.Header().Get("Content-Type"); got != tc.contentType {
				t.Errorf("content type = %q", got)
			}
			wantDisp := `attachment; filename="valuation-ktm-390-duke.` + tc.format + `"`
			if got := rr.Header().Get("Content-Disposition"); got != wantDisp {
				t.Errorf("content disposition = %q, want %q", got, wantDisp)
			}
			if !bytes.HasPrefix(rr.Body.Bytes(), []byte(tc.magic)) {
				t.Errorf("body does not start with %q", tc.magic)
			}
			if f.predictor.rows[0].Power != 373 {
				t.Errorf("power = %v, want catalog default 373", f.predictor.rows[0].Power)
			}
		})
	}
}

func TestExportValuation_BadParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode ErrorCode
	}{
		{"missing format", "", ErrorCodeBadRequest},
		{"unsupported format", "format=csv", ErrorCodeUnsupportedFormat},
		{"non-numeric year", "format=pdf&year=soon", ErrorCodeBadRequest},
		{"invalid year", "format=pdf&year=2030", ErrorCodeValidationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			rr := f.do(t, http.MethodGet, "/api/v1/valuations/export?"+tc.query, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if resp := decode[ErrorResponse](t, rr); resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
		})
	}
}

// --- Logos ---

func TestGetLogo(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/logos/Royal%20Enfield", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.String() != "<svg/>" {
		t.Errorf("body = %q", rr.Body.String())
	}

	rr = f.do(t, http.MethodGet, "/api/v1/logos/Harley", nil)
	if rr.Code != http.StatusFound {
		t.Fatalf("missing logo status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != assets.FallbackLogoURL {
		t.Errorf("location = %q", loc)
	}
}

// --- Health & routing ---

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Listings != 4 || resp.Checks["catalog"] != "ok" {
		t.Errorf("health = %+v", resp)
	}

	f.catalog.err = domain.ErrCatalogMalformed
	rr = f.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "error" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestRouter_Auth(t *testing.T) {
	f := newFixture(t, "secret")

	if rr := f.do(t, http.MethodGet, "/api/v1/models", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/health", nil); rr.Code != http.StatusOK {
		t.Errorf("health: status = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: status = %d", rr.Code)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", resp.Code)
	}

	rr = f.do(t, http.MethodDelete, "/api/v1/models", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestRouter_RequestID(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/v1/models", nil)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/models", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeInternalError || resp.Message != "internal error" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLogoURL(t *testing.T) {
	tests := map[string]string{
		"":                         "",
		assets.FallbackLogoURL:     assets.FallbackLogoURL,
		"images/Honda.png":         "/api/v1/logos/Honda",
		"images/Royal Enfield.svg": "/api/v1/logos/Royal%20Enfield",
	}
	for in, want := range tests {
		if got := logoURL(in); got != want {
			t.Errorf("logoURL(%q) = %q, want %q", in, got, want)
		}
	}
}
