package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/logger"
	"github.com/kailas-cloud/bikeval/internal/report"
	healthuc "github.com/kailas-cloud/bikeval/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
	valuationuc "github.com/kailas-cloud/bikeval/internal/usecase/valuation"
)

// ExportParams are the query parameters of GET /api/v1/valuations/export.
type ExportParams struct {
	Format    string
	Name      *string
	KmsDriven *float64
	Year      *int
	Power     *float64
	Profile   *string
}

// ListModels handles GET /api/v1/models.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.Catalog()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := c.Search(r.URL.Query().Get("q"))
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Items: items, Count: len(items)})
}

// GetSelection handles GET /api/v1/selection.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := runtime.BindQueryParameter("form", true, false, "name", r.URL.Query(), &name); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter name")
		return
	}

	c, err := s.catalog.Catalog()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, selectionToResponse(s.selection.View(name, c)))
}

// CreateValuation handles POST /api/v1/valuations.
func (s *Server) CreateValuation(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.catalog.Catalog()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	v, err := s.valuations.Valuate(r.Context(), toValuationRequest(
		req.Name, req.KmsDriven, req.Year, req.Power, req.Profile, c,
	))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, valuationToResponse(v, s.money))
}

// ExportValuation handles GET /api/v1/valuations/export.
func (s *Server) ExportValuation(w http.ResponseWriter, r *http.Request) {
	params, err := bindExportParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	f, err := report.ParseFormat(params.Format)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	c, err := s.catalog.Catalog()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var name, profileName string
	if params.Name != nil {
		name = *params.Name
	}
	if params.Profile != nil {
		profileName = *params.Profile
	}

	v, err := s.valuations.Valuate(r.Context(), toValuationRequest(
		name, params.KmsDriven, params.Year, params.Power, profileName, c,
	))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	body, err := report.Build(f, v, s.now())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	logger.FromContext(r.Context()).Debug("Valuation exported",
		zap.String("format", string(f)),
		zap.String("label", v.Label),
		zap.Int("bytes", len(body)),
	)

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename(v.Label)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// GetLogo handles GET /api/v1/logos/{brand}. A missing file redirects to the
// fallback image.
func (s *Server) GetLogo(w http.ResponseWriter, r *http.Request) {
	brand := gochi.URLParam(r, "brand")
	if p, ok := s.logos.Lookup(brand); ok {
		http.ServeFile(w, r, p)
		return
	}
	http.Redirect(w, r, s.logos.Fallback(), http.StatusFound)
}

// HealthCheck handles GET /health. A degraded cache still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rep := s.health.Check(r.Context())

	checks := make(map[string]string, len(rep.Checks))
	for k, v := range rep.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if rep.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:   string(rep.Status),
		Checks:   checks,
		Listings: rep.Listings,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindExportParams(r *http.Request) (ExportParams, error) {
	var p ExportParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "format", q, &p.Format); err != nil {
		return ExportParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "name", q, &p.Name); err != nil {
		return ExportParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "kms_driven", q, &p.KmsDriven); err != nil {
		return ExportParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "year", q, &p.Year); err != nil {
		return ExportParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "power", q, &p.Power); err != nil {
		return ExportParams{}, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "profile", q, &p.Profile); err != nil {
		return ExportParams{}, err
	}
	return p, nil
}

// toValuationRequest fills unset fields with the form defaults. Power
// defaults to the selected model's power.
func toValuationRequest(
	name string, kms *float64, year *int, power *float64, profileName string, c *catalog.Catalog,
) valuationuc.Request {
	req := valuationuc.Request{
		Name:      name,
		KmsDriven: valuationuc.DefaultKmsDriven,
		Year:      valuationuc.DefaultYear,
		Profile:   profileName,
	}
	if kms != nil {
		req.KmsDriven = *kms
	}
	if year != nil {
		req.Year = *year
	}
	if power != nil {
		req.Power = *power
	} else {
		req.Power = selectionuc.Resolve(strings.TrimSpace(name), c).DefaultPower
	}
	return req
}
