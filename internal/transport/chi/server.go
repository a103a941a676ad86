package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bikeval/internal/assets"
	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/catalog"
	"github.com/kailas-cloud/bikeval/internal/format"
	healthuc "github.com/kailas-cloud/bikeval/internal/usecase/health"
	selectionuc "github.com/kailas-cloud/bikeval/internal/usecase/selection"
	valuationuc "github.com/kailas-cloud/bikeval/internal/usecase/valuation"
)

// ErrorCode is the machine-readable error kind in an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnknownProfile     ErrorCode = "unknown_profile"
	ErrorCodeUnsupportedFormat  ErrorCode = "unsupported_format"
	ErrorCodePredictorError     ErrorCode = "predictor_error"
	ErrorCodeCatalogUnavailable ErrorCode = "catalog_unavailable"
	ErrorCodeModelUnavailable   ErrorCode = "model_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	ErrorCodePredictorContract  ErrorCode = "predictor_contract"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// CatalogSource yields the loaded catalog.
type CatalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

// Server serves the valuation API.
type Server struct {
	catalog       CatalogSource
	selection     *selectionuc.Service
	valuations    *valuationuc.Service
	health        *healthuc.Service
	logos         *assets.Resolver
	money         *format.Money
	now           func() time.Time
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	catalogSource CatalogSource,
	selection *selectionuc.Service,
	valuations *valuationuc.Service,
	health *healthuc.Service,
	logos *assets.Resolver,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog:    catalogSource,
		selection:  selection,
		valuations: valuations,
		health:     health,
		logos:      logos,
		money:      format.Default(),
		now:        time.Now,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		inputErrorHandler,
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrUnknownProfile, http.StatusBadRequest, ErrorCodeUnknownProfile),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, ErrorCodeUnsupportedFormat),
		sentinelHandler(domain.ErrPredictorUnavailable, http.StatusBadGateway, ErrorCodePredictorError),
		sentinelHandler(domain.ErrPredictorContract,
			http.StatusBadGateway, ErrorCodePredictorContract),
		sentinelHandler(domain.ErrModelArtifact, http.StatusServiceUnavailable, ErrorCodeModelUnavailable),
		sentinelHandler(domain.ErrCatalogEmpty, http.StatusServiceUnavailable, ErrorCodeCatalogUnavailable),
		sentinelHandler(domain.ErrCatalogMalformed,
			http.StatusServiceUnavailable, ErrorCodeCatalogUnavailable),
	}
	return s
}

// WithMoney overrides the display formatter used in export filenames and reports.
func (s *Server) WithMoney(m *format.Money) *Server {
	s.money = m
	return s
}

// WithClock overrides the time source stamped on exported reports.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var ie *domain.InputError
	if errors.As(err, &ie) {
		return ie.Error()
	}
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrUnknownProfile,
		domain.ErrUnsupportedFormat,
		domain.ErrPredictorUnavailable,
		domain.ErrPredictorContract,
		domain.ErrModelArtifact,
		domain.ErrCatalogEmpty,
		domain.ErrCatalogMalformed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// inputErrorHandler reports the offending field of an InputError.
func inputErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var ie *domain.InputError
	if !errors.As(err, &ie) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    ErrorCodeValidationFailed,
		Message: msg,
		Field:   ie.Field,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
