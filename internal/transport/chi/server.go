package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/domain"
	"github.com/kailas-cloud/mvnquery/internal/domain/maven"
	"github.com/kailas-cloud/mvnquery/internal/logger"
	downloaduc "github.com/kailas-cloud/mvnquery/internal/usecase/download"
	healthuc "github.com/kailas-cloud/mvnquery/internal/usecase/health"
)

// VersionLister lists version groups for a coordinate filter.
type VersionLister interface {
	List(ctx context.Context, f maven.Filter) ([]maven.VersionGroup, error)
	ListDisplay(ctx context.Context, f maven.Filter) ([]maven.DisplayVersion, error)
}

// Locator resolves and opens one artifact file.
type Locator interface {
	Locate(ctx context.Context, req downloaduc.Request) (*downloaduc.Artifact, error)
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements ServerInterface.
type Server struct {
	versions      VersionLister
	downloads     Locator
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates the HTTP API server.
func NewServer(versions VersionLister, downloads Locator, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		versions:  versions,
		downloads: downloads,
		health:    health,
		logger:    logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest),
			sentinelHandler(domain.ErrInvalidCoordinate, http.StatusBadRequest),
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		},
	}
}

// ListVersions handles GET /maven/versions.
func (s *Server) ListVersions(w http.ResponseWriter, r *http.Request, params ListVersionsParams) {
	groups, err := s.versions.List(r.Context(), filterFromParams(params))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, versionGroupsToResponse(groups))
}

// ListRundeckVersions handles GET /maven/rundeck/versions.
func (s *Server) ListRundeckVersions(w http.ResponseWriter, r *http.Request, params ListVersionsParams) {
	pairs, err := s.versions.ListDisplay(r.Context(), filterFromParams(params))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	if pairs == nil {
		pairs = []maven.DisplayVersion{}
	}
	writeJSON(w, http.StatusOK, pairs)
}

// Download handles GET /maven/download and streams the artifact body.
func (s *Server) Download(w http.ResponseWriter, r *http.Request, params DownloadParams) {
	art, err := s.downloads.Locate(r.Context(), downloaduc.Request{
		Repository: params.R,
		GroupID:    params.G,
		ArtifactID: params.A,
		Version:    params.V,
		Classifier: derefString(params.C),
		Extension:  derefString(params.E),
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	defer func() { _ = art.Blob.Body.Close() }()

	h := w.Header()
	h.Set("Content-Type", art.Blob.ContentType)
	h.Set("Content-Disposition", `attachment; filename="`+art.FileName+`"`)
	if art.Blob.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(art.Blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, art.Blob.Body); err != nil {
		// Headers are already sent; the client sees a truncated body.
		logger.FromContextOr(r.Context(), s.logger).Warn("artifact stream interrupted",
			zap.String("file", art.FileName),
			zap.Error(err),
		)
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: report.Status, Checks: report.Checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// BindErrorHandler answers query binding failures with 400 and no body.
func (s *Server) BindErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContextOr(r.Context(), s.logger).Warn("invalid query parameters", zap.Error(err))
	w.WriteHeader(http.StatusBadRequest)
}

func filterFromParams(p ListVersionsParams) maven.Filter {
	return maven.Filter{
		Repository: derefString(p.R),
		GroupID:    derefString(p.G),
		ArtifactID: derefString(p.A),
		Classifier: derefString(p.C),
		Extension:  derefString(p.E),
		Limit:      derefInt(p.L),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sentinelHandler maps a sentinel to a status. Error responses carry no body.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		w.WriteHeader(status)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
}
