package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/mvnquery/internal/metrics"
)

// NewRouter mounts the server behind panic recovery, request IDs,
// request logging and HTTP metrics.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(metrics.Middleware())

	return HandlerWithOptions(s, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.BindErrorHandler,
	})
}
