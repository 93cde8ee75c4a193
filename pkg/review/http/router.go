package http

import (
	"log/slog"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/ahkcurate/pkg/review"
)

// Deps are the services behind the API. Grader is optional; the sample
// routes are only mounted when it is set.
type Deps struct {
	Service *review.Service
	Grader  *review.Grader
	Logger  *slog.Logger
	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the API routes. Script IDs are relative paths and may
// contain slashes, so the ID routes use a trailing wildcard.
func NewRouter(d Deps) stdhttp.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &handlers{svc: d.Service, grader: d.Grader, logger: d.Logger}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(d.Logger),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}),
		middleware.Heartbeat("/health"),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/scripts", h.listScripts)
		r.Get("/scripts/*", h.getScript)
		r.Get("/script-content/*", h.getContent)
		r.Put("/script-content/*", h.putContent)
		r.Post("/script-status/*", h.setStatus)
		r.Post("/script-lint/*", h.lint)
		r.Post("/script-fix/*", h.fix)
		r.Post("/script-run/*", h.run)
		r.Get("/categories", h.categories)
		r.Get("/stats", h.stats)
		r.Get("/state", h.state)

		if d.Grader != nil {
			r.Get("/samples", h.listSamples)
			r.Get("/samples/{idx}", h.getSample)
			r.Post("/samples/{idx}/grade", h.gradeSample)
		}
	})
	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
