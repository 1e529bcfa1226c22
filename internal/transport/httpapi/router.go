package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/usecase/pipeline"
)

// NewRouter assembles the video pipeline API.
func NewRouter(svc *pipeline.Service) http.Handler {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(withCorrelationID)
	r.Use(requestLogger)
	r.Use(recoverPanic)

	r.Route("/videos", func(r chi.Router) {
		r.Post("/", h.createVideo)
		r.Get("/", h.listVideos)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getVideo)
			r.Post("/claim", h.claimVideo)
			r.Post("/release", h.releaseVideo)
			r.Post("/transition", h.transitionVideo)
			r.Post("/script", h.attachScript)
			r.Get("/events", h.listEvents)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, CodeNotFound, "no such route", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed", nil)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Info(r.Context(), "request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Error(r.Context(), "handler panicked",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
				)
				writeError(w, r, http.StatusInternalServerError, CodeInternal, "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
