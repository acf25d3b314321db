package propsheet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	slogchi "github.com/samber/slog-chi"

	"github.com/tillfield/propsheet/internal/ezhttp"
	"github.com/tillfield/propsheet/internal/httperr"
)

var (
	ErrNoRelevantEvents = errors.New("no relevant events found")
	ErrNoActiveRows     = errors.New("no active rows to process")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(otelchi.Middleware(Name, otelchi.WithChiRoutes(r)))
	r.Use(middleware.CleanPath)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(slogchi.NewWithConfig(slog.Default(), slogchi.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelDebug,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithSpanID:       s.cfg.Otel != nil,
		WithTraceID:      s.cfg.Otel != nil,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if s.cfg.RateLimit != nil {
		r.Use(s.RateLimit)
	}

	if s.cfg.Debug {
		r.Mount("/debug", middleware.Profiler())
	}

	r.Get("/", s.GetRoot)
	r.Get("/version", s.GetVersion)
	r.Route("/webhook", func(r chi.Router) {
		r.Get("/", s.GetWebhook)
		r.Post("/", s.PostWebhook)
	})

	if s.cfg.HTTPTimeout > 0 {
		return http.TimeoutHandler(r, s.cfg.HTTPTimeout, "Request timed out")
	}
	return r
}

func (s *Server) GetRoot(w http.ResponseWriter, r *http.Request) {
	s.text(w, r, "✅ Smartsheet Automation is Running!")
}

func (s *Server) GetVersion(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(s.version.Format()))
}

func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, http.ErrHandlerTimeout) {
		return
	}

	status := http.StatusInternalServerError
	var httpErr *httperr.Error
	if errors.As(err, &httpErr) {
		status = httpErr.Status
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "internal server error", slog.Any("err", err))
	}
	s.json(w, r, ezhttp.ErrorResponse{
		Message:   err.Error(),
		Status:    status,
		Path:      r.URL.Path,
		RequestID: middleware.GetReqID(r.Context()),
	}, status)
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, v any) {
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.json(w, r, v, http.StatusOK)
}

func (s *Server) json(w http.ResponseWriter, r *http.Request, v any, status int) {
	w.Header().Set(ezhttp.HeaderContentType, ezhttp.ContentTypeJSON)
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.ErrorContext(r.Context(), "failed to encode json", slog.Any("err", err))
	}
}

func (s *Server) text(w http.ResponseWriter, r *http.Request, body string) {
	w.Header().Set(ezhttp.HeaderContentType, ezhttp.ContentTypeText)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write([]byte(body)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", slog.Any("err", err))
	}
}
