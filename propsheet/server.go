package propsheet

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/topi314/tint"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/tillfield/propsheet/internal/httperr"
	"github.com/tillfield/propsheet/internal/httprate"
	"github.com/tillfield/propsheet/internal/ver"
	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

var (
	Name      = "propsheet"
	Namespace = "github.com/tillfield/propsheet"
)

func NewServer(version ver.Version, cfg Config, client *smartsheet.Client, fetcher *Fetcher, generator *Generator, publisher *Publisher) *Server {
	tracer := tracenoop.NewTracerProvider().Tracer(Name)
	if cfg.Otel != nil {
		tracer = otel.Tracer(Name)
	}

	s := &Server{
		version:   version,
		cfg:       cfg,
		client:    client,
		fetcher:   fetcher,
		generator: generator,
		publisher: publisher,
		tracer:    tracer,
	}

	s.server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.Routes(),
	}

	if cfg.RateLimit != nil {
		s.rateLimitHandler = httprate.NewRateLimiter(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Duration,
			func(w http.ResponseWriter, r *http.Request) {
				s.error(w, r, httperr.TooManyRequests(ErrRateLimit))
			},
		).Handler
	}

	return s
}

type Server struct {
	version          ver.Version
	cfg              Config
	client           *smartsheet.Client
	fetcher          *Fetcher
	generator        *Generator
	publisher        *Publisher
	server           *http.Server
	tracer           trace.Tracer
	rateLimitHandler func(http.Handler) http.Handler

	// pipelineMu serializes webhook-triggered pipeline runs. chi handles
	// requests concurrently and two deliveries for the same address would
	// otherwise race on the same output file.
	pipelineMu sync.Mutex
}

func (s *Server) Start() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to listen", tint.Err(err))
	}
}

func (s *Server) Close() {
	if err := s.server.Close(); err != nil {
		slog.Error("failed to close server", tint.Err(err))
	}
}
