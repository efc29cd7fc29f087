package api

import (
	"context"
	"net/http"
	"time"

	"chat-widget/internal/model"
	"chat-widget/internal/queue"
	"chat-widget/internal/service/transcript"
	"chat-widget/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type RouteRegistrar func(r chi.Router, s *APIServer)

type ServerConfig struct {
	ListenAddr      string
	Queue           *queue.Manager
	Transcripts     *transcript.Service
	Hub             *websocket.Hub
	Surface         *websocket.Handler
	DefaultPlatform model.Platform
	// DefaultBaseURL is the surface URL for configurations without a webviewUrl.
	DefaultBaseURL string
	AllowedOrigins []string
	// Registry receives the HTTP collectors. A private registry is used when nil.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.Manager
	transcripts         *transcript.Service
	hub                 *websocket.Hub
	surface             *websocket.Handler
	defaultPlatform     model.Platform
	defaultBaseURL      string
	allowedOrigins      []string
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
	logger              zerolog.Logger
}

func NewAPIServer(cfg ServerConfig, registrars ...RouteRegistrar) *APIServer {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = model.PlatformIOS
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return &APIServer{
		listenAddr:          cfg.ListenAddr,
		requestQueueManager: cfg.Queue,
		transcripts:         cfg.Transcripts,
		hub:                 cfg.Hub,
		surface:             cfg.Surface,
		defaultPlatform:     cfg.DefaultPlatform,
		defaultBaseURL:      cfg.DefaultBaseURL,
		allowedOrigins:      cfg.AllowedOrigins,
		routeRegistrars:     registrars,
		metrics:             newMetrics(reg, cfg.ListenAddr, cfg.Queue),
		logger:              cfg.Logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the HTTP handler with every registered route.
func (s *APIServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
	}))

	for _, reg := range s.routeRegistrars {
		reg(r, s)
	}

	r.Handle("/metrics", s.metrics.metricsHandler())
	return s.metrics.instrument(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.listenAddr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func (s *APIServer) Transcripts() *transcript.Service {
	return s.transcripts
}

func (s *APIServer) Hub() *websocket.Hub {
	return s.hub
}

func (s *APIServer) Surface() *websocket.Handler {
	return s.surface
}

func (s *APIServer) DefaultPlatform() model.Platform {
	return s.defaultPlatform
}

func (s *APIServer) DefaultBaseURL() string {
	return s.defaultBaseURL
}

func (s *APIServer) Logger() zerolog.Logger {
	return s.logger
}
