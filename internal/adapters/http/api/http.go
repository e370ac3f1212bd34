// Package api exposes the dashboard over HTTP: the JSON API, the progress
// stream, the embedded pages and the ops endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/motionlab/internal/adapters/cookiestore"
	"github.com/okian/motionlab/internal/adapters/http/site"
	"github.com/okian/motionlab/internal/adapters/http/swagger"
	"github.com/okian/motionlab/internal/adapters/wshub"
	service "github.com/okian/motionlab/internal/app"
	"github.com/okian/motionlab/internal/domain/login"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/perfchart"
	"github.com/okian/motionlab/internal/domain/results"
	"github.com/okian/motionlab/internal/domain/upload"
	"github.com/okian/motionlab/pkg/logger"
)

const maxJSONBody = 1 << 20

// Body read bounds. Uploads get their own, longer deadline.
const (
	DefaultReadTimeout   = 10 * time.Second
	DefaultUploadTimeout = 30 * time.Minute
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	State(clientID string) service.State
	SelectVideo(ctx context.Context, clientID string, h model.VideoHandle) (service.State, error)
	RemoveVideo(ctx context.Context, clientID string) (service.State, error)
	Video(clientID string) (model.VideoHandle, bool)
	SelectType(ctx context.Context, clientID, t string) (service.State, error)

	// StartAnalysis queues a run. It fails on backpressure or while a run
	// for the client is in flight.
	StartAnalysis(ctx context.Context, clientID, t string) (service.State, error)

	View(clientID string) (results.View, error)
	ChartTimeline(clientID string, resize bool) ([]model.TimelinePoint, error)
	Report(clientID string) (body, filename string, err error)
	EndSession(ctx context.Context, clientID string)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLoginFlow sets the login flow.
func WithLoginFlow(f *login.Flow) Option {
	return func(s *Server) {
		if f != nil {
			s.flow = f
		}
	}
}

// WithUploadPolicy sets the upload acceptance rules.
func WithUploadPolicy(p upload.Policy) Option {
	return func(s *Server) {
		if p.MaxBytes > 0 {
			s.policy = p
		}
	}
}

// WithUploadDir sets where uploads are spooled. Empty means the OS temp dir.
func WithUploadDir(dir string) Option {
	return func(s *Server) { s.uploadDir = dir }
}

// WithReadTimeout bounds reading any request body other than an upload.
// Zero disables the bound.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.readTimeout = d
		}
	}
}

// WithUploadTimeout bounds reading an upload body. Zero disables the bound.
func WithUploadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.uploadTimeout = d
		}
	}
}

// WithHub sets the hub progress listeners register with.
func WithHub(h *wshub.Hub) Option {
	return func(s *Server) {
		if h != nil {
			s.hub = h
		}
	}
}

// WithChartSize sets the default chart size.
func WithChartSize(width, height int) Option {
	return func(s *Server) {
		if width > 0 && height > 0 {
			s.chart = perfchart.NewLayout(width, height)
		}
	}
}

// WithCORSOrigins sets the origins allowed to call /api.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	codec *cookiestore.Codec

	flow          *login.Flow
	policy        upload.Policy
	uploadDir     string
	readTimeout   time.Duration
	uploadTimeout time.Duration
	hub           *wshub.Hub
	chart         perfchart.Layout
	corsOrigins   []string

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	loginHandler    *loginHandler
	videoHandler    *videoHandler
	analysisHandler *analysisHandler
	resultsHandler  *resultsHandler

	logger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, codec *cookiestore.Codec, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		codec:         codec,
		flow:          login.NewFlow(),
		policy:        upload.DefaultPolicy(),
		readTimeout:   DefaultReadTimeout,
		uploadTimeout: DefaultUploadTimeout,
		chart:         perfchart.NewLayout(800, perfchart.DefaultHeight),
		corsOrigins:   []string{"*"},
		logger:        logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = wshub.NewHub()
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider, s.hub)
	s.loginHandler = &loginHandler{flow: s.flow, deps: deps}
	s.videoHandler = &videoHandler{deps: deps, policy: s.policy, dir: s.uploadDir, timeout: s.uploadTimeout}
	s.analysisHandler = &analysisHandler{deps: deps, hub: s.hub, origins: s.corsOrigins, logger: s.logger}
	s.resultsHandler = &resultsHandler{deps: deps, chart: s.chart}
	return s
}

// Routes builds the router. Site and API docs routes are included.
func (s *Server) Routes(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.clientIdentity)
	r.Use(s.bodyDeadline)

	r.Get("/healthz", observe("healthz", s.healthHandler.HandleHealth))
	r.Get("/stats", observe("stats", s.statsHandler.HandleStats))
	swagger.Register(ctx, r)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))

		r.Post("/login", observe("login", s.loginHandler.HandleLogin))
		r.Get("/login/prefill", observe("login_prefill", s.loginHandler.HandlePrefill))
		r.Post("/login/social/{provider}", observe("login_social", s.loginHandler.HandleSocial))
		r.Post("/logout", observe("logout", s.loginHandler.HandleLogout))

		r.Get("/state", observe("state", s.gated(s.analysisHandler.HandleState)))
		r.Post("/video", observe("video_upload", s.gated(s.videoHandler.HandleUpload)))
		r.Get("/video", observe("video_preview", s.gated(s.videoHandler.HandlePreview)))
		r.Delete("/video", observe("video_remove", s.gated(s.videoHandler.HandleRemove)))
		r.Put("/analysis/type", observe("analysis_type", s.gated(s.analysisHandler.HandleSelectType)))
		r.Post("/analysis", observe("analysis", s.gated(s.analysisHandler.HandleStart)))
		r.Get("/analysis/progress", s.gated(s.analysisHandler.HandleProgress))
		r.Get("/results", observe("results", s.gated(s.resultsHandler.HandleResults)))
		r.Get("/chart", observe("chart", s.gated(s.resultsHandler.HandleChart)))
		r.Get("/report", observe("report", s.gated(s.resultsHandler.HandleReport)))
	})

	site.Register(ctx, r, s.loggedIn)
	return r
}

// Shutdown closes every progress stream.
func (s *Server) Shutdown() {
	s.hub.CloseAll()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr classifies err and writes the matching response.
func writeErr(w http.ResponseWriter, err error) {
	status, body := classify(err)
	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
