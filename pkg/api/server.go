// Package api exposes the browser holder as a REST surface. Each
// endpoint decodes a request, makes exactly one holder call and
// encodes the result; there is no state here beyond the HTTP server
// itself.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/odvcencio/browserd/pkg/browser"
)

// Config controls the API server.
type Config struct {
	Bind         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// SettleDelay is applied after navigation-style calls when the
	// request has no wait parameter.
	SettleDelay time.Duration

	// MaxWait caps the wait query parameter.
	MaxWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:5000"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 2 * time.Minute
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxWait == 0 {
		c.MaxWait = 30 * time.Second
	}
	return c
}

// Server is the browserd REST server.
type Server struct {
	cfg        Config
	holder     *browser.Holder
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates the API server around a session holder.
func NewServer(cfg Config, holder *browser.Holder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg.withDefaults(),
		holder: holder,
		logger: logger.With(zap.String("component", "api")),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.requestIDMiddleware)
	router.Use(s.loggingMiddleware)
	router.Use(s.corsMiddleware)

	router.Get("/", s.handleIndex)
	router.Get("/healthz", s.handleHealthz)
	router.Get("/metrics", promhttp.Handler().ServeHTTP)

	router.Get("/status", s.handleStatus)
	router.Post("/start", s.handleStart)
	router.Post("/stop", s.handleStop)

	router.Post("/goto", s.handleGoto)
	router.Post("/back", s.handleBack)
	router.Post("/forward", s.handleForward)
	router.Post("/refresh", s.handleRefresh)

	router.Get("/screenshot", s.handleScreenshot)
	router.Get("/screenshot/base64", s.handleScreenshotBase64)
	router.Get("/source", s.handleSource)

	router.Get("/elements/links", s.handleLinks)
	router.Get("/elements/forms", s.handleForms)
	router.Get("/elements/buttons", s.handleButtons)

	router.Post("/click", s.handleClick)
	router.Post("/fill", s.handleFill)
	router.Post("/execute", s.handleExecute)

	s.httpServer = &http.Server{
		Addr:         s.cfg.Bind,
		Handler:      router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("bind", s.cfg.Bind))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Middleware

type ctxKey string

const requestIDKey ctxKey = "request_id"

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		id, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", id))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: statusError, Message: message})
}

// writeError maps holder/driver errors to the wire taxonomy: no active
// session, element not found, or a driver failure reported verbatim.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case browser.IsSessionError(err):
		writeErrorMessage(w, http.StatusConflict, "no active browser session")
	case browser.IsNotFound(err):
		writeErrorMessage(w, http.StatusNotFound, "element not found")
	default:
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
	}
}
