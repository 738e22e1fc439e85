package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookingrisk/internal/config"
	"bookingrisk/internal/domain"
	"bookingrisk/internal/models"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators the HTTP front end drives.
type Deps struct {
	Predictor domain.PredictionService
	Forms     domain.FormStateStore
	// Limits, if set, enforces a window limit on predictions shared between replicas.
	Limits domain.RateLimiter
	// Ready reports whether the model is loaded.
	Ready  func() bool
	Logger *zerolog.Logger
}

// HTTPServer serves the booking form and the JSON prediction API.
type HTTPServer struct {
	cfg     config.HTTPConfig
	session config.SessionConfig
	deps    Deps
	logger  *zerolog.Logger
	limiter *rateLimiter
	server  *http.Server
}

func NewHTTPServer(cfg config.HTTPConfig, session config.SessionConfig, deps Deps) *HTTPServer {
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.Title == "" {
		cfg.Title = config.DefaultTitle
	}
	if session.CookieName == "" {
		session.CookieName = config.DefaultCookieName
	}

	srv := &HTTPServer{
		cfg:     cfg,
		session: session,
		deps:    deps,
		logger:  logger,
		limiter: newRateLimiter(cfg.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleIndex)
	mux.HandleFunc("POST /{$}", srv.handleSubmit)
	mux.HandleFunc("POST /reset", srv.handleReset)
	mux.HandleFunc("POST /api/v1/predict", srv.handlePredict)
	mux.HandleFunc("GET /api/v1/fields", srv.handleFields)
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /readyz", srv.handleReady)

	handler := requestIDMiddleware(
		loggingMiddleware(logger,
			metricsMiddleware(
				srv.limiter.Wrap(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handlePredict accepts a partial BookingInput; omitted fields keep their
// form defaults. Values are validated rather than clamped.
func (s *HTTPServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !s.allowPrediction(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	in := models.DefaultInput()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&in); err != nil {
		if !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
			return
		}
	} else if err := decoder.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: expected a single object")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prediction, err := s.deps.Predictor.Predict(r.Context(), in)
	if err != nil {
		s.writePredictionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

func (s *HTTPServer) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": models.Fields()})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Ready != nil && !s.deps.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "model not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) writePredictionError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := predictionErrorStatus(err)
	zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("prediction request failed")
	writeError(w, status, msg)
}

func predictionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request canceled"
	default:
		return http.StatusInternalServerError, "prediction failed"
	}
}

// allowPrediction applies the shared window limit. Store errors let the request through.
func (s *HTTPServer) allowPrediction(r *http.Request) bool {
	if s.deps.Limits == nil {
		return true
	}
	key := "predict:" + clientKey(r)
	allowed, err := s.deps.Limits.CheckRateLimit(r.Context(), key, models.RateLimitRequests, models.RateLimitWindow*time.Second)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	return allowed
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
