// Package server provides the HTTP API for the talent pool.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/config"
	"github.com/jonathan/talent-pool/internal/logging"
	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/server/middleware"
	"github.com/jonathan/talent-pool/internal/server/ratelimit"
	"github.com/jonathan/talent-pool/internal/telemetry"
	"github.com/jonathan/talent-pool/internal/types"
	"go.opentelemetry.io/otel/attribute"
)

// Store is the read side the handlers need.
type Store interface {
	UserLookup
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	LatestAssessment(ctx context.Context, candidateID uuid.UUID) (*types.AssessmentCompletion, error)
	ListTalentPool(ctx context.Context, q types.TalentPoolQuery) ([]types.Candidate, int, error)
	GetJobRequirements(ctx context.Context, id uuid.UUID) (*types.JobRequirements, error)
}

// Recomputer runs score recomputation.
type Recomputer interface {
	Recompute(ctx context.Context, req types.RecomputeRequest) (*recompute.Result, error)
	RecomputeOne(ctx context.Context, id uuid.UUID) (*types.ScoreUpdate, error)
}

// Config holds server configuration. Nil auth configs are loaded from the environment.
type Config struct {
	Port      int
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	recomputer  Recomputer
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	logger      *slog.Logger
}

// New creates a server over the given store and recompute driver.
func New(cfg Config, store Store, recomputer Recomputer) (*Server, error) {
	if store == nil || recomputer == nil {
		return nil, fmt.Errorf("store and recomputer are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	passwordConfig := cfg.Password
	if passwordConfig == nil {
		var err error
		if passwordConfig, err = config.NewPasswordConfig(); err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
	}
	jwtConfig := cfg.JWT
	if jwtConfig == nil {
		var err error
		if jwtConfig, err = config.NewJWTConfig(); err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		store:       store,
		recomputer:  recomputer,
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		jwtService:  NewJWTService(jwtConfig),
		logger:      logger,
	}
	s.authHandler = NewAuthHandler(NewUserService(store, passwordConfig), s.jwtService, logger)

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	staffOnly := middleware.RequireRole(types.RoleRecruiter, types.RoleAdmin)
	staff := func(h http.HandlerFunc) http.Handler { return authed(staffOnly(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)

	// Talent pool (recruiter/admin)
	mux.Handle("GET /v1/talent-pool", staff(s.handleListTalentPool))
	mux.Handle("POST /v1/talent-pool/recompute", staff(s.handleRecompute))

	// Per-candidate score (self or staff)
	mux.Handle("GET /v1/candidates/{id}/score", authed(http.HandlerFunc(s.handleGetScore)))
	mux.Handle("POST /v1/candidates/{id}/score", authed(http.HandlerFunc(s.handleRecomputeScore)))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // batch recompute can run up to its own deadline
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// JWT returns the token service.
func (s *Server) JWT() *JWTService {
	return s.jwtService
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging traces and logs each request with a request ID.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx, span := telemetry.Tracer().Start(r.Context(), "http.request")
		defer span.End()
		ctx = logging.WithLogFields(ctx, logging.LogFields{RequestID: logging.Ptr(requestID), Component: "talent_pool.server"})

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.Int("http.status_code", rec.status),
		)
		s.logger.InfoContext(ctx, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID uses the remote IP as the client identifier.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"success": false,
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retryAfter"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	s.logger.WarnContext(r.Context(), "rate limit exceeded", "path", r.URL.Path, "client", extractClientID(r))
	writeJSON(s.logger, w, http.StatusTooManyRequests, response)
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func failure(message string) failureResponse {
	return failureResponse{Success: false, Message: message}
}

// writeJSON writes a JSON response
func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("error encoding JSON response", "error", err)
	}
}
