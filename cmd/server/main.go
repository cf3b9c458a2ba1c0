// Command server runs the hospital billing rule engine HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/sehatkita/billing-engine/billing"
	"github.com/sehatkita/billing-engine/internal/metrics"
)

type Server struct {
	db       *sql.DB
	engine   *billing.Engine
	metrics  *metrics.Collector
	validate *validator.Validate
	logger   *slog.Logger
	router   *chi.Mux
}

func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	var db *sql.DB
	var store billing.RuleStore

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store = billing.NewPostgresRuleStore(db)
		logger.Info("using postgres rule store")
	} else {
		store = billing.NewInMemoryRuleStore()
		logger.Warn("DATABASE_URL not set, rules are held in memory only")
	}

	var cache billing.RulesCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		cache = billing.NewRedisRulesCache(client, billing.CacheConfig{TTL: cfg.CacheTTL})
		logger.Info("using redis rules cache", slog.String("addr", cfg.RedisAddr))
	} else {
		cache = billing.NewInMemoryRulesCache(billing.CacheConfig{TTL: cfg.CacheTTL})
	}

	s := &Server{
		db:       db,
		engine:   billing.NewEngineWithCache(store, cache, logger),
		metrics:  metrics.NewCollector(),
		validate: validator.New(),
		logger:   logger,
	}

	s.setupRoutes(cfg)

	return s, nil
}

func (s *Server) setupRoutes(cfg Config) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(cfg.RequestsPerMin, time.Minute))

	// Health check
	r.Get("/api/v1/health", s.handleHealth)

	// Invoice calculation
	r.Post("/api/v1/invoices/calculate", s.handleCalculateInvoice)

	// Rule management
	r.Route("/api/v1/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/", s.handleCreateRule)
		r.Post("/test", s.handleSimulate)

		r.Route("/{ruleId}", func(r chi.Router) {
			r.Get("/", s.handleGetRule)
			r.Put("/", s.handleUpdateRule)
			r.Delete("/", s.handleDeleteRule)
		})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", s.metrics.Handler())

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unhealthy",
				Details: err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// Invoice calculation handler
func (s *Server) handleCalculateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CalculateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start := time.Now()
	result, err := s.engine.CalculateInvoice(req.Charges, req.Context)
	if err != nil {
		var cve *billing.ChargeValidationError
		if errors.As(err, &cve) {
			s.metrics.RecordCalculation(time.Since(start), 0, true)
			respondError(w, http.StatusBadRequest, "invalid charges", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "calculation failed", err)
		return
	}
	s.metrics.RecordCalculation(time.Since(start), len(result.Warnings), false)

	respondJSON(w, http.StatusOK, result)
}

// Rule simulation handler
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}
	if req.Amount.IsNegative() {
		respondError(w, http.StatusBadRequest, "amount must not be negative", nil)
		return
	}

	outcomes, err := s.engine.SimulateRules(req.Scenario, req.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "simulation failed", err)
		return
	}
	s.metrics.RecordSimulation()

	respondJSON(w, http.StatusOK, SimulateResponse{Outcomes: outcomes})
}

// Create rule handler
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	rule := ruleFromRequest(&req)
	rule.ID = uuid.NewString()

	if err := s.engine.AddRule(rule); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add rule", err)
		return
	}

	respondJSON(w, http.StatusCreated, rule)
}

// List rules handler
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.engine.ListRules()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list rules", err)
		return
	}

	if r.URL.Query().Get("active") == "true" {
		active := rules[:0:0]
		for _, rule := range rules {
			if rule.Active {
				active = append(active, rule)
			}
		}
		rules = active
	}
	if rules == nil {
		rules = []*billing.Rule{}
	}

	respondJSON(w, http.StatusOK, RulesListResponse{Rules: rules})
}

// Get rule handler
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	rule, err := s.engine.GetRule(ruleID)
	if err != nil {
		respondError(w, http.StatusNotFound, "rule not found", err)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

// Update rule handler
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	var req RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	rule := ruleFromRequest(&req)
	rule.ID = ruleID

	if err := s.engine.UpdateRule(rule); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "rule not found", err)
			return
		}
		respondError(w, http.StatusBadRequest, "failed to update rule", err)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

// Delete rule handler
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "ruleId")

	if err := s.engine.DeleteRule(ruleID); err != nil {
		respondError(w, http.StatusNotFound, "rule not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ruleFromRequest(req *RuleRequest) *billing.Rule {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return &billing.Rule{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.RuleType,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		Priority:    req.Priority,
		Active:      active,
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	cfg := LoadConfig()
	logger := setupLogger(cfg.LogLevel)

	server, err := NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.Any("error", err))
		os.Exit(1)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")
}
