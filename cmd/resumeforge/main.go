package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/resumeforge/resumeforge/internal/config"
	"github.com/resumeforge/resumeforge/internal/db"
	dbMemory "github.com/resumeforge/resumeforge/internal/db/memory"
	dbRedis "github.com/resumeforge/resumeforge/internal/db/redis"
	"github.com/resumeforge/resumeforge/internal/domain"
	"github.com/resumeforge/resumeforge/internal/index"
	logpkg "github.com/resumeforge/resumeforge/internal/logger"
	"github.com/resumeforge/resumeforge/internal/metrics"
	"github.com/resumeforge/resumeforge/internal/repository/doclog"
	"github.com/resumeforge/resumeforge/internal/repository/embcache"
	chiTransport "github.com/resumeforge/resumeforge/internal/transport/chi"
	geminiGen "github.com/resumeforge/resumeforge/internal/transport/gemini"
	openaiTransport "github.com/resumeforge/resumeforge/internal/transport/openai"
	"github.com/resumeforge/resumeforge/internal/transport/serper"
	healthuc "github.com/resumeforge/resumeforge/internal/usecase/health"
	jobsuc "github.com/resumeforge/resumeforge/internal/usecase/jobs"
	optimizeuc "github.com/resumeforge/resumeforge/internal/usecase/optimize"
	parseuc "github.com/resumeforge/resumeforge/internal/usecase/parse"
	retrievaluc "github.com/resumeforge/resumeforge/internal/usecase/retrieval"
	"github.com/resumeforge/resumeforge/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting resumeforge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("generation_driver", cfg.Generation.Driver),
	)

	// Create database store based on driver
	var store db.Store
	switch cfg.Database.Driver {
	case "memory":
		store = dbMemory.NewStore()
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterRetrievalMetrics()

	// Build embedder chain — composition root
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)
	if cfg.Embedding.DocumentInstruction != "" {
		// Outermost so cache keys include the instruction.
		embedder = domain.NewInstructionEmbedder(embedder, cfg.Embedding.DocumentInstruction)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Build generator based on driver
	textGen, genCloser, err := buildGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}
	if genCloser != nil {
		defer func() { _ = genCloser() }()
	}
	logger.Info("Generator created",
		zap.String("driver", cfg.Generation.Driver),
		zap.String("model", cfg.Generation.Model),
	)

	// Create use case services
	retrievalSvc := retrievaluc.New(
		index.NewFlat(cfg.Embedding.Dimensions), embedder, doclog.New(store), logger,
	).
		WithDefaultK(cfg.Retrieval.DefaultK).
		WithEmbedTimeout(time.Duration(cfg.Embedding.TimeoutSec) * time.Second)

	restored, err := retrievalSvc.Rehydrate(ctx)
	if err != nil {
		logger.Fatal("Failed to rehydrate document index", zap.Error(err))
	}
	logger.Info("Document index rehydrated", zap.Int("documents", restored))

	genTimeout := time.Duration(cfg.Generation.TimeoutSec) * time.Second
	optimizeSvc := optimizeuc.New(retrievalSvc, textGen, logger).
		WithContextK(cfg.Retrieval.ContextK).
		WithGenerateTimeout(genTimeout)
	parseSvc := parseuc.New(textGen, logger).
		WithGenerateTimeout(genTimeout)

	searcher := serper.NewClient(&serper.Config{
		APIKey:     cfg.JobSearch.APIKey,
		BaseURL:    cfg.JobSearch.BaseURL,
		NumResults: cfg.JobSearch.NumResults,
		Logger:     logger,
	})
	jobsSvc := jobsuc.New(searcher, logger).
		WithSearchTimeout(time.Duration(cfg.JobSearch.TimeoutSec) * time.Second)

	var genChecker healthuc.GenerationChecker
	if hc, ok := textGen.(healthuc.GenerationChecker); ok {
		genChecker = hc
	}
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(baseEmbedder), genChecker, retrievalSvc)

	// Create chi server
	server := chiTransport.NewServer(retrievalSvc, optimizeSvc, parseSvc, jobsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// generator is the shared text generation contract of the optimize and parse services.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// buildGenerator selects the generation driver. The returned closer is nil for
// drivers without a connection to release.
func buildGenerator(
	ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger,
) (generator, func() error, error) {
	switch cfg.Driver {
	case "gemini":
		gen, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("gemini generator: %w", err)
		}
		return gen, gen.Close, nil
	case "openai":
		gen := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: "openai",
			Logger:   logger,
		})
		return gen, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown generation driver %q", cfg.Driver)
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
