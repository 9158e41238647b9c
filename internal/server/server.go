package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modelsagent/internal/catalog"
	"modelsagent/internal/config"
	"modelsagent/internal/core"
	"modelsagent/internal/inference"
	"modelsagent/internal/metrics"
	"modelsagent/internal/process"
	"modelsagent/internal/signature"
	"modelsagent/internal/storage"
	"modelsagent/internal/tools"

	"github.com/gin-gonic/gin"
)

// Server application server
type Server struct {
	port    string
	ginMode string

	httpClient *http.Client
	router     *gin.Engine

	metricsService *metrics.MetricsService
	keyCache       core.KeyCache

	verifier         *signature.Verifier
	requestProcessor *process.RequestProcessor
	completion       *inference.Client

	config config.ServerConfig

	rateLimiter *rateLimiter

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required in ServerConfig")
	}
	if err := cfg.Endpoints.Validate(); err != nil {
		return nil, err
	}
	if cfg.RateLimit <= 0 {
		cfg.Logger.Warn("Invalid rate limit %d, using default %d", cfg.RateLimit, core.DefaultRateLimit)
		cfg.RateLimit = core.DefaultRateLimit
	}

	httpClient := createOptimizedHTTPClient(cfg.HTTPClientSettings)
	metricsService := metrics.NewMetricsService()

	keyCache := cfg.KeyCache
	if keyCache == nil {
		keyCache = storage.NewMemoryKeyCache(cfg.Endpoints.KeysURL)
	}

	verifier := signature.NewVerifier(signature.VerifierConfig{
		Keys:     signature.NewKeyFetcher(httpClient, cfg.Endpoints.KeysURL, cfg.Timeouts.KeyFetch, metricsService),
		KeyCache: keyCache,
		TTL:      cfg.KeyCacheTTL,
		Logger:   cfg.Logger,
		Metrics:  metricsService,
	})

	registry, err := tools.NewRegistry(cfg.Prompts, cfg.Models.Default, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	catalogClient := catalog.NewClient(httpClient, cfg.Endpoints.CatalogBaseURL, cfg.Timeouts.Catalog, metricsService)

	selector := inference.NewClient(inference.ClientConfig{
		Name:       "tool calling",
		BaseURL:    cfg.Endpoints.ToolCallingBaseURL,
		HTTPClient: httpClient,
		Timeout:    cfg.Timeouts.ToolCall,
		Metrics:    metricsService,
	})
	completion := inference.NewClient(inference.ClientConfig{
		Name:       "completion",
		BaseURL:    cfg.Endpoints.CompletionBaseURL,
		HTTPClient: httpClient,
		Metrics:    metricsService,
	})

	processor := process.NewRequestProcessor(process.ProcessorConfig{
		Selector:         selector,
		Tools:            registry,
		NewCatalog:       func() core.ModelCatalog { return catalog.New(catalogClient) },
		SelectionPrompt:  cfg.Prompts.ToolSelection,
		ToolCallingModel: cfg.Models.ToolCalling,
		DefaultModel:     cfg.Models.Default,
		MarketplaceURL:   cfg.Endpoints.MarketplaceURL,
		Metrics:          metricsService,
	})

	cfg.Logger.Info("Registered %d tools", len(registry.Definitions()))

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	server := &Server{
		port:             cfg.Port,
		ginMode:          cfg.GinMode,
		httpClient:       httpClient,
		metricsService:   metricsService,
		keyCache:         keyCache,
		verifier:         verifier,
		requestProcessor: processor,
		completion:       completion,
		config:           cfg,
		rateLimiter:      newRateLimiter(cfg.RateLimit),
		shutdownCtx:      shutdownCtx,
		shutdownCancel:   shutdownCancel,
	}

	server.setupRoutes()

	return server, nil
}

func createOptimizedHTTPClient(settings config.HTTPClientSettings) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          settings.MaxIdleConns,
		MaxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
		MaxConnsPerHost:       settings.MaxConnsPerHost,
		IdleConnTimeout:       settings.IdleConnTimeout,
		TLSHandshakeTimeout:   settings.TLSHandshakeTimeout,
		ExpectContinueTimeout: core.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: settings.ResponseHeaderTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   settings.RequestTimeout,
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run runs the server
func (s *Server) Run() error {
	s.setupGracefulShutdown()

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.config.HTTPClientSettings.RequestTimeout, // completion streams
	}

	go func() {
		<-s.shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.config.Logger.Error("Server shutdown error: %v", err)
		}
	}()

	s.config.Logger.Info("Server starting on port %s", s.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) setupGracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			s.config.Logger.Info("Shutdown signal received, shutting down gracefully...")
			s.shutdownCancel()
		case <-s.shutdownCtx.Done():
		}
		signal.Stop(quit)
	}()
}

func (s *Server) healthCheck(c *gin.Context) {
	stats := s.metricsService.GetRequestStats()
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"requests": stats,
	})
}

// Close closes the server
func (s *Server) Close() error {
	if s.shutdownCancel != nil {
		s.shutdownCancel()
	}

	var closeErr error

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.keyCache != nil {
		if err := s.keyCache.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close key cache: %w", err))
		}
	}

	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}

	return closeErr
}
