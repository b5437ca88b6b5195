package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dailyforge/dailies-api/internal/chat"
	"github.com/dailyforge/dailies-api/internal/config"
	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/dailies/builtin"
	"github.com/dailyforge/dailies-api/internal/handlers/api"
	"github.com/dailyforge/dailies-api/internal/orchestrators/prep"
	"github.com/dailyforge/dailies-api/internal/pkg/idgen"
	"github.com/dailyforge/dailies-api/internal/redis"
	"github.com/dailyforge/dailies-api/internal/repositories/character"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Start the dailies-api HTTP server with all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "HTTP port (overrides DAILIES_PORT)")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serverPort != 0 {
		cfg.Port = serverPort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	repo, err := buildRepository(cfg)
	if err != nil {
		return err
	}

	resolver := prep.StaticResolver{}
	registry := dailies.NewRegistry()
	if err := builtin.Register(registry, resolver.ResolveUUID); err != nil {
		return fmt.Errorf("failed to register builtin dailies: %w", err)
	}

	orchestrator, err := prep.New(&prep.Config{
		Repository: repo,
		Registry:   registry,
		Sink:       chat.NewSlogSink(),
		Resolver:   resolver,
	})
	if err != nil {
		return fmt.Errorf("failed to create prep orchestrator: %w", err)
	}

	handler, err := api.New(&api.Config{Service: orchestrator})
	if err != nil {
		return fmt.Errorf("failed to create API handler: %w", err)
	}

	engine := buildEngine(cfg)
	handler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func buildRepository(cfg *config.Config) (character.Repository, error) {
	gen := idgen.NewUUID("item")
	switch cfg.Storage {
	case config.StorageMemory:
		return character.NewInMemory(gen), nil
	default:
		client, err := redis.NewClient(cfg.RedisAddress, &redis.Options{UseTLS: cfg.RedisTLS})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return character.NewRedis(&character.RedisConfig{Client: client, IDGen: gen})
	}
}

func buildEngine(cfg *config.Config) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	engine.Use(cors.New(corsCfg))

	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
