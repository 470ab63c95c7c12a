package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/position"
	"JobPortal-backend/internal/workflow"
)

// MyServer holds every dependency the route handlers share.
type MyServer struct {
	Config    *config.Config
	DB        *database.DBinstanceStruct
	Redis     *redis.Client
	Storage   file.StorageClient
	Blacklist auth.JwtBlacklistStore
	Rule      position.Rule
	Workflow  *workflow.Service
	Logger    zerolog.Logger

	closers []func() error
}

// New wires a server around an already connected database. Redis and cloud
// storage are connected when configured.
func New(ctx context.Context, cfg *config.Config, db *database.DBinstanceStruct, logger zerolog.Logger) (*MyServer, error) {
	auth.Configure(cfg.SecretKey, cfg.TokenTTL)
	if cfg.SecretKey == "" {
		logger.Warn().Msg("SECRET_KEY is not set, tokens will not survive a restart")
	}

	s := &MyServer{
		Config: cfg,
		DB:     db,
		Rule:   position.RuleFromConfig(cfg.RequireStartDate),
		Logger: logger,
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.Redis = client
		s.Blacklist = auth.NewRedisBlacklistStore(client)
		s.closers = append(s.closers, client.Close)
		logger.Info().Str("addr", opts.Addr).Msg("redis connected")
	} else {
		s.Blacklist = auth.NewInMemoryBlacklistStoreWithInterval(cfg.BlacklistInterval)
	}

	if cfg.GCSBucket != "" {
		gcs, err := file.NewCloudStorageClient(ctx, cfg.GCSBucket)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Storage = gcs
		s.closers = append(s.closers, gcs.Close)
		logger.Info().Str("bucket", cfg.GCSBucket).Msg("cloud storage enabled")
	}

	s.Workflow = workflow.NewService(workflow.NewGormStore(db.DB), s.Rule, logger)
	logger.Info().Stringer("rule", s.Rule).Msg("position visibility rule")
	return s, nil
}

// HTTPServer returns the http.Server serving RegisterRoutes on the configured port.
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *MyServer) Run(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.Logger.Info().Msg("server exiting")
	return nil
}

// Close releases redis and storage clients. The database is closed by its owner.
func (s *MyServer) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close client")
		}
	}
	s.closers = nil
}
