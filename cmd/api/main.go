// Command api runs the JobPortal REST server.
//
// @title JobPortal API
// @version 1.0
// @description Job portal backend: positions, applications and their review workflow.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/logging"
	"JobPortal-backend/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, os.Stderr)
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBInstance(database.ConfigFromSettings(cfg.DB, cfg.AdminEmail, cfg.AdminPassword))
	if err != nil {
		logger.Fatal().Err(err).Msg("database failed to initialize")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()

	srv, err := server.New(ctx, cfg, db, logger)
	if err != nil {
		logger.Error().Err(err).Msg("server failed to initialize")
		return
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}
