package main

import (
	"os"

	"github.com/yigit/degreetracker/internal/bootstrap"
	"github.com/yigit/degreetracker/internal/config"
	"github.com/yigit/degreetracker/internal/pkg/logger"
	"github.com/yigit/degreetracker/internal/server"
)

// @title Degree Tracker API
// @version 1.0
// @description Student degree progress tracking
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name auth_session

func main() {
	srv, err := server.NewServer(config.GetEnv("CONFIG_PATH", bootstrap.DefaultConfigPath))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
