// Command server runs the FraudSight API: transaction scoring,
// history, stats, and the live prediction feed.
package main

import (
	"context"
	"os"

	"github.com/aberkane/fraudsight/internal/config"
	"github.com/aberkane/fraudsight/internal/logging"
	"github.com/aberkane/fraudsight/internal/server"
)

// Set by ldflags at release build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")
	logger.Info("starting fraudsight", "version", Version, "commit", Commit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		"env", cfg.Env,
		"model_path", cfg.ModelPath,
		"scaler_path", cfg.ScalerPath,
	)

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
