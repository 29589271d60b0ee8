package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jdbridge/jdbridge/internal/api"
	"github.com/jdbridge/jdbridge/internal/category"
	"github.com/jdbridge/jdbridge/internal/config"
	"github.com/jdbridge/jdbridge/internal/downloads"
	"github.com/jdbridge/jdbridge/internal/logger"
	"github.com/jdbridge/jdbridge/internal/remote"
	"github.com/jdbridge/jdbridge/internal/remote/deviceapi"
	"github.com/jdbridge/jdbridge/internal/remote/mock"
	"github.com/jdbridge/jdbridge/internal/session"
)

func main() {
	// .env is optional; real deployments configure via file or environment.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Bool("developerMode", cfg.DeveloperMode).
		Msg("starting jdbridge")

	var device remote.Device
	if cfg.DeveloperMode {
		log.Warn().Msg("developer mode: using in-memory mock device")
		device = mock.NewDevice()
	} else {
		device = deviceapi.New(deviceapi.Config{Endpoint: cfg.MyJD.Endpoint})
	}

	sessions := session.NewManager(device, remote.Credentials{
		Username: cfg.MyJD.Username,
		Password: cfg.MyJD.Password,
		AppKey:   cfg.MyJD.AppKey,
		DeviceID: cfg.MyJD.DeviceID,
	}, log.Logger)

	resolver := category.NewResolver(cfg.Downloads, log.Logger)
	translator := downloads.NewTranslator(cfg.Downloads.BasePath, log.Logger)
	service := downloads.NewService(sessions, resolver, translator, log.Logger)

	// Best effort: a bridge that starts disconnected is still useful, the
	// client can POST /api/v1/connect later.
	if err := sessions.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("initial connect failed, starting disconnected")
	}

	server := api.NewServer(cfg, sessions, service, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil {
			log.Info().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	sessions.Disconnect(ctx)
}
