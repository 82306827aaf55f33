// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/audio"
	"github.com/voicebankai/internal/collect"
	"github.com/voicebankai/internal/storage"
	"github.com/voicebankai/pkg/commons"
	voice_routers "github.com/voicebankai/router"
)

func main() {
	vConfig, err := config.InitConfig()
	if err != nil {
		log.Fatalf("unable to initialize configuration: %v", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
	)
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}
	defer logger.Sync()

	archive, err := storage.NewArchive(cfg, logger)
	if err != nil {
		logger.Fatalf("unable to initialize recording archive: %v", err)
	}

	transcoder := audio.NewFFmpegTranscoder(cfg, logger)
	forwarder := collect.NewForwarder(cfg, logger)
	service := collect.NewService(cfg, logger, transcoder, forwarder, archive)
	collectApi := collect.NewCollectApi(cfg, logger, service, archive)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	voice_routers.CollectApiRoutes(cfg, engine, logger, collectApi)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("%s %s listening on %s", cfg.Name, cfg.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
