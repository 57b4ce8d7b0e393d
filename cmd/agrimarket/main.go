package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"agrimarket-api-io/api/config"
	"agrimarket-api-io/api/internal/container"
	"agrimarket-api-io/api/internal/routers"
	"agrimarket-api-io/api/pkg/util"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	util.InitLogger(util.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		util.Log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			util.LogError("failed to disconnect from MongoDB", err)
		}
	}()

	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		util.Log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rdb.Close()

	sc := container.NewServiceContainer(cfg, cfg.Database(client), rdb)
	router := routers.InitRoute(cfg, sc, client, rdb)

	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	go func() {
		util.Log.WithField("address", cfg.Address).Info("agrimarket api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	util.LogInfo("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.LogError("graceful shutdown failed", err)
	}
}
