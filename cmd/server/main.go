package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wadjakorntonsri/go-linkbio/pkg/app"
	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, !cfg.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer a.Repo.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
