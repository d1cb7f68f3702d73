package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"heartfelt/assessment"
	"heartfelt/config"
	qhttp "heartfelt/http"
	"heartfelt/logger"
	"heartfelt/ml"
	"heartfelt/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2. Load the classifier; a broken artifact is fatal at startup
	model, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath)
	if err != nil {
		log.Fatal("failed to load model",
			zap.String("model_type", cfg.ML.ModelType),
			zap.String("path", cfg.ML.ModelPath),
			zap.Error(err),
		)
	}
	predictor, err := ml.NewPredictor(model, cfg.ML.CacheSize)
	if err != nil {
		log.Fatal("failed to init predictor", zap.Error(err))
	}
	log.Info("model loaded",
		zap.String("model_type", cfg.ML.ModelType),
		zap.String("path", cfg.ML.ModelPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ML.WatchModel {
		go func() {
			if err := ml.WatchModel(ctx, cfg.ML.ModelPath, cfg.ML.ModelType, predictor, log); err != nil {
				log.Error("model watcher stopped", zap.Error(err))
			}
		}()
	}

	// 3. Start HTTP server
	service := assessment.NewService(predictor)
	handlers := qhttp.NewHandlers(service, cfg.ML.ModelType, cfg.Http.AllowedOrigins, monitoring.NewMetrics(), log)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, handlers, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("exiting")
}
