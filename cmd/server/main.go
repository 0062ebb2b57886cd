package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jwaldner/optionroi/internal/audit"
	"github.com/jwaldner/optionroi/internal/cache"
	"github.com/jwaldner/optionroi/internal/config"
	"github.com/jwaldner/optionroi/internal/handlers"
	"github.com/jwaldner/optionroi/internal/logger"
	"github.com/jwaldner/optionroi/internal/optimizer"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	logger.Always.Printf("🚀 Option ROI optimizer starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" || cfg.Logging.LogLevel == "debug" {
		fmt.Printf("⚠️  %s LOGGING ENABLED - search traces will be logged to %s\n", cfg.Logging.LogLevel, cfg.Logging.LogFile)
	}

	opt, err := optimizer.New(cfg.Optimizer)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logger.Info.Printf("🔧 Optimizer: max_iterations=%d tolerance=%g step=%g min_entry=%g",
		cfg.Optimizer.MaxIterations, cfg.Optimizer.ConvergenceTolerance, cfg.Optimizer.InitialStepSize, cfg.Optimizer.MinEntryPrice)

	// Redis is optional: without it every request runs a fresh search
	var store cache.ResultStore
	if cfg.Cache.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.New(ctx, cache.ClientConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		cancel()
		if err != nil {
			logger.Warn.Printf("⚠️ Result cache disabled: %v", err)
		} else {
			defer client.Close()
			store = cache.NewResultCache(client, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
			logger.Always.Printf("📦 Result cache: redis %s (ttl %ds)", cfg.Cache.RedisAddr, cfg.Cache.TTLSeconds)
		}
	}

	var auditor audit.Auditor
	if cfg.Audit.Enabled {
		fa, err := audit.NewFileAuditor(cfg.Audit.Dir)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		auditor = fa
		logger.Always.Printf("🔍 Audit files: %s", cfg.Audit.Dir)
	}

	optimizerHandler := handlers.NewOptimizerHandler(opt, store, auditor)

	// Setup router
	r := mux.NewRouter()
	optimizerHandler.Register(r)

	// Start server
	fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
	logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
