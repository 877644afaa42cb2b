package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	knowledgefile "coinassist/internal/adapters/knowledge/file"
	knowledgeredis "coinassist/internal/adapters/knowledge/redis"
	"coinassist/internal/adapters/pricesource"
	"coinassist/internal/adapters/pricesource/coingecko"
	"coinassist/internal/adapters/pricesource/freecrypto"
	"coinassist/internal/adapters/pricesource/sim"
	"coinassist/internal/adapters/storage/postgresql"
	"coinassist/internal/adapters/web"
	"coinassist/internal/application/ports"
	"coinassist/internal/application/usecases"
	"coinassist/internal/config"
	"coinassist/internal/detector"
	"coinassist/internal/domain/models"
	"coinassist/internal/formatter"
	"coinassist/internal/logger"
	"coinassist/internal/memory"
)

func main() {
	var (
		port = flag.Int("port", 0, "Port number (overrides config)")
		help = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}

	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize knowledge store
	var kb ports.KnowledgePort
	switch cfg.Knowledge.Backend {
	case "redis":
		kb, err = knowledgeredis.New(cfg.Knowledge.Redis, cfg.Knowledge.File)
	default:
		kb, err = knowledgefile.New(cfg.Knowledge.File)
	}
	if err != nil {
		log.Error("Failed to initialize knowledge store", "error", err, "backend", cfg.Knowledge.Backend)
		os.Exit(1)
	}
	defer kb.Close()

	// Initialize price sources: the live chain falls back from FreeCryptoAPI
	// to CoinGecko; sim serves generated quotes for offline use.
	liveSource := pricesource.NewChain(log,
		freecrypto.New(cfg.Sources.FreeCrypto, log),
		coingecko.New(cfg.Sources.CoinGecko, log),
	)
	simSource := sim.New()

	// Initialize query-history storage
	var history ports.HistoryPort
	if cfg.Database.Enabled {
		history, err = postgresql.New(cfg.Database)
		if err != nil {
			log.Error("Failed to initialize history storage", "error", err)
			os.Exit(1)
		}
		defer history.Close()
	}

	// Initialize core components
	sessions := memory.NewSessionStore(cfg.Memory.MaxTurns)
	det := detector.New(cfg.KnownCoins)
	fmtr := formatter.New()

	ttl := time.Duration(cfg.Knowledge.FreshnessTTLMinutes) * time.Minute
	pipeline := usecases.NewPipeline(kb, sessions, det, fmtr, liveSource, simSource,
		history, ttl, models.SourceMode(cfg.Sources.Mode), log)

	// Initialize web server
	webServer := web.NewServer(cfg.Server.Port, pipeline, kb, fmtr, history, log)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("Failed to start web server", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	// Graceful shutdown
	log.Info("Shutting down gracefully...")
	webServer.Shutdown(ctx)
	log.Info("Shutdown complete")
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  coinassist [--port <N>]")
	fmt.Println("  coinassist --help")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --port N     Port number (overrides config)")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CONFIG_FILE         Path to config file (default configs/config.json)")
	fmt.Println("  FREECRYPTO_API_KEY  FreeCryptoAPI key for the live price source")
	fmt.Println("  LOG_LEVEL           Log level: debug, info, warn, error")
}
