// Package main is the DocSense CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/config"
	"github.com/docsense/docsense/internal/embedding"
	"github.com/docsense/docsense/internal/ingest"
	"github.com/docsense/docsense/internal/llm"
	"github.com/docsense/docsense/internal/loader"
	"github.com/docsense/docsense/internal/pipeline"
	"github.com/docsense/docsense/internal/server"
	"github.com/docsense/docsense/internal/session"
	"github.com/docsense/docsense/internal/splitter"
	"github.com/docsense/docsense/internal/vector"
	"github.com/docsense/docsense/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docsense/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("docsense version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	// API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := chatstore.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open chat store", zap.Error(err))
	}
	defer store.Close()

	var embedder embedding.Embedder
	openaiEmbedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		logger.Warn("embedding service unavailable, using deterministic local embedder",
			zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = openaiEmbedder
	}

	model, err := llm.NewOpenAIChat(cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to create chat model", zap.Error(err))
	}

	sp, err := splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	if err != nil {
		logger.Fatal("Invalid splitter configuration", zap.Error(err))
	}

	vectors := vector.NewStore(cfg.Storage.IndexDir, cfg.Embedding.Dimensions)
	sessions := session.NewManager(store, vectors, logger)
	ingester := ingest.NewIngester(loader.NewLoader(), sp, embedder, vectors, logger)
	pl := pipeline.New(model, embedder, vectors, store, cfg.Retrieval.TopK, logger)

	srv := server.NewServer(sessions, ingester, pl, store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`docsense - Document question answering over your own PDFs

Usage:
  docsense server [flags]   Start the HTTP server
  docsense version          Show version
  docsense help             Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/docsense/config.yaml)
  --debug            Enable debug logging`)
}
