package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/furiview/furiview/internal/analyze"
	"github.com/furiview/furiview/internal/api"
	"github.com/furiview/furiview/internal/config"
	"github.com/furiview/furiview/internal/dictionary"
	"github.com/furiview/furiview/internal/extract"
	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/pipeline"
	"github.com/furiview/furiview/internal/reconcile"
	"github.com/furiview/furiview/internal/render"
	"github.com/furiview/furiview/internal/tokenize"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger("Server")
	logger.Info("Starting furiview",
		"listen", cfg.ListenAddr,
		"ocr_language", cfg.OCRLanguage,
		"output_dir", cfg.OutputDir)

	dict := dictionary.Load(cfg.DictionaryPath, logging.NewLogger("Dictionary"))
	logger.Info("Gloss dictionary ready", "entries", dict.Size())

	tokenizer, err := tokenize.NewTokenizer(dict, logging.NewLogger("Tokenizer"))
	if err != nil {
		log.Fatalf("Failed to initialize tokenizer: %v", err)
	}

	extractor := extract.NewExtractor(&extract.ExtractorConfig{
		Language:      cfg.OCRLanguage,
		MinConfidence: cfg.MinConfidence,
		SameLineBand:  cfg.SameLineBand,
		Timeout:       cfg.OCRTimeout,
	}, logging.NewLogger("Extractor"))

	analyzer := analyze.NewAnalyzer(&analyze.AnalyzerConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
		Timeout: cfg.AnalysisTimeout,
	}, logging.NewLogger("Analyzer"))

	reconciler := reconcile.NewReconciler(tokenizer, logging.NewLogger("Reconciler"))

	renderLogger := logging.NewLogger("Renderer")
	faces := render.LoadFaces(cfg.FontPaths, renderLogger)
	renderer := render.NewEngine(faces, renderLogger)

	controller, err := pipeline.NewController(&pipeline.ControllerConfig{
		Extractor:    extractor,
		Tokenizer:    tokenizer,
		Analyzer:     analyzer,
		Reconciler:   reconciler,
		Renderer:     renderer,
		OutputDir:    cfg.OutputDir,
		OutputPrefix: cfg.OutputPrefix,
	}, logging.NewLogger("Pipeline"))
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := pipeline.NewSweeper(cfg.OutputDir, cfg.OutputPrefix,
		cfg.OutputRetention, cfg.SweepInterval, logging.NewLogger("Sweeper"))
	go sweeper.Run(sweepCtx)

	handler := api.NewHandler(controller, cfg.MaxUploadBytes, cfg.OutputDir, logging.NewLogger("API"))
	mux := http.NewServeMux()
	handler.Register(mux)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", "signal", sig)

	stopSweeper()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}
