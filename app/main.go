package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/aggregate"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/api"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/cfg"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/classify"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/database"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/emit"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/ingest"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/normalize"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/tasks"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/walker"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting OmegaParse", "version", appCfg.Version, "input", appCfg.InputPath)

	if err := run(appCfg); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	ingester := ingest.NewIngester()
	defer ingester.Cleanup()

	workspace, err := ingester.Run(appCfg.InputPath)
	if err != nil {
		return err
	}

	// Optional catalog
	var db *database.DB
	var runRepo database.RunRepository
	var recordRepo database.RecordRepository
	if appCfg.DBPath != "" {
		db, err = database.NewConnection(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to migrate catalog: %w", err)
		}
		slog.Info("Catalog ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		runRepo = database.NewRunRepository(db)
		recordRepo = database.NewRecordRepository(db)
	}

	aggregator := aggregate.NewAggregator(appCfg.InputPath, appCfg.OutputDir)
	classifier := classify.NewClassifier()
	normalizer := normalize.NewNormalizer()

	slog.Info("Processing files", "workers", appCfg.WorkerCount)
	pool := tasks.NewPool(context.Background(), appCfg.WorkerCount)
	pool.Start()

	fileWalker := walker.NewWalker(workspace)
	walkErr := fileWalker.Run(func(path string) error {
		return pool.Enqueue(tasks.NewProcessFileTask(path, classifier, normalizer, aggregator))
	})
	pool.Drain()
	if walkErr != nil {
		return walkErr
	}

	aggregator.Finalize()
	summary := aggregator.Summary()

	if runRepo != nil && recordRepo != nil {
		runID, err := runRepo.InsertRun(summary)
		if err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
		if err := recordRepo.InsertRecords(runID, aggregator.Records()); err != nil {
			return fmt.Errorf("failed to persist records: %w", err)
		}
		slog.Info("Catalog updated", "run_id", runID, "records", summary.TotalRecords)
	}

	slog.Info("Writing outputs", "dir", appCfg.OutputDir)
	emitter, err := emit.NewEmitter(appCfg.OutputDir)
	if err != nil {
		return err
	}
	if err := emitter.EmitSummary(summary); err != nil {
		return err
	}
	if err := emitter.EmitByContentType(aggregator.RecordsByContentType()); err != nil {
		return err
	}
	if err := emitter.EmitByChannel(aggregator.RecordsByChannel()); err != nil {
		return err
	}
	if err := emitter.EmitUnclassified(aggregator.UnclassifiedRecords()); err != nil {
		return err
	}

	duration := time.Duration(0)
	if summary.StartTime != nil && summary.EndTime != nil {
		duration = summary.EndTime.Sub(*summary.StartTime)
	}
	slog.Info("Processing complete",
		"duration", duration,
		"files", summary.TotalFiles,
		"records", summary.TotalRecords,
		"unclassified_files", len(summary.UnclassifiedFiles),
		"uncertain_records", summary.UncertainRecords)

	if appCfg.Serve {
		return serve(appCfg, summary, runRepo, recordRepo)
	}

	return nil
}

// serve exposes the finished run over HTTP until interrupted.
func serve(appCfg *cfg.Cfg, summary schema.ProcessingSummary,
	runRepo database.RunRepository, recordRepo database.RecordRepository) error {
	handler := api.NewHandler(summary, runRepo, recordRepo)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting report server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down report server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	slog.Info("Report server stopped")
	return nil
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
