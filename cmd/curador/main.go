// File path: cmd/curador/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/api"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/catalog"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/config"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/subclass"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/trainer"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Debug("curador: .env file not loaded", "error", err)
	} else {
		logger.Info("curador: environment loaded from .env")
	}

	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	baseDir := flag.String("base", "", "dataset base directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("curador: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*addr); trimmed != "" {
		cfg.Addr = trimmed
	}
	if trimmed := strings.TrimSpace(*baseDir); trimmed != "" {
		cfg.BaseDir = trimmed
	}

	logger.Info("curador: startup initiated", "addr", cfg.Addr, "base", cfg.BaseDir)

	layout, err := dataset.NewLayout(cfg.BaseDir)
	if err != nil {
		logger.Error("curador: layout initialization failed", "error", err)
		fmt.Println("layout error:", err)
		os.Exit(1)
	}
	index, err := dataset.NewIndex(layout.IndexFile)
	if err != nil {
		logger.Error("curador: index initialization failed", "error", err)
		os.Exit(1)
	}
	audit, err := dataset.NewAuditLog(layout.AuditFile)
	if err != nil {
		logger.Error("curador: audit log initialization failed", "error", err)
		os.Exit(1)
	}
	curator, err := dataset.NewCurator(layout, index, audit)
	if err != nil {
		logger.Error("curador: curator initialization failed", "error", err)
		os.Exit(1)
	}
	sub, err := subclass.NewManager(layout)
	if err != nil {
		logger.Error("curador: subclass manager initialization failed", "error", err)
		os.Exit(1)
	}

	provider := classifier.NewProvider(cfg.Classifier)

	var cat *catalog.Store
	if !cfg.Catalog.Disabled {
		catalogPath := strings.TrimSpace(cfg.Catalog.Path)
		if catalogPath == "" {
			catalogPath = layout.CatalogFile
		}
		cat, err = catalog.Open(catalogPath)
		if err != nil {
			// The JSON index and audit log remain authoritative; the
			// engine runs without the queryable mirror.
			logger.Warn("curador: catalog unavailable, continuing without it", "error", err)
			cat = nil
		} else {
			defer cat.Close()
			reconcileCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := cat.Reconcile(reconcileCtx, index, layout); err != nil {
				logger.Warn("curador: catalog reconciliation failed", "error", err)
			}
			cancel()
		}
	}

	var recorder trainer.RunRecorder
	if cat != nil {
		recorder = cat
	}
	coordinator, err := trainer.NewCoordinator(provider, layout, trainer.Policy{
		Epochs:      cfg.Training.Epochs,
		MinInterval: cfg.Training.MinInterval,
	}, recorder, cfg.Training.Timeout)
	if err != nil {
		logger.Error("curador: trainer initialization failed", "error", err)
		os.Exit(1)
	}

	server, err := api.NewServer(layout, index, audit, curator, sub, provider, coordinator, cat)
	if err != nil {
		logger.Error("curador: server initialization failed", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("curador: listening", "addr", cfg.Addr, "classifier", provider.Name())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("curador: shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("curador: shutdown failed", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("curador: server failed", "error", err)
			fmt.Println("server error:", err)
			os.Exit(1)
		}
	}
	logger.Info("curador: stopped")
}
