package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gexlabs/docverify/internal/audit"
	"github.com/gexlabs/docverify/internal/config"
	"github.com/gexlabs/docverify/internal/export"
	"github.com/gexlabs/docverify/internal/ocr"
	"github.com/gexlabs/docverify/internal/pipeline"
	"github.com/gexlabs/docverify/internal/plausibility"
	"github.com/gexlabs/docverify/internal/refine"
	"github.com/gexlabs/docverify/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := audit.Open(cfg.Audit.DBPath, logger)
	if err != nil {
		logger.Error("open audit store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		logger.Error("init audit store", "error", err)
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		MinTextLen:    cfg.OCR.MinTextLen,
	}, logger)

	layout := ocr.Layout{
		LineTolerance: cfg.Layout.LineTolerance,
		FieldGap:      cfg.Layout.FieldGap,
		ColumnGap:     cfg.Layout.ColumnGap,
	}

	refiner := refine.NewRefiner(refine.Config{
		Enabled:  cfg.Refinement.Enabled,
		Endpoint: cfg.Refinement.Endpoint,
		APIKey:   cfg.Refinement.APIKey,
		Model:    cfg.Refinement.Model,
		Timeout:  cfg.Refinement.Timeout,
	}, logger)

	checker := plausibility.NewChecker(plausibility.Config{
		QuantityTolerancePct: cfg.Plausibility.QuantityTolerancePct,
		PriceEpsilon:         cfg.Plausibility.PriceEpsilon,
		ValidityDaysPerYear:  cfg.Plausibility.ValidityDaysPerYear,
	}, logger)

	processor := pipeline.New(extractor, layout, refiner, checker, logger)
	exporter := export.NewService(store, logger)
	api := server.New(processor, checker, store, exporter, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "refinement", refiner.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
