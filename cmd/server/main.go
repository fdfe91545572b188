package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"goldsure-backend/internal/config"
	"goldsure-backend/internal/database"
	"goldsure-backend/internal/ledger"
	"goldsure-backend/internal/logger"
	"goldsure-backend/internal/metrics"
	"goldsure-backend/internal/receipt"
	"goldsure-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		// zap is configured from cfg, so this one goes through a bootstrap logger.
		logger.Must(logger.New("info")).Fatal("config could not be loaded", zap.Error(err))
	}

	log := logger.Must(logger.New(cfg.LogLevel))
	defer log.Sync()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("database could not be opened", zap.Error(err))
	}
	if err := database.SeedAccounts(db, cfg, log); err != nil {
		log.Fatal("seed accounts failed", zap.Error(err))
	}

	app := server.NewApp(server.Deps{
		Config:   cfg,
		DB:       db,
		Ledger:   ledger.New(db, ledger.WithLogger(log)),
		Receipts: receipt.NewStore(cfg.BillDir, cfg.ShopName, log),
		Metrics:  metrics.New(),
		Log:      log,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.Info("server listening", zap.String("port", cfg.HTTPPort), zap.Bool("restrict_stock_writes", cfg.RestrictStockWrites))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
