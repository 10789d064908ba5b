package main

import (
	"fmt"
	"os"

	"github.com/gigpay/ledger-service/internal/auth"
	"github.com/gigpay/ledger-service/internal/config"
	"github.com/gigpay/ledger-service/internal/db"
	"github.com/gigpay/ledger-service/internal/excel"
	httphandler "github.com/gigpay/ledger-service/internal/http"
	"github.com/gigpay/ledger-service/internal/http/middleware"
	"github.com/gigpay/ledger-service/internal/logger"
	"github.com/gigpay/ledger-service/internal/pdf"
	"github.com/gigpay/ledger-service/internal/repository"
	"github.com/gigpay/ledger-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	reportRepo := repository.NewReportRepository(database)

	contractService := service.NewContractService(contractRepo, jobRepo)
	paymentService := service.NewPaymentService(jobRepo, profileRepo, cfg, log)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, paymentService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser, profileRepo)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
