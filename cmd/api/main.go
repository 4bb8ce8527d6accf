package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "coinlend-backend/internal/adapter/http"
	mw "coinlend-backend/internal/adapter/middleware"
	notifyadp "coinlend-backend/internal/adapter/notify"
	"coinlend-backend/internal/adapter/repository/mysql"
	"coinlend-backend/internal/config"
	domainApp "coinlend-backend/internal/domain/application"
	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainLedger "coinlend-backend/internal/domain/ledger"
	domainLoan "coinlend-backend/internal/domain/loan"
	domainOffer "coinlend-backend/internal/domain/offer"
	domainRates "coinlend-backend/internal/domain/rates"
	"coinlend-backend/internal/infrastructure/cache"
	"coinlend-backend/internal/infrastructure/db"
	"coinlend-backend/internal/scheduler"
	"coinlend-backend/internal/usecase/application"
	"coinlend-backend/internal/usecase/expiry"
	"coinlend-backend/internal/usecase/invoice"
	"coinlend-backend/internal/usecase/ledger"
	"coinlend-backend/internal/usecase/liquidation"
	"coinlend-backend/internal/usecase/loan"
	"coinlend-backend/internal/usecase/matching"
	"coinlend-backend/internal/usecase/offer"
	"coinlend-backend/internal/usecase/origination"
	"coinlend-backend/internal/usecase/repayment"
	"coinlend-backend/internal/usecase/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		logger.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&domainOffer.LoanOffer{},
		&domainApp.LoanApplication{},
		&domainLoan.Loan{},
		&domainInvoice.Invoice{},
		&domainLedger.Account{},
		&domainLedger.AccountMutationEntry{},
		&domainRates.Currency{},
		&domainRates.ExchangeRate{},
	); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}

	// repositories
	offers := mysql.NewOfferRepository(gdb)
	applications := mysql.NewApplicationRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	invoices := mysql.NewInvoiceRepository(gdb)
	ledgers := mysql.NewLedgerRepository(gdb)
	ratesRepo := mysql.NewRatesRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	for _, cur := range domainRates.DefaultCurrencies() {
		cur := cur
		if err := ratesRepo.UpsertCurrency(seedCtx, &cur); err != nil {
			logger.Fatalf("seed currency %s: %v", cur.Code, err)
		}
	}
	cancelSeed()

	queue := notifyadp.NewRedisQueue(rdb, cfg.NotifyQueueKey)
	fees := valuation.FeeSchedule{
		OriginationPct:       cfg.OriginationFeePct,
		LenderIndividualPct:  cfg.LenderFeeIndividualPct,
		LenderInstitutionPct: cfg.LenderFeeInstitutionPct,
		LiquidationPct:       cfg.LiquidationFeePct,
		EarlySettlementPct:   cfg.EarlySettlementFeePct,
	}

	// services
	val := valuation.NewService(ratesRepo, fees)
	offerUC := offer.NewUsecase(offers, invoices, tx, val, logger, cfg.OfferTTLDays)
	appUC := application.NewUsecase(applications, invoices, tx, val, logger, cfg.ApplicationTTLDays)
	invoiceUC := invoice.NewUsecase(invoices, tx, queue, logger)
	ledgerUC := ledger.NewUsecase(ledgers, tx, logger)
	loanUC := loan.NewUsecase(loans)
	orig := origination.NewService(loans, tx, fees, logger, cfg.PlatformAccountID)
	matcher := matching.NewEngine(applications, offers, tx, val, orig, queue, logger, cfg.MatchBatchSize)
	repayments := repayment.NewService(loans, tx, fees, queue, logger, cfg.PlatformAccountID)
	liquidations := liquidation.NewService(loans, tx, val, queue, logger, cfg.PlatformAccountID, cfg.MatchBatchSize)
	expirations := expiry.NewService(offers, applications, logger)

	// handlers
	h := httpadp.NewHandler()
	offerH := httpadp.NewOfferHandler(offerUC)
	appH := httpadp.NewApplicationHandler(appUC)
	invoiceH := httpadp.NewInvoiceHandler(invoiceUC)
	loanH := httpadp.NewLoanHandler(loanUC, repayments, liquidations)
	ledgerH := httpadp.NewLedgerHandler(ledgerUC)
	adminH := httpadp.NewAdminHandler(matcher, liquidations, expirations, val)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)

	api := e.Group("/api", mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger))

	api.POST("/offers", offerH.CreateOffer)
	api.GET("/offers/:offer_id", offerH.GetOffer)
	api.POST("/offers/:offer_id/pause", offerH.PauseOffer)
	api.POST("/offers/:offer_id/resume", offerH.ResumeOffer)
	api.POST("/offers/:offer_id/close", offerH.CloseOffer)

	api.POST("/applications", appH.CreateApplication)
	api.GET("/applications/:application_id", appH.GetApplication)
	api.POST("/applications/:application_id/close", appH.CloseApplication)

	api.POST("/invoices/:invoice_id/pay", invoiceH.PayInvoice)

	api.GET("/loans/:loan_id", loanH.GetLoan)
	api.POST("/loans/:loan_id/repayments", loanH.RepayLoan)
	api.POST("/loans/:loan_id/early-repayment", loanH.EarlyRepayLoan)
	api.POST("/loans/:loan_id/early-liquidation", loanH.EarlyLiquidateLoan)

	api.GET("/users/:user_id/balances", ledgerH.GetBalances)
	api.GET("/users/:user_id/mutations", ledgerH.GetMutations)
	api.POST("/users/:user_id/withdrawals", ledgerH.Withdraw)

	api.POST("/admin/match-batch", adminH.RunMatchBatch)
	api.POST("/admin/liquidation-sweep", adminH.RunLiquidationSweep)
	api.POST("/admin/expiry-sweep", adminH.RunExpirySweep)
	api.POST("/admin/rates", adminH.IngestRate)

	sched := scheduler.New(matcher, liquidations, expirations, cfg.MatchBatchSize, logger)
	if err := sched.Register(scheduler.Specs{
		Match:       cfg.MatchCronSpec,
		Liquidation: cfg.LiquidationCronSpec,
		Expiry:      cfg.ExpiryCronSpec,
	}); err != nil {
		logger.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	go func() {
		addr := ":" + cfg.AppPort
		logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	<-sched.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
