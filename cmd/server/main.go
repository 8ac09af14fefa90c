package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbanking "github.com/finbooks/backend/internal/application/banking"
	appbilling "github.com/finbooks/backend/internal/application/billing"
	"github.com/finbooks/backend/internal/domain/banking"
	"github.com/finbooks/backend/internal/infrastructure/cache"
	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/infrastructure/persistence"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/finbooks/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	importGuard, guardCleanup := buildImportGuard(cfg, log)
	defer guardCleanup()

	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	txRepo := persistence.NewGormBankTransactionRepository(db.DB)
	auditRepo := persistence.NewGormMatchAuditRepository(db.DB)
	journalRepo := persistence.NewGormJournalEntryRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	allocRepo := persistence.NewGormPaymentAllocationRepository(db.DB)

	detector := banking.NewReversalDetector(cfg.Reconciliation.DetectorConfig())

	accountSvc := appbanking.NewAccountService(accountRepo, log)
	txSvc := appbanking.NewTransactionService(accountRepo, txRepo, importGuard, log)
	reconSvc := appbanking.NewReconciliationService(txRepo, auditRepo, log)
	reversalSvc := appbanking.NewReversalService(txRepo, auditRepo, detector, log)
	linkSvc := appbanking.NewJournalLinkService(accountRepo, txRepo, journalRepo, auditRepo, log)
	statementSvc := appbanking.NewStatementService(accountRepo, txRepo)
	allocSvc := appbilling.NewAllocationService(paymentRepo, invoiceRepo, allocRepo, log)

	engine := router.New(router.Config{
		Mode:           ginMode(cfg.App.Env),
		AllowedOrigins: cfg.HTTP.CORSAllowOrigins,
	}, router.Handlers{
		BankAccount:     handler.NewBankAccountHandler(accountSvc),
		BankTransaction: handler.NewBankTransactionHandler(txSvc),
		Reconciliation:  handler.NewReconciliationHandler(reconSvc),
		Reversal:        handler.NewReversalHandler(reversalSvc),
		Statement:       handler.NewStatementHandler(statementSvc),
		JournalLink:     handler.NewJournalLinkHandler(linkSvc),
		Allocation:      handler.NewAllocationHandler(allocSvc),
	}, log)

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// buildImportGuard prefers Redis so duplicate suppression works across
// instances; a single-node deployment without Redis falls back to memory.
func buildImportGuard(cfg *config.Config, log *zap.Logger) (appbanking.ImportGuard, func()) {
	ttl := cfg.Reconciliation.ImportGuardTTL
	if cfg.Redis.Host != "" {
		guard, err := cache.NewRedisImportGuard(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, ttl)
		if err == nil {
			return guard, func() { _ = guard.Close() }
		}
		log.Warn("redis unavailable, using in-memory import guard", zap.Error(err))
	}
	guard := cache.NewInMemoryImportGuard(ttl)
	return guard, func() { _ = guard.Close() }
}

func ginMode(env string) string {
	if env == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
