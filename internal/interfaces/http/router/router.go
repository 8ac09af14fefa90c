package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/finbooks/backend/internal/interfaces/http/handler"
	"github.com/finbooks/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	BankAccount     *handler.BankAccountHandler
	BankTransaction *handler.BankTransactionHandler
	Reconciliation  *handler.ReconciliationHandler
	Reversal        *handler.ReversalHandler
	Statement       *handler.StatementHandler
	JournalLink     *handler.JournalLinkHandler
	Allocation      *handler.AllocationHandler
}

// Config holds router settings
type Config struct {
	Mode           string
	AllowedOrigins []string
}

// New builds the gin engine with all routes and middleware mounted
func New(cfg Config, handlers Handlers, log *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	dto.RegisterValidators()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(cfg.AllowedOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.CompanyContext())

	accounts := v1.Group("/bank-accounts")
	{
		accounts.POST("", handlers.BankAccount.Create)
		accounts.GET("", handlers.BankAccount.List)
		accounts.GET("/:id", handlers.BankAccount.Get)
		accounts.PUT("/:id/ledger-account", handlers.BankAccount.LinkLedgerAccount)
		accounts.GET("/:id/summary", handlers.BankTransaction.AccountSummary)
		accounts.GET("/:id/statement", handlers.Statement.Generate)
	}

	transactions := v1.Group("/bank-transactions")
	{
		transactions.POST("", handlers.BankTransaction.Create)
		transactions.POST("/import", handlers.BankTransaction.Import)
		transactions.GET("", handlers.BankTransaction.List)
		transactions.GET("/:id", handlers.BankTransaction.Get)
		transactions.PATCH("/:id", handlers.BankTransaction.Update)
		transactions.DELETE("/:id", handlers.BankTransaction.Delete)
		transactions.GET("/:id/duplicates", handlers.BankTransaction.Duplicates)

		transactions.POST("/:id/reconcile", handlers.Reconciliation.Reconcile)
		transactions.POST("/:id/unreconcile", handlers.Reconciliation.Unreconcile)
		transactions.GET("/:id/audit-trail", handlers.Reconciliation.AuditTrail)

		transactions.POST("/:id/detect-reversal", handlers.Reversal.Detect)
		transactions.GET("/:id/potential-originals", handlers.Reversal.Candidates)

		transactions.POST("/:id/auto-link", handlers.JournalLink.AutoLink)
	}

	reconciliation := v1.Group("/reconciliation")
	{
		reconciliation.GET("/unreconciled", handlers.Reconciliation.ListUnreconciled)
		reconciliation.GET("/by-source/:kind/:source_id", handlers.Reconciliation.FindBySource)
	}

	reversals := v1.Group("/reversals")
	{
		reversals.POST("/pair", handlers.Reversal.Pair)
		reversals.POST("/:id/unpair", handlers.Reversal.Unpair)
		reversals.GET("/unpaired", handlers.Reversal.ListUnpaired)
	}

	journalLinks := v1.Group("/journal-links")
	{
		journalLinks.POST("/backfill", handlers.JournalLink.Backfill)
		journalLinks.GET("/unlinked", handlers.JournalLink.ListUnlinked)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("/:id/allocations", handlers.Allocation.Create)
		payments.POST("/:id/allocations/bulk", handlers.Allocation.BulkAllocate)
		payments.DELETE("/:id/allocations", handlers.Allocation.RemoveAll)
		payments.GET("/:id/unallocated", handlers.Allocation.Unallocated)
		payments.GET("/:id/allocations", handlers.Allocation.Summary)
	}

	allocations := v1.Group("/allocations")
	{
		allocations.PUT("/:id", handlers.Allocation.Update)
	}

	invoices := v1.Group("/invoices")
	{
		invoices.GET("/:id/payment-status", handlers.Allocation.InvoiceStatus)
	}

	return engine
}
