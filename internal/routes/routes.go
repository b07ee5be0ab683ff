// Package routes defines the API routing configuration.
// It wires the repositories, services and handlers, then groups the HTTP
// routes and applies authentication middleware.
package routes

import (
	"vaultpay/internal/config"
	"vaultpay/internal/handlers"
	"vaultpay/internal/locks"
	"vaultpay/internal/middleware"
	"vaultpay/internal/repositories"
	"vaultpay/internal/repositories/cache"
	"vaultpay/internal/services/currency"
	"vaultpay/internal/services/fee"
	"vaultpay/internal/services/fraud"
	"vaultpay/internal/services/ledger"
	"vaultpay/internal/services/notification"
	"vaultpay/internal/services/settlement"
	"vaultpay/internal/services/transfer"
	"vaultpay/internal/services/wallet"
	"vaultpay/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires the full dependency graph and registers all routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.CacheService) {
	// Repositories
	walletRepo := repositories.NewWalletRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	transferRepo := repositories.NewTransferRepository(db)

	// Observers
	notifier := notification.NewService()
	audit := notification.NewAuditLogger()
	notifier.AddTransferObserver(audit)
	notifier.AddWalletObserver(audit)

	// Core services
	walletService := wallet.NewService(
		walletRepo,
		cacheSvc,
		notifier,
		wallet.Config{},
		&wallet.NoopMetricsCollector{},
	)
	ledgerService := ledger.NewService(transactionRepo, walletService)

	// Transfer collaborators
	lockRegistry := locks.NewRegistry(config.GetDurationEnv("LOCK_TIMEOUT", locks.DefaultTimeout))
	converter := currency.NewService()
	feeCalculator := fee.NewTieredCalculator()
	fraudDetector := fraud.NewDetector(transferRepo, fraud.Config{})
	transferValidator := validation.NewTransferValidator(transferRepo)

	var rail transfer.Rail
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		rail = settlement.NewStripeRail(key)
	} else {
		rail = settlement.NewRecordingRail()
	}

	transferService := transfer.NewService(
		transferRepo,
		walletService,
		ledgerService,
		lockRegistry,
		converter,
		feeCalculator,
		fraudDetector,
		transferValidator,
		rail,
		notifier,
	)

	// Handlers
	walletHandler := handlers.NewWalletHandler(walletService)
	transferHandler := handlers.NewTransferHandler(transferService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	healthHandler := handlers.NewHealthHandler(db, cacheSvc)

	// Public routes
	app.Get("/health", healthHandler.Check)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to VaultPay API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Protected routes
	api := app.Group("/api", middleware.Auth)

	// Wallet routes
	wallets := api.Group("/wallets")
	wallets.Post("/", walletHandler.CreateWallet)
	wallets.Get("/me", walletHandler.GetMyWallet)
	wallets.Get("/:id", walletHandler.GetWallet)
	wallets.Get("/:id/balance", walletHandler.GetBalance)
	wallets.Post("/:id/deposit", transferHandler.Deposit)
	wallets.Get("/:id/transactions", transactionHandler.ListWalletTransactions)
	wallets.Get("/:id/statement", transactionHandler.GetStatement)
	wallets.Get("/:id/transfers", transferHandler.ListWalletTransfers)

	// Admin-only wallet management
	wallets.Put("/:id/limits", middleware.RequireAdmin, walletHandler.SetLimits)
	wallets.Post("/:id/deactivate", middleware.RequireAdmin, walletHandler.Deactivate)
	wallets.Post("/:id/activate", middleware.RequireAdmin, walletHandler.Activate)

	// Transfer routes
	transfers := api.Group("/transfers")
	transfers.Post("/", transferHandler.CreateTransfer)
	transfers.Post("/external", transferHandler.CreateExternalTransfer)
	transfers.Get("/review", middleware.RequireAdmin, transferHandler.ListPendingReview)
	transfers.Get("/:id", transferHandler.GetTransfer)
	transfers.Post("/:id/cancel", transferHandler.CancelTransfer)
	transfers.Post("/:id/resolve", middleware.RequireAdmin, transferHandler.ResolveTransfer)

	// Transaction routes
	api.Get("/transactions/:id", transactionHandler.GetTransaction)
}
