package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/logiscontrol/logiscontrol/internal/app"
	"github.com/logiscontrol/logiscontrol/internal/auth"
	"github.com/logiscontrol/logiscontrol/internal/maintenance"
	"github.com/logiscontrol/logiscontrol/internal/masterdata/clients"
	"github.com/logiscontrol/logiscontrol/internal/masterdata/suppliers"
	"github.com/logiscontrol/logiscontrol/internal/notify"
	"github.com/logiscontrol/logiscontrol/internal/observability"
	"github.com/logiscontrol/logiscontrol/internal/orders"
	"github.com/logiscontrol/logiscontrol/internal/platform/cache"
	"github.com/logiscontrol/logiscontrol/internal/platform/db"
	"github.com/logiscontrol/logiscontrol/internal/platform/mail"
	"github.com/logiscontrol/logiscontrol/internal/platform/telegram"
	"github.com/logiscontrol/logiscontrol/internal/production"
	"github.com/logiscontrol/logiscontrol/internal/purchasing"
	"github.com/logiscontrol/logiscontrol/internal/shared"
	"github.com/logiscontrol/logiscontrol/internal/stock"
	"github.com/logiscontrol/logiscontrol/internal/users"
	"github.com/logiscontrol/logiscontrol/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	telegramClient := telegram.NewClient(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		ChatIDs:  cfg.TelegramChats(),
	})

	metrics := observability.NewMetrics()
	notifier := notify.NewService(mailer, logger, metrics)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	limiter := auth.NewLoginLimiter(redisClient, 0, 0)
	authService := auth.NewService(usersService, issuer, limiter)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.NewMiddleware(authService)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, notifier, logger, stock.ServiceConfig{
		AlertRecipient: cfg.StockAlertRecipient,
	})
	stockHandler := stock.NewHandler(logger, stockService)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(
		ordersRepo,
		clients.NewDirectory(clientsService),
		stockService,
		notifier,
		logger,
		orders.ServiceConfig{StockAlertRecipient: cfg.StockAlertRecipient},
	)
	ordersHandler := orders.NewHandler(logger, ordersService)

	purchasingRepo := purchasing.NewRepository(pool)
	purchasingService := purchasing.NewService(
		purchasingRepo,
		suppliers.NewDirectory(suppliersService),
		usersService,
		stockService,
		notifier,
		shared.NewAuditLogger(pool),
		logger,
		purchasing.ServiceConfig{PortalBaseURL: cfg.SupplierPortalURL},
	)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService)

	maintenanceRepo := maintenance.NewRepository(pool)
	maintenanceService := maintenance.NewService(maintenanceRepo, telegramClient, logger)
	maintenanceHandler := maintenance.NewHandler(logger, maintenanceService)

	productionRepo := production.NewRepository(pool)
	productionService := production.NewService(productionRepo, stockService, notifier, logger, production.ServiceConfig{
		AlertRecipient: cfg.StockAlertRecipient,
	})
	productionHandler := production.NewHandler(logger, productionService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UsersHandler:       usersHandler,
		PurchasingHandler:  purchasingHandler,
		StockHandler:       stockHandler,
		MaintenanceHandler: maintenanceHandler,
		ProductionHandler:  productionHandler,
		SuppliersHandler:   suppliersHandler,
		ClientsHandler:     clientsHandler,
		OrdersHandler:      ordersHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
