package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/logiscontrol/logiscontrol/internal/app"
	jobmetrics "github.com/logiscontrol/logiscontrol/internal/jobs"
	"github.com/logiscontrol/logiscontrol/internal/maintenance"
	"github.com/logiscontrol/logiscontrol/internal/notify"
	"github.com/logiscontrol/logiscontrol/internal/platform/db"
	"github.com/logiscontrol/logiscontrol/internal/platform/mail"
	"github.com/logiscontrol/logiscontrol/internal/platform/telegram"
	"github.com/logiscontrol/logiscontrol/internal/stock"
	"github.com/logiscontrol/logiscontrol/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	maintenanceRepo := maintenance.NewRepository(pool)
	maintenanceService := maintenance.NewService(maintenanceRepo, telegramClient, logger)

	notifier := notify.NewService(mailer, logger, nil)
	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, notifier, logger, stock.ServiceConfig{
		AlertRecipient: cfg.StockAlertRecipient,
	})

	handlers := jobs.NewHandlers(
		mailer,
		maintenanceService,
		stockService,
		telegramClient,
		logger,
		jobmetrics.NewMetrics(nil),
		jobs.HandlersConfig{StockAlertRecipient: cfg.StockAlertRecipient},
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  handlers,
		Cron: []jobs.CronRegistration{
			{Spec: "0 7 * * *", Task: jobs.NewOverdueScanTask()},
			{Spec: "0 6 * * *", Task: jobs.NewStockScanTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
