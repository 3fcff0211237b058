package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acsWorker/internal/automation"
	"acsWorker/internal/browser"
	"acsWorker/internal/callback"
	"acsWorker/internal/catalog"
	"acsWorker/internal/config"
	"acsWorker/internal/database"
	"acsWorker/internal/logger"
	"acsWorker/internal/migrations"
	"acsWorker/internal/sanitizer"
	"acsWorker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level, logger.FileSink{
		Path:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gin.SetMode(gin.ReleaseMode)
	if cfg.Logger.Env == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal("Ошибка загрузки каталога банков", zap.Error(err))
	}

	var recorder automation.Recorder
	if cfg.Database.Enabled() {
		if err := migrations.Run(cfg, log); err != nil {
			log.Fatal("Ошибка миграций", zap.Error(err))
		}

		db, err := database.New(cfg, log)
		if err != nil {
			log.Fatal("Ошибка подключения к БД", zap.Error(err))
		}
		defer db.Close(log)

		recorder = database.NewJournal(database.NewRunRepository(db.DB))
	}

	launcher, err := browser.Start(browser.Config{
		Headless:     cfg.Browser.Headless,
		Install:      cfg.Browser.Install,
		BrowsersPath: cfg.Browser.BrowsersPath,
		Locale:       cfg.Browser.Locale,
	}, log.Logger)
	if err != nil {
		log.Fatal("Ошибка запуска playwright", zap.Error(err))
	}
	defer func() {
		if err := launcher.Stop(); err != nil {
			log.Warn("Ошибка остановки playwright", zap.Error(err))
		}
	}()

	runner := automation.NewRunner(automation.Deps{
		Launcher:  launcher,
		Catalog:   cat,
		Notifier:  callback.New(cfg.Callback.Timeout, log.Logger),
		Recorder:  recorder,
		Sanitizer: sanitizer.New(),
		Log:       log.Logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, log, runner).Run(ctx); err != nil {
		log.Error("Сервер остановлен с ошибкой", zap.Error(err))
	}
}
