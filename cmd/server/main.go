// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/app"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/controller"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/logging"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/queue"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	// In-process queue: webhook jobs run on the server itself when
	// INVOKER_TYPE=memory.
	q := queue.NewInMemoryQueue(logger)
	worker := service.NewWorker(a.Processor, logger)
	if err := queue.StartCampaignRunSubscriber(q, worker.Handle, logger); err != nil {
		logger.Fatal("failed to subscribe", zap.Error(err))
	}

	invoker, err := queue.NewInvoker(cfg.Invoker, q)
	if err != nil {
		logger.Fatal("failed to create invoker", zap.Error(err))
	}
	if c, ok := invoker.(interface{ Close() error }); ok {
		defer c.Close()
	}

	campaignController := &controller.CampaignController{
		Handler: a.Handler(invoker),
		Logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount("/", campaignController.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("🚀 Server running", zap.String("addr", srv.Addr), zap.String("invoker", cfg.Invoker.Type))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
