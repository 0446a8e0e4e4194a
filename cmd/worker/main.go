package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/app"
	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
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

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.Invoker.AMQPURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := queue.DeclareQueue(ch, cfg.Invoker.AMQPQueue)
	if err != nil {
		logger.Fatal("Failed to declare queue", zap.Error(err))
	}

	// One campaign at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Fatal("Failed to register consumer", zap.Error(err))
	}

	worker := service.NewWorker(a.Processor, logger)

	logger.Info("Worker running, waiting for messages...", zap.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker shutting down")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Warn("Delivery channel closed")
				return
			}
			handleDelivery(ctx, worker, d, logger)
		}
	}
}

// handleDelivery runs one job. A failed job is requeued once; a job that
// fails again on redelivery, or cannot be decoded, is dropped.
func handleDelivery(ctx context.Context, w *service.Worker, d amqp.Delivery, logger *zap.Logger) {
	job, err := queue.DecodeJob(d.Body)
	if err != nil {
		logger.Warn("Invalid job", zap.ByteString("body", d.Body), zap.Error(err))
		d.Ack(false)
		return
	}

	if err := w.Handle(ctx, job); err != nil {
		logger.Error("Failed to process job",
			zap.String("campaign_id", job.CampaignID), zap.Bool("redelivered", d.Redelivered), zap.Error(err))
		if !d.Redelivered {
			d.Nack(false, true) // requeue
			return
		}
	}

	d.Ack(false)
}
