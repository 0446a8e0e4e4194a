package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CampaignRunsTopic carries Job payloads.
const CampaignRunsTopic = "campaign_runs"

// Job asks the processor to run. An empty CampaignID means every
// unprocessed campaign.
type Job struct {
	CampaignID string `json:"campaign_id,omitempty"`
	Source     string `json:"source,omitempty"`
}

// DecodeJob parses a job from a message body.
func DecodeJob(body []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

// Invoker submits a job for asynchronous processing and returns without
// waiting for it to run.
type Invoker interface {
	Invoke(ctx context.Context, job Job) error
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish hands the payload to every subscriber in its own goroutine and
// returns immediately.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: q.MaxRetries,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			q.Logger.Debug("Job processed successfully", zap.Any("payload", job.Payload))
			return
		}

		job.RetryCount++
		q.Logger.Warn("Job failed",
			zap.Int("attempt", job.RetryCount), zap.Int("max_retries", job.MaxRetries),
			zap.Any("payload", job.Payload), zap.Error(err))

		if job.RetryCount > job.MaxRetries {
			q.Logger.Error("Job permanently failed", zap.Int("attempts", job.RetryCount), zap.Any("payload", job.Payload))
			return
		}

		// Linear backoff before retry
		time.Sleep(time.Duration(job.RetryCount) * q.RetryDelay)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// QueueInvoker submits jobs to an in-process Queue.
type QueueInvoker struct {
	Queue Queue
	Topic string
}

func (i *QueueInvoker) Invoke(_ context.Context, job Job) error {
	topic := i.Topic
	if topic == "" {
		topic = CampaignRunsTopic
	}
	return i.Queue.Publish(topic, job)
}

// StartCampaignRunSubscriber runs every Job published on CampaignRunsTopic
// through run. Jobs run detached from any request context.
func StartCampaignRunSubscriber(q Queue, run func(ctx context.Context, job Job) error, logger *zap.Logger) error {
	return q.Subscribe(CampaignRunsTopic, func(payload any) error {
		job, ok := payload.(Job)
		if !ok {
			logger.Warn("⚠️ Invalid payload type, expected queue.Job", zap.Any("payload", payload))
			return nil // no retry
		}

		logger.Info("📩 Processing queued campaign job", zap.String("campaign_id", job.CampaignID), zap.String("source", job.Source))
		return run(context.Background(), job)
	})
}
