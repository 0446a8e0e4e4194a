package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/service"
)

// recordingAcker records what the worker did with each delivery.
type recordingAcker struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (r *recordingAcker) Ack(tag uint64, multiple bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks++
	return nil
}

func (r *recordingAcker) Nack(tag uint64, multiple, requeue bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nacks++
	r.requeue = requeue
	return nil
}

func (r *recordingAcker) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

// stubRunner fails every campaign listed in failing.
type stubRunner struct {
	mu      sync.Mutex
	failing map[string]bool
	runs    []string
}

func (s *stubRunner) ProcessAll(ctx context.Context) (*service.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, "*")
	return &service.RunReport{}, nil
}

func (s *stubRunner) ProcessCampaign(ctx context.Context, id string) (*service.CampaignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, id)
	if s.failing[id] {
		return nil, errors.New("notion unavailable")
	}
	return &service.CampaignResult{CampaignID: id, Processed: true}, nil
}

func delivery(body string, redelivered bool) (amqp.Delivery, *recordingAcker) {
	acker := &recordingAcker{}
	return amqp.Delivery{Acknowledger: acker, Body: []byte(body), Redelivered: redelivered}, acker
}

func TestWorker(t *testing.T) {
	runner := &stubRunner{failing: map[string]bool{"bad": true}}
	w := service.NewWorker(runner, zaptest.NewLogger(t))
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name        string
		body        string
		redelivered bool
		wantAcks    int
		wantNacks   int
	}{
		{name: "single campaign", body: `{"campaign_id":"c1","source":"webhook"}`, wantAcks: 1},
		{name: "scheduled run", body: `{}`, wantAcks: 1},
		{name: "undecodable body is dropped", body: `not json`, wantAcks: 1},
		{name: "first failure is requeued", body: `{"campaign_id":"bad"}`, wantNacks: 1},
		{name: "failure on redelivery is dropped", body: `{"campaign_id":"bad"}`, redelivered: true, wantAcks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, acker := delivery(tt.body, tt.redelivered)
			handleDelivery(context.Background(), w, d, logger)

			assert.Equal(t, tt.wantAcks, acker.acks)
			assert.Equal(t, tt.wantNacks, acker.nacks)
			if tt.wantNacks > 0 {
				assert.True(t, acker.requeue)
			}
		})
	}

	assert.Equal(t, []string{"c1", "*", "bad", "bad"}, runner.runs)
}
