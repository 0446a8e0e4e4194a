package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestInMemoryQueue_DeliversJobToSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewInMemoryQueue(zaptest.NewLogger(t))
	got := make(chan Job, 1)
	require.NoError(t, StartCampaignRunSubscriber(q, func(_ context.Context, job Job) error {
		got <- job
		return nil
	}, zaptest.NewLogger(t)))

	inv := &QueueInvoker{Queue: q}
	require.NoError(t, inv.Invoke(context.Background(), Job{CampaignID: "X", Source: "webhook"}))

	select {
	case job := <-got:
		assert.Equal(t, Job{CampaignID: "X", Source: "webhook"}, job)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not delivered")
	}
}

func TestInMemoryQueue_RetriesFailedJobs(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewInMemoryQueue(zaptest.NewLogger(t))
	q.MaxRetries = 2
	q.RetryDelay = time.Millisecond

	var calls atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		if calls.Add(1) < 3 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish("t", 1))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not succeed after retries")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestInMemoryQueue_PublishWithoutSubscribers(t *testing.T) {
	q := NewInMemoryQueue(zaptest.NewLogger(t))
	err := q.Publish(CampaignRunsTopic, Job{})
	assert.Error(t, err)
}

func TestDecodeJob(t *testing.T) {
	job, err := DecodeJob([]byte(`{"campaign_id":"X","source":"webhook"}`))
	require.NoError(t, err)
	assert.Equal(t, Job{CampaignID: "X", Source: "webhook"}, job)

	_, err = DecodeJob([]byte("not json"))
	assert.Error(t, err)
}
