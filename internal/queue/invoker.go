package queue

import (
	"fmt"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/config"
	appErrors "github.com/Spizzerp/CampaignNotionAutomation/internal/errors"
)

// NewInvoker builds the invoker selected by cfg.Type. local backs the
// "memory" type and may be nil for the others.
func NewInvoker(cfg config.InvokerConfig, local Queue) (Invoker, error) {
	switch cfg.Type {
	case "", "memory":
		if local == nil {
			return nil, fmt.Errorf("memory invoker needs a local queue")
		}
		return &QueueInvoker{Queue: local, Topic: CampaignRunsTopic}, nil
	case "amqp":
		return DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
	case "lambda":
		return NewLambdaInvoker(cfg.AWSRegion, cfg.ProcessFunctionName())
	default:
		return nil, fmt.Errorf("%w: invoker type %q", appErrors.ErrUnknownBackend, cfg.Type)
	}
}
