package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Publisher is the part of *amqp.Channel the invoker uses.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPInvoker publishes jobs to a durable RabbitMQ queue consumed by the worker.
type AMQPInvoker struct {
	mu        sync.Mutex
	publisher Publisher
	queueName string
	conn      *amqp.Connection
}

// NewAMQPInvoker wraps an open channel.
func NewAMQPInvoker(publisher Publisher, queueName string) *AMQPInvoker {
	return &AMQPInvoker{publisher: publisher, queueName: queueName}
}

// DialAMQP connects to RabbitMQ and declares the job queue.
func DialAMQP(url, queueName string) (*AMQPInvoker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if _, err := DeclareQueue(ch, queueName); err != nil {
		conn.Close()
		return nil, err
	}

	inv := NewAMQPInvoker(ch, queueName)
	inv.conn = conn
	return inv, nil
}

// DeclareQueue declares the durable job queue shared by publisher and worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return q, nil
}

func (a *AMQPInvoker) Invoke(_ context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.publisher.Publish("", a.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish job to %s: %w", a.queueName, err)
	}
	return nil
}

// Close closes the connection opened by DialAMQP.
func (a *AMQPInvoker) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
