package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"go.uber.org/zap"
)

const (
	DefaultPollTimeout = time.Second

	transportBackoff    = 500 * time.Millisecond
	maxTransportBackoff = 30 * time.Second
)

// TransportError is a failed poll. It is logged and polling continues.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("kafka transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	PollTimeout time.Duration
}

// Consumer is the feed of raw transfer payloads from a kafka topic.
// Delivery is at-least-once: offsets are committed after the handler returns.
type Consumer struct {
	reader      messageReader
	pollTimeout time.Duration
	backoff     time.Duration
	maxBackoff  time.Duration
	failures    int
	logger      *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,    // consume messages immediately
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(reader, cfg.PollTimeout, logger)
}

func newConsumer(reader messageReader, pollTimeout time.Duration, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Consumer{
		reader:      reader,
		pollTimeout: pollTimeout,
		backoff:     transportBackoff,
		maxBackoff:  maxTransportBackoff,
		logger:      logger,
	}
}

// Run polls until ctx is cancelled. The handler runs to completion even if
// ctx is cancelled meanwhile, so an in-flight event is never abandoned.
func (c *Consumer) Run(ctx context.Context, handle interfaces.MessageHandler) error {
	c.logger.Info("consumer started, waiting for messages")

	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped")
			return nil
		}

		msg, ok := c.poll(ctx)
		if !ok {
			continue
		}

		c.logger.Debug("received message",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)

		workCtx := context.WithoutCancel(ctx)
		handle(workCtx, msg.Value)

		if err := c.reader.CommitMessages(workCtx, msg); err != nil {
			c.logger.Error("failed to commit message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(&TransportError{Err: err}),
			)
		}
	}
}

// poll fetches one message within the poll timeout. Empty polls and transport
// errors report ok=false.
func (c *Consumer) poll(ctx context.Context) (kafka.Message, bool) {
	pollCtx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	msg, err := c.reader.FetchMessage(pollCtx)
	if err == nil {
		c.failures = 0
		return msg, true
	}

	if ctx.Err() != nil {
		return kafka.Message{}, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.failures = 0
		return kafka.Message{}, false
	}

	delay := c.retryDelay(c.failures)
	c.failures++
	c.logger.Error("error reading message",
		zap.Error(&TransportError{Err: err}),
		zap.Int("attempt", c.failures),
		zap.Duration("retry_in", delay),
	)

	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
	return kafka.Message{}, false
}

// retryDelay doubles the base pause per consecutive transport failure, capped
// at maxBackoff.
func (c *Consumer) retryDelay(attempt int) time.Duration {
	delay := c.backoff
	for i := 0; i < attempt && delay < c.maxBackoff; i++ {
		delay *= 2
	}
	return min(delay, c.maxBackoff)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

var _ interfaces.Feed = (*Consumer)(nil)
