package registrationconsumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/mco-registration/pkg/logger"
)

const (
	defaultMaxPullMessages = 50
	defaultPullExpiry      = 30 * time.Second
	defaultAckWait         = 30 * time.Second
	defaultMaxDeliver      = 3
	defaultMaxAckPending   = 1000
	fetchRetryDelay        = time.Second
)

// Handler consumes one report payload. It has no failure path.
type Handler interface {
	Handle(ctx context.Context, data []byte)
}

type pullConsumer interface {
	Fetch(batch int, opts ...jetstream.FetchOpt) (jetstream.MessageBatch, error)
}

// Consumer wraps a JetStream pull consumer.
type Consumer struct {
	streamName   string
	consumerName string
	consumer     pullConsumer
	workers      int
	logger       logger.Logger
}

// NewConsumer creates or retrieves a durable pull consumer for the given stream.
func NewConsumer(ctx context.Context, js jetstream.JetStream, streamName, consumerName, subject string,
	workers int, log logger.Logger) (*Consumer, error) {
	log.Debug().
		Str("stream", streamName).
		Str("consumer", consumerName).
		Str("subject", subject).
		Msg("Creating/getting pull consumer")

	consumer, err := js.Consumer(ctx, streamName, consumerName)
	if err != nil {
		cfg := jetstream.ConsumerConfig{
			Durable:       consumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       defaultAckWait,
			MaxDeliver:    defaultMaxDeliver,
			MaxAckPending: defaultMaxAckPending,
		}

		if subject != "" {
			cfg.FilterSubject = subject
		}

		consumer, err = js.CreateConsumer(ctx, streamName, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	if workers < 1 {
		workers = 1
	}

	return &Consumer{
		streamName:   streamName,
		consumerName: consumerName,
		consumer:     consumer,
		workers:      workers,
		logger:       log,
	}, nil
}

// ProcessMessages fetches batches and hands every message to handler until ctx
// ends or the connection fails. Transient fetch errors are retried.
func (c *Consumer) ProcessMessages(ctx context.Context, handler Handler) error {
	c.logger.Info().
		Str("stream", c.streamName).
		Str("consumer", c.consumerName).
		Int("workers", c.workers).
		Msg("Starting pull consumer")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msgs, err := c.consumer.Fetch(defaultMaxPullMessages, jetstream.FetchMaxWait(defaultPullExpiry))
		if err != nil {
			if isTerminal(err) {
				return err
			}

			c.logger.Warn().Err(err).Msg("Failed to fetch messages")

			if !sleepCtx(ctx, fetchRetryDelay) {
				return ctx.Err()
			}

			continue
		}

		c.dispatch(ctx, msgs.Messages(), handler)

		if fetchErr := msgs.Error(); fetchErr != nil {
			if isTerminal(fetchErr) {
				return fetchErr
			}

			if !errors.Is(fetchErr, nats.ErrTimeout) {
				c.logger.Debug().Err(fetchErr).Msg("Fetch ended with error")
			}
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan jetstream.Msg, handler Handler) {
	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	for msg := range msgs {
		g.Go(func() error {
			c.handleMessage(ctx, msg, handler)
			return nil
		})
	}

	_ = g.Wait()
}

// handleMessage always acks: reports are fire-and-forget and never redelivered.
func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg, handler Handler) {
	defer func() {
		if err := msg.Ack(); err != nil {
			c.logger.Warn().Err(err).Str("subject", msg.Subject()).Msg("Failed to ack message")
		}
	}()

	if metadata, err := msg.Metadata(); err == nil {
		c.logger.Debug().
			Str("subject", msg.Subject()).
			Uint64("seq", metadata.Sequence.Stream).
			Uint64("delivered", metadata.NumDelivered).
			Msg("Processing message")
	}

	handler.Handle(ctx, msg.Data())
}

func isTerminal(err error) bool {
	return errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrNoResponders) ||
		errors.Is(err, jetstream.ErrConsumerDeleted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
