package registrationconsumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/mco-registration/pkg/docstore"
	"github.com/carverauto/mco-registration/pkg/lifecycle"
	"github.com/carverauto/mco-registration/pkg/logger"
	"github.com/carverauto/mco-registration/pkg/natsutil"
)

const (
	clientName        = "mco-registration"
	defaultRetryDelay = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var (
	errNotConnected = errors.New("not connected to NATS")
	errNoHandler    = errors.New("handler is required")
)

// Service implements lifecycle.Service for the registration consumer.
type Service struct {
	cfg     *Config
	handler Handler
	store   docstore.Store
	logger  logger.Logger

	connectFactory func(context.Context) (*nats.Conn, jetstream.JetStream, *Consumer, error)
	retryDelay     time.Duration

	mu     sync.Mutex
	nc     *nats.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var (
	_ lifecycle.Service       = (*Service)(nil)
	_ lifecycle.HealthChecker = (*Service)(nil)
)

// NewService initializes the service. store is closed on Stop and may be nil.
func NewService(cfg *Config, handler Handler, store docstore.Store, log logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if handler == nil {
		return nil, errNoHandler
	}

	svc := &Service{
		cfg:        cfg,
		handler:    handler,
		store:      store,
		logger:     log,
		retryDelay: defaultRetryDelay,
	}
	svc.connectFactory = svc.connect

	return svc, nil
}

// Start launches the consume loop. Connection failures are retried in the
// background until Stop is called.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.run(runCtx)
	}()

	s.logger.Info().
		Str("stream_name", s.cfg.StreamName).
		Str("consumer_name", s.cfg.ConsumerName).
		Msg("Registration consumer started")

	return nil
}

func (s *Service) run(ctx context.Context) {
	for {
		nc, _, consumer, err := s.connectFactory(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("Failed to connect consumer")

			if !sleepCtx(ctx, s.retryDelay) {
				return
			}

			continue
		}

		s.setConn(nc)

		err = consumer.ProcessMessages(ctx, s.handler)

		s.setConn(nil)

		if nc != nil {
			nc.Close()
		}

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}

		s.logger.Warn().Err(err).Dur("retry_in", s.retryDelay).Msg("Consumer stopped, reconnecting")

		if !sleepCtx(ctx, s.retryDelay) {
			return
		}
	}
}

func (s *Service) connect(ctx context.Context) (*nats.Conn, jetstream.JetStream, *Consumer, error) {
	nc, err := natsutil.Connect(s.cfg.NATSURL, clientName, s.cfg.Security, s.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	js, err := natsutil.NewJetStream(nc, s.cfg.Domain)
	if err != nil {
		nc.Close()
		return nil, nil, nil, err
	}

	if _, err := natsutil.EnsureStream(ctx, js, s.cfg.StreamName, s.cfg.Subject); err != nil {
		nc.Close()
		return nil, nil, nil, err
	}

	consumer, err := NewConsumer(ctx, js, s.cfg.StreamName, s.cfg.ConsumerName, s.cfg.Subject, s.cfg.Workers, s.logger)
	if err != nil {
		nc.Close()
		return nil, nil, nil, err
	}

	return nc, js, consumer, nil
}

func (s *Service) setConn(nc *nats.Conn) {
	s.mu.Lock()
	s.nc = nc
	s.mu.Unlock()
}

// Health reports NATS connectivity and, when supported, store availability.
func (s *Service) Health(ctx context.Context) error {
	s.mu.Lock()
	nc := s.nc
	s.mu.Unlock()

	if nc == nil || !nc.IsConnected() {
		return errNotConnected
	}

	if pinger, ok := s.store.(docstore.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("document store: %w", err)
		}
	}

	return nil
}

// Stop shuts down the service.
func (s *Service) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	stop := s.cancel
	nc := s.nc
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	// closing the connection unblocks an in-flight Fetch
	if nc != nil {
		nc.Close()
	}

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for consumer loop to exit")
	}

	var err error
	if s.store != nil {
		err = s.store.Close()
	}

	s.logger.Info().Msg("Registration consumer stopped")

	return err
}
