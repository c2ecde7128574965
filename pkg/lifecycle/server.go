/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carverauto/mco-registration/pkg/logger"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

var errNoService = errors.New("service is required")

// Service is a long-running component managed by RunServer.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HealthChecker is implemented by services that can report readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ServerOptions configures RunServer.
type ServerOptions struct {
	ListenAddr        string
	ServiceName       string
	Service           Service
	EnableHealthCheck bool
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer        prometheus.Gatherer
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// Listener overrides ListenAddr when set.
	Listener net.Listener
}

// RunServer starts the service and its HTTP endpoints, then blocks until ctx
// is cancelled or SIGINT/SIGTERM arrives, after which both are stopped.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if opts == nil || opts.Service == nil {
		return errNoService
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := opts.Service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
	}

	srv, errCh, err := startHTTP(ctx, opts, log)
	if err != nil {
		_ = opts.Service.Stop(context.Background())
		return err
	}

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutting down")
	case runErr = <-errCh:
		log.Error().Err(runErr).Str("service", opts.ServiceName).Msg("HTTP server failed")
	}

	timeout := opts.ShutdownTimeout
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("failed to stop %s: %w", opts.ServiceName, err))
	}

	return runErr
}

func startHTTP(ctx context.Context, opts *ServerOptions, log logger.Logger) (*http.Server, <-chan error, error) {
	errCh := make(chan error, 1)

	if opts.Listener == nil && opts.ListenAddr == "" {
		return nil, errCh, nil
	}

	mux := http.NewServeMux()

	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.EnableHealthCheck {
		mux.HandleFunc("/healthz", healthHandler(opts.Service))
	}

	ln := opts.Listener
	if ln == nil {
		var err error

		ln, err = net.Listen("tcp", opts.ListenAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
		}
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info().
		Str("service", opts.ServiceName).
		Str("addr", ln.Addr().String()).
		Msg("HTTP endpoints listening")

	return srv, errCh, nil
}

func healthHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hc, ok := svc.(HealthChecker); ok {
			if err := hc.Health(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}
}
