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
	"io"

	"github.com/rs/zerolog"

	"github.com/carverauto/mco-registration/pkg/logger"
)

// componentLogger is a logger.Logger bound to its own zerolog.Logger rather
// than the package-level one.
type componentLogger struct {
	zerolog.Logger
}

var _ logger.Logger = (*componentLogger)(nil)

// NewLoggerFromWriter builds a logger writing JSON lines to w.
func NewLoggerFromWriter(w io.Writer, level zerolog.Level) logger.Logger {
	return &componentLogger{Logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// CreateComponentLogger builds a logger from config whose lines carry the
// given component name.
func CreateComponentLogger(ctx context.Context, component string, config *logger.Config) (logger.Logger, error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	output, err := logger.NewOutput(ctx, config)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(config)
	if err != nil {
		return nil, err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	base := zerolog.New(output).Level(level).With().Timestamp().Str("component", component).Logger()

	return &componentLogger{Logger: base}, nil
}

func (l *componentLogger) WithComponent(component string) zerolog.Logger {
	return l.Logger.With().Str("component", component).Logger()
}

func (l *componentLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return l.Logger.With().Fields(fields).Logger()
}

func (l *componentLogger) SetLevel(level zerolog.Level) {
	l.Logger = l.Logger.Level(level)
}

func (l *componentLogger) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
		return
	}

	l.SetLevel(zerolog.InfoLevel)
}

// ShutdownLogger flushes and stops the OTel pipelines behind the loggers.
func ShutdownLogger() error {
	return logger.Shutdown()
}
