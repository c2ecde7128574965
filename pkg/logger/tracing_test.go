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

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestShutdownTracingFlushesSpans(t *testing.T) {
	ctx := context.Background()

	tp, err := InitializeTracing(ctx, TracingConfig{ServiceName: "tracing-test"})
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp.RegisterSpanProcessor(recorder)

	_, span := GetTracer("tracing-test").Start(ctx, "reconcile")
	span.End()

	require.NoError(t, ShutdownTracing(ctx))
	assert.Len(t, recorder.Ended(), 1)

	require.NoError(t, ShutdownTracing(ctx), "second shutdown is a no-op")
}

func TestShutdownTracingWithoutProvider(t *testing.T) {
	require.NoError(t, ShutdownTracing(context.Background()))
}
