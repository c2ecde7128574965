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
	"encoding/json"
	"testing"
	"time"
)

func TestDurationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Duration
		wantErr  bool
	}{
		{name: "string duration", input: `"5s"`, expected: Duration(5 * time.Second)},
		{name: "nanoseconds", input: `2500000000`, expected: Duration(2500 * time.Millisecond)},
		{name: "compound string", input: `"1m30s"`, expected: Duration(90 * time.Second)},
		{name: "bad string", input: `"soon"`, wantErr: true},
		{name: "bad type", input: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.input)
				}

				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if d != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, d)
			}
		})
	}
}

func TestLoggingConfigFromJSON(t *testing.T) {
	raw := `{
		"level": "warn",
		"output": "stderr",
		"otel": {
			"enabled": true,
			"endpoint": "otel-collector:4317",
			"batch_timeout": "10s",
			"insecure": true
		}
	}`

	var config Config
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if config.Level != "warn" || config.Output != "stderr" {
		t.Errorf("unexpected level/output %q/%q", config.Level, config.Output)
	}

	if config.OTel.BatchTimeout != Duration(10*time.Second) {
		t.Errorf("Expected batch_timeout 10s, got %v", config.OTel.BatchTimeout)
	}

	if !config.OTel.Insecure || config.OTel.Endpoint != "otel-collector:4317" {
		t.Errorf("unexpected otel section %+v", config.OTel)
	}
}
