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

package registration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carverauto/mco-registration/pkg/logger"
)

// ExtraLoader supplies the aux datasets attached to every record.
type ExtraLoader interface {
	Load(ctx context.Context) map[string]interface{}
}

// DirLoader parses every YAML file directly inside a directory on each call.
type DirLoader struct {
	dir    string
	logger logger.Logger
}

var _ ExtraLoader = (*DirLoader)(nil)

// NewDirLoader creates a loader for dir.
func NewDirLoader(dir string, log logger.Logger) *DirLoader {
	return &DirLoader{dir: dir, logger: log}
}

// Load implements ExtraLoader. Files that cannot be read or parsed are
// skipped with a warning. Datasets are keyed by the file name up to its
// first dot.
func (d *DirLoader) Load(_ context.Context) map[string]interface{} {
	extra := make(map[string]interface{})

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		d.logger.Warn().Err(err).Str("dir", d.dir).Msg("Failed to read extra YAML directory")
		return extra
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(d.dir, entry.Name())

		content, err := parseYAMLFile(path)
		if err != nil {
			d.logger.Warn().Err(err).Str("file", path).Msg("Skipping unparseable extra YAML file")
			continue
		}

		extra[datasetName(entry.Name())] = content
	}

	return extra
}

func isYAMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func datasetName(fileName string) string {
	name, _, _ := strings.Cut(fileName, ".")

	return name
}

func parseYAMLFile(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var content interface{}
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	return normalizeYAML(content), nil
}

// normalizeYAML rewrites non-string-keyed maps so the value marshals to JSON.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalizeYAML(item)
		}

		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}

		return out
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}

		return val
	default:
		return val
	}
}
