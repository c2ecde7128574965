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
	"maps"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/carverauto/mco-registration/pkg/logger"
)

// WatchedLoader caches the parsed aux directory and refreshes the cache when
// a YAML file in it changes.
type WatchedLoader struct {
	dir     *DirLoader
	watcher *fsnotify.Watcher
	logger  logger.Logger

	mu       sync.RWMutex
	snapshot map[string]interface{}

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

var _ ExtraLoader = (*WatchedLoader)(nil)

// NewWatchedLoader parses dir once and starts watching it.
func NewWatchedLoader(ctx context.Context, dir string, log logger.Logger) (*WatchedLoader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &WatchedLoader{
		dir:     NewDirLoader(dir, log),
		watcher: watcher,
		logger:  log,
		done:    make(chan struct{}),
	}

	w.reload(ctx)

	w.wg.Add(1)

	go w.loop(ctx)

	return w, nil
}

// Load implements ExtraLoader with the cached snapshot.
func (w *WatchedLoader) Load(context.Context) map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return maps.Clone(w.snapshot)
}

// Close stops watching. Later calls return the first call's result.
func (w *WatchedLoader) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})

	return w.closeErr
}

func (w *WatchedLoader) reload(ctx context.Context) {
	snapshot := w.dir.Load(ctx)

	w.mu.Lock()
	w.snapshot = snapshot
	w.mu.Unlock()

	w.logger.Debug().Int("datasets", len(snapshot)).Msg("Loaded extra YAML datasets")
}

func (w *WatchedLoader) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if !isYAMLFile(filepath.Base(event.Name)) {
				continue
			}

			w.reload(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			w.logger.Warn().Err(err).Msg("Extra YAML watcher error")
		}
	}
}
