// Copyright 2025 Hyperterse
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/shared/logger"
)

// DefaultDebounce is the quiet window before a change triggers a reload
const DefaultDebounce = 500 * time.Millisecond

// ReloadController watches the config document and swaps the runtime state
// when it changes. Bursts of file events collapse into one reload; a failed
// parse or validation keeps the previous configuration serving.
type ReloadController struct {
	runtime  *Runtime
	debounce time.Duration
	logger   *logger.Logger
}

// NewReloadController creates a controller over the runtime's config path
func NewReloadController(runtime *Runtime, debounce time.Duration) *ReloadController {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ReloadController{
		runtime:  runtime,
		debounce: debounce,
		logger:   logger.New("reload"),
	}
}

// Watch blocks on file notifications until ctx is cancelled. Run it on its
// own goroutine; the filesystem wait must not share the request path.
func (c *ReloadController) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	path := c.runtime.ConfigPath()
	if err := watcher.Add(path); err != nil {
		return err
	}
	c.logger.Info("", "watching config for changes", map[string]interface{}{
		"path":        path,
		"debounce_ms": c.debounce.Milliseconds(),
	})

	// The timer arms on the first event and re-arms on every later one, so
	// only the last change inside a quiet window triggers the reload.
	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Editors replace files on save; re-arm the watch on the path
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				_ = watcher.Remove(path)
				if err := rearmWatch(watcher, path); err != nil {
					c.logger.ErrorWithCause("", "failed to re-watch config, further changes will not reload", err, map[string]interface{}{"path": path})
				}
			}
			timer.Reset(c.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.ErrorWithCause("", "watcher error", err, nil)
		case <-timer.C:
			c.reload(ctx)
		}
	}
}

// rearmWatch re-adds the path to the watcher, retrying while the replacement
// file lands on disk. Atomic saves briefly leave no file at the path, so a
// single immediate Add would miss the window.
func rearmWatch(watcher *fsnotify.Watcher, path string) error {
	const (
		attempts = 20
		interval = 50 * time.Millisecond
	)
	var err error
	for i := 0; i < attempts; i++ {
		if err = watcher.Add(path); err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return err
}

func (c *ReloadController) reload(ctx context.Context) {
	path := c.runtime.ConfigPath()
	model, err := config.Load(path)
	if err != nil {
		promReloadsTotal.WithLabelValues("error").Inc()
		c.logger.ErrorWithCause("", "reload failed, keeping previous configuration", err, map[string]interface{}{"path": path})
		return
	}
	model.ApplyPortOverride(c.runtime.PortOverride())

	state, err := BuildState(ctx, model)
	if err != nil {
		promReloadsTotal.WithLabelValues("error").Inc()
		c.logger.ErrorWithCause("", "reload failed, keeping previous configuration", err, map[string]interface{}{"path": path})
		return
	}

	old := c.runtime.Swap(state)
	promReloadsTotal.WithLabelValues("success").Inc()
	c.logger.Info("", "configuration reloaded", map[string]interface{}{
		"adapters": len(model.Adapters),
		"queries":  len(model.Queries),
	})

	// Drain the superseded pools once in-flight requests are done with them
	go func() {
		if err := old.Manager.CloseAll(context.Background()); err != nil {
			c.logger.ErrorWithCause("", "failed to close superseded connectors", err, nil)
		}
	}()
}
