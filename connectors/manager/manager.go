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

// Package manager owns the runtime connectors: parallel initialization from
// the adapter declarations, name lookup, concurrent health checks, and
// graceful close.
package manager

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/connectors/mongodb"
	"github.com/hyperterse/hyperterse/connectors/mysql"
	"github.com/hyperterse/hyperterse/connectors/postgres"
	"github.com/hyperterse/hyperterse/connectors/redis"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/logger"
	"github.com/hyperterse/hyperterse/shared/types"
)

// healthCheckParallelism bounds concurrent health checks so one slow backend
// cannot serialize the rest
const healthCheckParallelism = 16

// Factory opens a connector for an adapter declaration. Overridable in tests.
type Factory func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error)

// Manager guards a name-to-connector map for concurrent readers
type Manager struct {
	mu         sync.RWMutex
	connectors map[string]base.Connector
	factory    Factory
	logger     *logger.Logger
}

// New creates an empty Manager using the default backend factory
func New() *Manager {
	return &Manager{
		connectors: make(map[string]base.Connector),
		factory:    defaultFactory,
		logger:     logger.New("manager"),
	}
}

// NewWithFactory creates a Manager whose connectors are opened by factory
func NewWithFactory(factory Factory) *Manager {
	m := New()
	m.factory = factory
	return m
}

func defaultFactory(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
	if err := base.ValidateURL(kind, cfg.URL); err != nil {
		return nil, hterrors.Wrap(hterrors.KindConfig, "adapter '"+cfg.Name+"'", err)
	}
	switch kind {
	case types.ConnectorPostgres:
		return postgres.New(ctx, cfg)
	case types.ConnectorMySQL:
		return mysql.New(ctx, cfg)
	case types.ConnectorRedis:
		return redis.New(ctx, cfg)
	case types.ConnectorMongoDB:
		return mongodb.New(ctx, cfg)
	default:
		return nil, hterrors.New(hterrors.KindConfig, "unknown connector kind '"+kind.String()+"'")
	}
}

// Initialize opens one connector per adapter concurrently. A single failure
// fails the whole initialization; connectors that did open are closed and
// discarded.
func (m *Manager) Initialize(ctx context.Context, adapters []config.Adapter, pool config.PoolConfig) error {
	opened := make([]base.Connector, len(adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i := range adapters {
		i, adapter := i, adapters[i]
		g.Go(func() error {
			conn, err := m.factory(gctx, adapter.Connector, base.Config{
				Name: adapter.Name,
				URL:  adapter.URL,
				Pool: pool,
			})
			if err != nil {
				return err
			}
			opened[i] = conn
			m.logger.Info("", "connector initialized", map[string]interface{}{
				"adapter": adapter.Name,
				"kind":    adapter.Connector.String(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, conn := range opened {
			if conn != nil {
				_ = conn.Close(context.Background())
			}
		}
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range adapters {
		m.connectors[adapters[i].Name] = opened[i]
	}
	return nil
}

// Get returns the connector registered under name
func (m *Manager) Get(name string) (base.Connector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.connectors[name]
	if !ok {
		return nil, hterrors.AdapterNotFound(name)
	}
	return conn, nil
}

// HealthCheckAll runs every connector's health check concurrently with
// bounded parallelism and returns a per-adapter result map (nil on success)
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]error {
	m.mu.RLock()
	snapshot := make(map[string]base.Connector, len(m.connectors))
	for name, conn := range m.connectors {
		snapshot[name] = conn
	}
	m.mu.RUnlock()

	results := make(map[string]error, len(snapshot))
	var resultsMu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(healthCheckParallelism)
	for name, conn := range snapshot {
		name, conn := name, conn
		g.Go(func() error {
			err := conn.HealthCheck(ctx)
			resultsMu.Lock()
			results[name] = err
			resultsMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CloseAll closes every connector and aggregates failures into one error.
// It never panics on a backend failing to close.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, conn := range m.connectors {
		if err := conn.Close(ctx); err != nil {
			m.logger.ErrorWithCause("", "failed to close connector", err, map[string]interface{}{
				"adapter": name,
			})
			errs = append(errs, err)
		}
	}
	m.connectors = make(map[string]base.Connector)
	return errors.Join(errs...)
}
