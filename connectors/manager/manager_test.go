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

package manager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/types"
)

type stubConnector struct {
	kind      types.ConnectorKind
	healthErr error
	closeErr  error
	closed    atomic.Bool
}

func (s *stubConnector) Execute(ctx context.Context, statement string) ([]base.Row, error) {
	return nil, nil
}
func (s *stubConnector) HealthCheck(ctx context.Context) error { return s.healthErr }
func (s *stubConnector) Close(ctx context.Context) error {
	s.closed.Store(true)
	return s.closeErr
}
func (s *stubConnector) Kind() types.ConnectorKind { return s.kind }

func adapters(names ...string) []config.Adapter {
	out := make([]config.Adapter, len(names))
	for i, name := range names {
		out[i] = config.Adapter{Name: name, Connector: types.ConnectorPostgres, URL: "postgres://unused"}
	}
	return out
}

func TestInitializeAndGet(t *testing.T) {
	stubs := map[string]*stubConnector{"a": {}, "b": {}}
	mgr := NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		return stubs[cfg.Name], nil
	})

	require.NoError(t, mgr.Initialize(context.Background(), adapters("a", "b"), config.DefaultPoolConfig()))

	conn, err := mgr.Get("a")
	require.NoError(t, err)
	assert.Same(t, stubs["a"], conn.(*stubConnector))

	_, err = mgr.Get("missing")
	require.Error(t, err)
	assert.Equal(t, hterrors.KindAdapterNotFound, hterrors.KindOf(err))
	assert.Equal(t, "Adapter not found: missing", err.Error())
}

func TestInitializeFailureDiscardsPartialSuccesses(t *testing.T) {
	good := &stubConnector{}
	mgr := NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		if cfg.Name == "bad" {
			return nil, errors.New("connection refused")
		}
		return good, nil
	})

	err := mgr.Initialize(context.Background(), adapters("good", "bad"), config.DefaultPoolConfig())
	require.Error(t, err)

	// The successfully opened connector was closed and nothing registered
	assert.True(t, good.closed.Load())
	_, err = mgr.Get("good")
	assert.Error(t, err)
}

func TestGetDuringInitializeIsSafe(t *testing.T) {
	release := make(chan struct{})
	stub := &stubConnector{}
	mgr := NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		<-release
		return stub, nil
	})

	done := make(chan error, 1)
	go func() {
		done <- mgr.Initialize(context.Background(), adapters("db"), config.DefaultPoolConfig())
	}()

	// Lookups racing initialization fail cleanly; nothing is registered
	// until the whole batch has opened
	_, err := mgr.Get("db")
	require.Error(t, err)
	assert.Equal(t, hterrors.KindAdapterNotFound, hterrors.KindOf(err))

	close(release)
	require.NoError(t, <-done)

	conn, err := mgr.Get("db")
	require.NoError(t, err)
	assert.Same(t, stub, conn.(*stubConnector))
}

func TestHealthCheckAll(t *testing.T) {
	stubs := map[string]*stubConnector{
		"healthy": {},
		"sick":    {healthErr: errors.New("down")},
	}
	mgr := NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		return stubs[cfg.Name], nil
	})
	require.NoError(t, mgr.Initialize(context.Background(), adapters("healthy", "sick"), config.DefaultPoolConfig()))

	results := mgr.HealthCheckAll(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["healthy"])
	assert.Error(t, results["sick"])
}

func TestCloseAllAggregatesErrors(t *testing.T) {
	stubs := map[string]*stubConnector{
		"ok":   {},
		"bad1": {closeErr: errors.New("close failed 1")},
		"bad2": {closeErr: errors.New("close failed 2")},
	}
	mgr := NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		return stubs[cfg.Name], nil
	})
	require.NoError(t, mgr.Initialize(context.Background(), adapters("ok", "bad1", "bad2"), config.DefaultPoolConfig()))

	err := mgr.CloseAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed 1")
	assert.Contains(t, err.Error(), "close failed 2")
	for _, stub := range stubs {
		assert.True(t, stub.closed.Load())
	}

	// The map is emptied even when some closes fail
	_, err = mgr.Get("ok")
	assert.Error(t, err)
}
