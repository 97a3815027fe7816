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

package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/connectors/manager"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/types"
)

type fakeConnector struct {
	mu         sync.Mutex
	kind       types.ConnectorKind
	statements []string
	rows       []base.Row
	err        error
}

func (f *fakeConnector) Execute(ctx context.Context, statement string) ([]base.Row, error) {
	f.mu.Lock()
	f.statements = append(f.statements, statement)
	f.mu.Unlock()
	if f.err != nil {
		return nil, base.NewConnectorError("fake", "Execute", "backend failure", f.err)
	}
	return f.rows, nil
}

func (f *fakeConnector) HealthCheck(ctx context.Context) error      { return nil }
func (f *fakeConnector) Close(ctx context.Context) error            { return nil }
func (f *fakeConnector) Kind() types.ConnectorKind                  { return f.kind }
func (f *fakeConnector) lastStatement() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statements) == 0 {
		return ""
	}
	return f.statements[len(f.statements)-1]
}

func testModel() *config.Model {
	return &config.Model{
		Name: "gateway",
		Adapters: []config.Adapter{
			{Name: "db", Connector: types.ConnectorPostgres, URL: "postgres://unused"},
			{Name: "docs", Connector: types.ConnectorMongoDB, URL: "mongodb://unused"},
		},
		Queries: []config.Query{
			{
				Name:      "lookup",
				Adapter:   "db",
				Statement: "SELECT * FROM users WHERE name = {{ inputs.name }}",
				Inputs: []config.Input{
					{Name: "name", Type: types.PrimitiveString, Required: true},
				},
			},
			{
				Name:      "list",
				Adapter:   "db",
				Statement: "SELECT * FROM users LIMIT {{ inputs.limit }}",
				Inputs: []config.Input{
					{Name: "limit", Type: types.PrimitiveInt, Required: false, Default: 10, HasDefault: true},
				},
			},
			{
				Name:      "find-orders",
				Adapter:   "docs",
				Statement: `{"database":"shop","find":"orders","filter":{"status": {{ inputs.s }}}}`,
				Inputs: []config.Input{
					{Name: "s", Type: types.PrimitiveString, Required: true},
				},
			},
		},
	}
}

func testExecutor(t *testing.T, fakes map[string]*fakeConnector) *Executor {
	t.Helper()
	model := testModel()
	mgr := manager.NewWithFactory(func(ctx context.Context, kind types.ConnectorKind, cfg base.Config) (base.Connector, error) {
		fake, ok := fakes[cfg.Name]
		if !ok {
			return nil, errors.New("no fake for " + cfg.Name)
		}
		fake.kind = kind
		return fake, nil
	})
	require.NoError(t, mgr.Initialize(context.Background(), model.Adapters, model.Pool()))
	return New(model, mgr)
}

func TestExecuteSubstitutesAndDispatches(t *testing.T) {
	db := &fakeConnector{rows: []base.Row{{"id": 1}}}
	exec := testExecutor(t, map[string]*fakeConnector{"db": db, "docs": {}})

	rows, err := exec.Execute(context.Background(), "lookup", map[string]interface{}{
		"name": "'; DROP TABLE users; --",
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, `SELECT * FROM users WHERE name = '''; DROP TABLE users; --'`, db.lastStatement())
}

func TestExecuteAppliesDefault(t *testing.T) {
	db := &fakeConnector{}
	exec := testExecutor(t, map[string]*fakeConnector{"db": db, "docs": {}})

	_, err := exec.Execute(context.Background(), "list", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 10", db.lastStatement())

	_, err = exec.Execute(context.Background(), "list", map[string]interface{}{"limit": json.Number("50")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 50", db.lastStatement())
}

func TestExecuteMongoStatement(t *testing.T) {
	docs := &fakeConnector{}
	exec := testExecutor(t, map[string]*fakeConnector{"db": {}, "docs": docs})

	_, err := exec.Execute(context.Background(), "find-orders", map[string]interface{}{"s": "paid"})
	require.NoError(t, err)
	assert.Equal(t, `{"database":"shop","find":"orders","filter":{"status": "paid"}}`, docs.lastStatement())
}

func TestExecuteQueryNotFound(t *testing.T) {
	exec := testExecutor(t, map[string]*fakeConnector{"db": {}, "docs": {}})

	_, err := exec.Execute(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Equal(t, hterrors.KindQueryNotFound, hterrors.KindOf(err))
	assert.Equal(t, "Query not found: nope", hterrors.Sanitize(err))
}

func TestExecuteBackendErrorIsSanitized(t *testing.T) {
	db := &fakeConnector{err: errors.New("pq: password authentication failed for user \"admin\"")}
	exec := testExecutor(t, map[string]*fakeConnector{"db": db, "docs": {}})

	_, err := exec.Execute(context.Background(), "list", map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, hterrors.KindDatabase, hterrors.KindOf(err))
	assert.Equal(t, "Database connection error", hterrors.Sanitize(err))
	assert.NotContains(t, hterrors.Sanitize(err), "password")
}

func TestExecuteValidationPrecedesDispatch(t *testing.T) {
	db := &fakeConnector{}
	exec := testExecutor(t, map[string]*fakeConnector{"db": db, "docs": {}})

	_, err := exec.Execute(context.Background(), "list", map[string]interface{}{"limit": "fifty"})
	require.Error(t, err)
	assert.Empty(t, db.statements)
}
