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
	"errors"
	"time"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/connectors/manager"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/logger"
)

// Executor runs named queries against the validated model. It holds no
// mutable state; concurrent calls are safe because the model is immutable
// and connectors synchronize at the pool level.
type Executor struct {
	model   *config.Model
	manager *manager.Manager
	logger  *logger.Logger
}

// New creates an Executor over a validated model and an initialized manager
func New(model *config.Model, mgr *manager.Manager) *Executor {
	return &Executor{
		model:   model,
		manager: mgr,
		logger:  logger.New("executor"),
	}
}

// Execute runs one query call: lookup, input validation with defaults,
// dialect-aware substitution, then dispatch to the adapter's connector.
func (e *Executor) Execute(ctx context.Context, queryName string, inputs map[string]interface{}) ([]base.Row, error) {
	query := e.model.FindQuery(queryName)
	if query == nil {
		return nil, hterrors.QueryNotFound(queryName)
	}

	validated, err := ValidateInputs(query, inputs)
	if err != nil {
		return nil, err
	}

	adapter := e.model.FindAdapter(query.Adapter)
	if adapter == nil {
		return nil, hterrors.AdapterNotFound(query.Adapter)
	}

	statement, err := Substitute(query.Statement, validated, adapter.Connector)
	if err != nil {
		return nil, err
	}

	conn, err := e.manager.Get(adapter.Name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := conn.Execute(ctx, statement)
	if err != nil {
		var connErr *base.ConnectorError
		if errors.As(err, &connErr) {
			return nil, hterrors.Database("backend execution failed", err)
		}
		return nil, err
	}

	e.logger.Debug("", "query executed", map[string]interface{}{
		"query":       queryName,
		"adapter":     adapter.Name,
		"rows":        len(rows),
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return rows, nil
}
