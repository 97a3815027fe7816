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

// Package postgres implements the PostgreSQL connector.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/shared/logger"
	"github.com/hyperterse/hyperterse/shared/types"
)

// Connector executes substituted SQL statements against a PostgreSQL pool
type Connector struct {
	name   string
	db     *sql.DB
	logger *logger.Logger
}

// New opens a PostgreSQL connection pool sized from cfg.Pool and verifies it
// with a ping bounded by the acquire timeout.
func New(ctx context.Context, cfg base.Config) (*Connector, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, base.NewConnectorError(cfg.Name, "Connect", "failed to open connection", err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxConnections)
	db.SetMaxIdleConns(cfg.Pool.MinConnections)
	db.SetConnMaxIdleTime(time.Duration(cfg.Pool.IdleTimeoutSecs) * time.Second)
	db.SetConnMaxLifetime(time.Duration(cfg.Pool.MaxLifetimeSecs) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Pool.AcquireTimeoutSecs)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, base.NewConnectorError(cfg.Name, "Connect", "failed to ping database", err)
	}

	return &Connector{
		name:   cfg.Name,
		db:     db,
		logger: logger.New("connector.postgres"),
	}, nil
}

// newWithDB wires an existing pool; used by tests
func newWithDB(name string, db *sql.DB) *Connector {
	return &Connector{
		name:   name,
		db:     db,
		logger: logger.New("connector.postgres"),
	}
}

// Execute runs the statement and materializes all rows
func (c *Connector) Execute(ctx context.Context, statement string) ([]base.Row, error) {
	start := time.Now()
	rows, err := c.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "query execution failed", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "failed to get columns", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "failed to get column types", err)
	}

	results := make([]base.Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, base.NewConnectorError(c.name, "Execute", "failed to scan row", err)
		}

		row := make(base.Row, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i], columnTypes[i].DatabaseTypeName())
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "error during row iteration", err)
	}

	c.logger.Debug("", "query executed", map[string]interface{}{
		"adapter":     c.name,
		"rows":        len(results),
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return results, nil
}

// HealthCheck verifies the pool can reach the database
func (c *Connector) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return base.NewConnectorError(c.name, "HealthCheck", "ping failed", err)
	}
	return nil
}

// Close releases the pool
func (c *Connector) Close(ctx context.Context) error {
	if err := c.db.Close(); err != nil {
		return base.NewConnectorError(c.name, "Close", "failed to close connection", err)
	}
	return nil
}

// Kind returns the connector kind
func (c *Connector) Kind() types.ConnectorKind {
	return types.ConnectorPostgres
}
