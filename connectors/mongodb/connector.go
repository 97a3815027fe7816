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

// Package mongodb implements the MongoDB connector. Statements are JSON
// documents describing native database commands.
package mongodb

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/shared/logger"
	"github.com/hyperterse/hyperterse/shared/types"
)

// Connector executes substituted command documents against MongoDB
type Connector struct {
	name      string
	client    *mongo.Client
	defaultDB string
	logger    *logger.Logger
}

// New connects to MongoDB and verifies the connection with a ping. The
// default database, if any, is taken from the connection URL path.
func New(ctx context.Context, cfg base.Config) (*Connector, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(uint64(cfg.Pool.MaxConnections)).
		SetMinPoolSize(uint64(cfg.Pool.MinConnections)).
		SetMaxConnIdleTime(time.Duration(cfg.Pool.IdleTimeoutSecs) * time.Second).
		SetConnectTimeout(time.Duration(cfg.Pool.AcquireTimeoutSecs) * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Pool.AcquireTimeoutSecs)*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, base.NewConnectorError(cfg.Name, "Connect", "failed to connect", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, base.NewConnectorError(cfg.Name, "Connect", "failed to ping mongodb", err)
	}

	return &Connector{
		name:      cfg.Name,
		client:    client,
		defaultDB: defaultDatabase(cfg.URL),
		logger:    logger.New("connector.mongodb"),
	}, nil
}

// Execute parses the statement as a JSON command document. A top-level
// "database" key selects the target database and is stripped from the
// command; otherwise the connection's default database is used.
func (c *Connector) Execute(ctx context.Context, statement string) ([]base.Row, error) {
	command, database, err := parseCommand(statement)
	if err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "invalid command document", err)
	}
	if database == "" {
		database = c.defaultDB
	}
	if database == "" {
		return nil, base.NewConnectorError(c.name, "Execute", "no database specified and connection has no default database", nil)
	}
	if len(command) == 0 {
		return nil, base.NewConnectorError(c.name, "Execute", "empty command document", nil)
	}

	start := time.Now()
	var reply bson.M
	if err := c.client.Database(database).RunCommand(ctx, command).Decode(&reply); err != nil {
		return nil, base.NewConnectorError(c.name, "Execute", "command failed", err)
	}

	c.logger.Debug("", "command executed", map[string]interface{}{
		"adapter":     c.name,
		"database":    database,
		"command":     command[0].Key,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return normalizeReply(reply), nil
}

// HealthCheck verifies the client can reach a primary
func (c *Connector) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return base.NewConnectorError(c.name, "HealthCheck", "ping failed", err)
	}
	return nil
}

// Close disconnects the client
func (c *Connector) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return base.NewConnectorError(c.name, "Close", "failed to disconnect", err)
	}
	return nil
}

// Kind returns the connector kind
func (c *Connector) Kind() types.ConnectorKind {
	return types.ConnectorMongoDB
}

// normalizeReply shapes a command reply into rows: a cursor.firstBatch array
// yields one row per batch document, anything else is a single row.
func normalizeReply(reply bson.M) []base.Row {
	converted, ok := convertBSON(reply).(map[string]interface{})
	if !ok {
		return []base.Row{}
	}
	if cursor, ok := converted["cursor"].(map[string]interface{}); ok {
		if batch, ok := cursor["firstBatch"].([]interface{}); ok {
			rows := make([]base.Row, 0, len(batch))
			for _, doc := range batch {
				if m, ok := doc.(map[string]interface{}); ok {
					rows = append(rows, m)
				} else {
					rows = append(rows, base.Row{"value": doc})
				}
			}
			return rows
		}
	}
	return []base.Row{converted}
}

// defaultDatabase extracts the database name from the connection URL path
func defaultDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
