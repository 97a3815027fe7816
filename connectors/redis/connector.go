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

// Package redis implements the Redis connector. Statements are command
// lines: the first token is the command, the remainder its arguments.
package redis

import (
	"context"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/shared/logger"
	"github.com/hyperterse/hyperterse/shared/types"
)

// Connector executes substituted command lines against a Redis server
type Connector struct {
	name   string
	client *goredis.Client
	logger *logger.Logger
}

// New connects to Redis and verifies the connection with a ping
func New(ctx context.Context, cfg base.Config) (*Connector, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, base.NewConnectorError(cfg.Name, "Connect", "invalid connection URL", err)
	}
	opts.PoolSize = cfg.Pool.MaxConnections
	opts.MinIdleConns = cfg.Pool.MinConnections
	opts.IdleTimeout = time.Duration(cfg.Pool.IdleTimeoutSecs) * time.Second
	opts.MaxConnAge = time.Duration(cfg.Pool.MaxLifetimeSecs) * time.Second

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Pool.AcquireTimeoutSecs)*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, base.NewConnectorError(cfg.Name, "Connect", "failed to ping redis", err)
	}

	return &Connector{
		name:   cfg.Name,
		client: client,
		logger: logger.New("connector.redis"),
	}, nil
}

// Execute tokenizes the command line and dispatches it through the generic
// command path. The reply is shaped as a single row keyed "result".
func (c *Connector) Execute(ctx context.Context, statement string) ([]base.Row, error) {
	tokens := tokenize(statement)
	if len(tokens) == 0 {
		return nil, base.NewConnectorError(c.name, "Execute", "empty command", nil)
	}

	args := make([]interface{}, len(tokens))
	for i, t := range tokens {
		args[i] = t
	}

	start := time.Now()
	reply, err := c.client.Do(ctx, args...).Result()
	if err != nil {
		if err == goredis.Nil {
			reply = nil
		} else {
			return nil, base.NewConnectorError(c.name, "Execute", "command failed", err)
		}
	}

	c.logger.Debug("", "command executed", map[string]interface{}{
		"adapter":     c.name,
		"command":     tokens[0],
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return []base.Row{{"result": convertReply(reply)}}, nil
}

// HealthCheck verifies the connection is alive
func (c *Connector) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return base.NewConnectorError(c.name, "HealthCheck", "ping failed", err)
	}
	return nil
}

// Close releases the client
func (c *Connector) Close(ctx context.Context) error {
	if err := c.client.Close(); err != nil {
		return base.NewConnectorError(c.name, "Close", "failed to close client", err)
	}
	return nil
}

// Kind returns the connector kind
func (c *Connector) Kind() types.ConnectorKind {
	return types.ConnectorRedis
}

// convertReply recursively converts a Redis reply to JSON-compatible values
func convertReply(reply interface{}) interface{} {
	switch v := reply.(type) {
	case nil:
		return nil
	case string:
		return v
	case int64:
		return v
	case []byte:
		return string(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = convertReply(e)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = convertReply(e)
		}
		return out
	default:
		return v
	}
}

// tokenize splits a command line on whitespace, honoring double-quoted
// tokens with \\ and \" escapes so substituted string values stay intact.
func tokenize(statement string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	escaped := false
	hasToken := false

	for _, r := range statement {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case inQuotes && r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			if hasToken || current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(r)
		}
	}
	if hasToken || current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
