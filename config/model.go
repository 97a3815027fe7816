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

// Package config holds the typed configuration model, the document parser,
// and the structural validator. A Model is immutable once validated; the
// runtime shares a single reference and hot reload swaps in a fresh one.
package config

import (
	"github.com/hyperterse/hyperterse/shared/types"
)

// DefaultPort is used when the document declares no server port
const DefaultPort = "8080"

// Model is the root of a validated configuration document
type Model struct {
	Name     string
	Adapters []Adapter
	Queries  []Query
	Server   *ServerConfig
	Export   map[string]interface{}
}

// Adapter declares a named backend and its connection URL. The URL has
// already had environment placeholders resolved and options appended.
type Adapter struct {
	Name      string
	Connector types.ConnectorKind
	URL       string
}

// Query declares a named statement template bound to an adapter
type Query struct {
	Name        string
	Adapter     string
	Statement   string
	Description string
	Inputs      []Input
}

// Input declares one typed parameter of a query
type Input struct {
	Name        string
	Type        types.Primitive
	Description string
	Required    bool
	Default     interface{}
	HasDefault  bool
}

// ServerConfig carries the optional server section of the document
type ServerConfig struct {
	Port     string
	LogLevel *int
	Pool     *PoolConfig
}

// PoolConfig sizes the SQL connection pools
type PoolConfig struct {
	MaxConnections     int
	MinConnections     int
	AcquireTimeoutSecs int
	IdleTimeoutSecs    int
	MaxLifetimeSecs    int
}

// DefaultPoolConfig returns the pool sizing used when the document declares none
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConnections:     10,
		MinConnections:     1,
		AcquireTimeoutSecs: 30,
		IdleTimeoutSecs:    600,
		MaxLifetimeSecs:    1800,
	}
}

// FindQuery returns the query with the given name, nil if absent
func (m *Model) FindQuery(name string) *Query {
	for i := range m.Queries {
		if m.Queries[i].Name == name {
			return &m.Queries[i]
		}
	}
	return nil
}

// FindAdapter returns the adapter with the given name, nil if absent
func (m *Model) FindAdapter(name string) *Adapter {
	for i := range m.Adapters {
		if m.Adapters[i].Name == name {
			return &m.Adapters[i]
		}
	}
	return nil
}

// Port returns the configured server port or DefaultPort
func (m *Model) Port() string {
	if m.Server != nil && m.Server.Port != "" {
		return m.Server.Port
	}
	return DefaultPort
}

// LogLevel returns the configured numeric verbosity, default 2 (info)
func (m *Model) LogLevel() int {
	if m.Server != nil && m.Server.LogLevel != nil {
		return *m.Server.LogLevel
	}
	return 2
}

// Pool returns the configured pool sizing merged over the defaults
func (m *Model) Pool() PoolConfig {
	pool := DefaultPoolConfig()
	if m.Server == nil || m.Server.Pool == nil {
		return pool
	}
	declared := m.Server.Pool
	if declared.MaxConnections > 0 {
		pool.MaxConnections = declared.MaxConnections
	}
	if declared.MinConnections > 0 {
		pool.MinConnections = declared.MinConnections
	}
	if declared.AcquireTimeoutSecs > 0 {
		pool.AcquireTimeoutSecs = declared.AcquireTimeoutSecs
	}
	if declared.IdleTimeoutSecs > 0 {
		pool.IdleTimeoutSecs = declared.IdleTimeoutSecs
	}
	if declared.MaxLifetimeSecs > 0 {
		pool.MaxLifetimeSecs = declared.MaxLifetimeSecs
	}
	return pool
}

// ApplyPortOverride sets the server port regardless of whether the document
// declared a server section
func (m *Model) ApplyPortOverride(port string) {
	if port == "" {
		return
	}
	if m.Server == nil {
		m.Server = &ServerConfig{}
	}
	m.Server.Port = port
}

// FindInput returns the declared input with the given name, nil if absent
func (q *Query) FindInput(name string) *Input {
	for i := range q.Inputs {
		if q.Inputs[i].Name == name {
			return &q.Inputs[i]
		}
	}
	return nil
}
