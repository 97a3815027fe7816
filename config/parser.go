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

package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/types"
)

// Wire shapes of the document. Adapters, queries, and inputs are declared as
// maps keyed by name; they are decoded through yaml.Node so that document
// order is preserved and duplicate keys remain visible to the validator.
type document struct {
	Name     string                 `yaml:"name"`
	Adapters yaml.Node              `yaml:"adapters"`
	Queries  yaml.Node              `yaml:"queries"`
	Server   *serverDoc             `yaml:"server"`
	Export   map[string]interface{} `yaml:"export"`
}

type adapterDoc struct {
	Connector        string                 `yaml:"connector"`
	ConnectionString string                 `yaml:"connection_string"`
	Options          map[string]interface{} `yaml:"options"`
}

type queryDoc struct {
	Use         string    `yaml:"use"`
	Statement   string    `yaml:"statement"`
	Description string    `yaml:"description"`
	Inputs      yaml.Node `yaml:"inputs"`
}

type inputDoc struct {
	Type        string     `yaml:"type"`
	Description string     `yaml:"description"`
	Optional    bool       `yaml:"optional"`
	Default     *yaml.Node `yaml:"default"`
}

type serverDoc struct {
	Port     *yaml.Node `yaml:"port"`
	LogLevel *int       `yaml:"log_level"`
	Pool     *poolDoc   `yaml:"pool"`
}

type poolDoc struct {
	MaxConnections     int `yaml:"max_connections"`
	MinConnections     int `yaml:"min_connections"`
	AcquireTimeoutSecs int `yaml:"acquire_timeout_secs"`
	IdleTimeoutSecs    int `yaml:"idle_timeout_secs"`
	MaxLifetimeSecs    int `yaml:"max_lifetime_secs"`
}

// Load reads, parses, and validates the document at path. Environment
// placeholders are resolved strictly.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hterrors.Config("failed to read config file "+path, err)
	}
	model, err := Parse(data, true)
	if err != nil {
		return nil, err
	}
	if err := Validate(model); err != nil {
		return nil, err
	}
	return model, nil
}

// Parse decodes a raw document into a Model. Environment placeholders are
// resolved first; strict controls whether a missing variable is fatal.
// The result is not yet validated.
func Parse(data []byte, strict bool) (*Model, error) {
	text, err := SubstituteEnv(string(data), strict)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, hterrors.Config("failed to parse config document", err)
	}
	if doc.Name == "" {
		return nil, hterrors.Config("config document is missing a project name", nil)
	}

	model := &Model{Name: doc.Name, Export: doc.Export}

	if err := eachMapEntry(&doc.Adapters, func(name string, node *yaml.Node) error {
		var ad adapterDoc
		if err := node.Decode(&ad); err != nil {
			return hterrors.Config("invalid adapter '"+name+"'", err)
		}
		if ad.ConnectionString == "" {
			return hterrors.Config("adapter '"+name+"' is missing a connection_string", nil)
		}
		model.Adapters = append(model.Adapters, Adapter{
			Name:      name,
			Connector: types.ConnectorKind(ad.Connector),
			URL:       appendOptions(ad.ConnectionString, ad.Options),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachMapEntry(&doc.Queries, func(name string, node *yaml.Node) error {
		var qd queryDoc
		if err := node.Decode(&qd); err != nil {
			return hterrors.Config("invalid query '"+name+"'", err)
		}
		if qd.Use == "" {
			return hterrors.Config("query '"+name+"' is missing an adapter reference ('use')", nil)
		}
		query := Query{
			Name:        name,
			Adapter:     qd.Use,
			Statement:   qd.Statement,
			Description: qd.Description,
		}
		if err := eachMapEntry(&qd.Inputs, func(inputName string, inputNode *yaml.Node) error {
			var id inputDoc
			if err := inputNode.Decode(&id); err != nil {
				return hterrors.Config("invalid input '"+inputName+"' on query '"+name+"'", err)
			}
			input := Input{
				Name:        inputName,
				Type:        types.Primitive(id.Type),
				Description: id.Description,
				Required:    !id.Optional,
			}
			if id.Default != nil {
				var v interface{}
				if err := id.Default.Decode(&v); err != nil {
					return hterrors.Config("invalid default for input '"+inputName+"' on query '"+name+"'", err)
				}
				input.Default = v
				input.HasDefault = true
			}
			query.Inputs = append(query.Inputs, input)
			return nil
		}); err != nil {
			return err
		}
		model.Queries = append(model.Queries, query)
		return nil
	}); err != nil {
		return nil, err
	}

	if doc.Server != nil {
		server := &ServerConfig{}
		if doc.Server.Port != nil {
			// Accept both a bare integer and a quoted string
			var port string
			if err := doc.Server.Port.Decode(&port); err != nil {
				return nil, hterrors.Config("invalid server port", err)
			}
			server.Port = port
		}
		server.LogLevel = doc.Server.LogLevel
		if doc.Server.Pool != nil {
			server.Pool = &PoolConfig{
				MaxConnections:     doc.Server.Pool.MaxConnections,
				MinConnections:     doc.Server.Pool.MinConnections,
				AcquireTimeoutSecs: doc.Server.Pool.AcquireTimeoutSecs,
				IdleTimeoutSecs:    doc.Server.Pool.IdleTimeoutSecs,
				MaxLifetimeSecs:    doc.Server.Pool.MaxLifetimeSecs,
			}
		}
		model.Server = server
	}

	return model, nil
}

// eachMapEntry walks a YAML mapping node in document order. Duplicate keys
// are visited once per occurrence.
func eachMapEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return hterrors.Config("expected a mapping, got "+node.Tag, nil)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// appendOptions joins adapter options onto the connection URL as query
// parameters. Keys are sorted so the resulting DSN is deterministic.
func appendOptions(url string, options map[string]interface{}) string {
	if len(options) == 0 {
		return url
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, options[k]))
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(pairs, "&")
}
