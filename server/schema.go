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
	"github.com/hyperterse/hyperterse/config"
)

// inputSchema builds the JSON-Schema object describing a query's inputs.
// Shared by the OpenAPI document and the MCP tools/list response.
func inputSchema(query *config.Query) map[string]interface{} {
	properties := make(map[string]interface{}, len(query.Inputs))
	required := make([]string, 0, len(query.Inputs))

	for _, input := range query.Inputs {
		schemaType, format := input.Type.SchemaType()
		prop := map[string]interface{}{"type": schemaType}
		if format != "" {
			prop["format"] = format
		}
		if input.Description != "" {
			prop["description"] = input.Description
		}
		if input.HasDefault {
			prop["default"] = input.Default
		}
		properties[input.Name] = prop
		if input.Required {
			required = append(required, input.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
