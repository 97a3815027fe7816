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
	"encoding/json"
	"log"
	"net/http"
)

// handleDocs serves an OpenAPI 3.0 document generated from the model: one
// POST operation per query with its inputs as a JSON-Schema object.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	state := s.runtime.State()
	model := state.Model

	paths := make(map[string]interface{}, len(model.Queries))
	for i := range model.Queries {
		query := &model.Queries[i]
		summary := query.Description
		if summary == "" {
			summary = "Execute query " + query.Name
		}
		paths["/query/"+query.Name] = map[string]interface{}{
			"post": map[string]interface{}{
				"operationId": query.Name,
				"summary":     summary,
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"inputs": inputSchema(query),
								},
							},
						},
					},
				},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Query results",
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"success": map[string]interface{}{"type": "boolean"},
										"error":   map[string]interface{}{"type": "string"},
										"results": map[string]interface{}{
											"type":  "array",
											"items": map[string]interface{}{"type": "object"},
										},
									},
								},
							},
						},
					},
				},
			},
		}
	}

	doc := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   model.Name,
			"version": s.version,
		},
		"paths": paths,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
