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
	"fmt"
	"net/http"
	"strings"
)

// handleLlmsTxt serves a plain-text enumeration of the queries with their
// descriptions and endpoint paths
func (s *Server) handleLlmsTxt(w http.ResponseWriter, r *http.Request) {
	state := s.runtime.State()
	model := state.Model

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", model.Name)
	b.WriteString("Declarative query gateway. Each query is exposed as POST /query/{name} and as an MCP tool.\n\n")
	b.WriteString("## Queries\n\n")
	for _, query := range model.Queries {
		fmt.Fprintf(&b, "- POST /query/%s", query.Name)
		if query.Description != "" {
			fmt.Fprintf(&b, " - %s", query.Description)
		}
		b.WriteString("\n")
		for _, input := range query.Inputs {
			optional := ""
			if !input.Required {
				optional = ", optional"
			}
			fmt.Fprintf(&b, "  - input %s (%s%s)", input.Name, input.Type, optional)
			if input.Description != "" {
				fmt.Fprintf(&b, ": %s", input.Description)
			}
			b.WriteString("\n")
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
