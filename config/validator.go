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
	"regexp"

	"github.com/hyperterse/hyperterse/hterrors"
)

// namePattern constrains adapter, query, and input names
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*([-_][a-z0-9]+)*$`)

// inputRefPattern finds {{ inputs.X }} tokens inside statements
var inputRefPattern = regexp.MustCompile(`\{\{\s*inputs\.([A-Za-z0-9_-]+)\s*\}\}`)

// Validate enforces the structural invariants of a parsed Model: legal and
// unique names, resolvable adapter references, declared input placeholders,
// and defaults that match their declared primitive. The first violation is
// reported.
func Validate(m *Model) error {
	if !namePattern.MatchString(m.Name) {
		return hterrors.Validation("invalid project name '%s'", m.Name)
	}

	seenAdapters := make(map[string]bool, len(m.Adapters))
	for _, adapter := range m.Adapters {
		if !namePattern.MatchString(adapter.Name) {
			return hterrors.Validation("invalid adapter name '%s'", adapter.Name)
		}
		if seenAdapters[adapter.Name] {
			return hterrors.Validation("duplicate adapter name '%s'", adapter.Name)
		}
		seenAdapters[adapter.Name] = true
		if !adapter.Connector.IsValid() {
			return hterrors.Validation("adapter '%s' has unknown connector '%s'", adapter.Name, adapter.Connector)
		}
	}

	seenQueries := make(map[string]bool, len(m.Queries))
	for _, query := range m.Queries {
		if !namePattern.MatchString(query.Name) {
			return hterrors.Validation("invalid query name '%s'", query.Name)
		}
		if seenQueries[query.Name] {
			return hterrors.Validation("duplicate query name '%s'", query.Name)
		}
		seenQueries[query.Name] = true

		if !seenAdapters[query.Adapter] {
			return hterrors.Validation("query '%s' references unknown adapter '%s'", query.Name, query.Adapter)
		}
		if query.Statement == "" {
			return hterrors.Validation("query '%s' has an empty statement", query.Name)
		}

		seenInputs := make(map[string]bool, len(query.Inputs))
		for _, input := range query.Inputs {
			if !namePattern.MatchString(input.Name) {
				return hterrors.Validation("invalid input name '%s' on query '%s'", input.Name, query.Name)
			}
			if seenInputs[input.Name] {
				return hterrors.Validation("duplicate input name '%s' on query '%s'", input.Name, query.Name)
			}
			seenInputs[input.Name] = true

			if !input.Type.IsValid() {
				return hterrors.Validation("input '%s' on query '%s' has unknown type '%s'", input.Name, query.Name, input.Type)
			}
			if !input.Required && !input.HasDefault {
				return hterrors.Validation("optional input '%s' on query '%s' has no default", input.Name, query.Name)
			}
			if input.HasDefault && !input.Type.Accepts(input.Default) {
				return hterrors.Validation("default for input '%s' on query '%s' does not match type %s", input.Name, query.Name, input.Type)
			}
		}

		// Every placeholder in the statement must name a declared input.
		// Declared inputs without a placeholder are permitted.
		for _, match := range inputRefPattern.FindAllStringSubmatch(query.Statement, -1) {
			if !seenInputs[match[1]] {
				return hterrors.Validation("query '%s' references undeclared input '%s'", query.Name, match[1])
			}
		}
	}

	return nil
}
