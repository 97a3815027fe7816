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

// Package executor orchestrates a query call: input validation, template
// substitution, and dispatch to the adapter's connector.
package executor

import (
	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/hterrors"
)

// ValidateInputs checks caller-supplied values against the query's declared
// inputs and applies defaults for absent optional ones. Undeclared keys are
// preserved without type checking; substitution only resolves declared
// placeholders, so they are harmless.
func ValidateInputs(query *config.Query, supplied map[string]interface{}) (map[string]interface{}, error) {
	validated := make(map[string]interface{}, len(supplied)+len(query.Inputs))
	for k, v := range supplied {
		validated[k] = v
	}

	for _, input := range query.Inputs {
		value, ok := supplied[input.Name]
		if !ok {
			if input.Required {
				return nil, hterrors.MissingInput(input.Name)
			}
			validated[input.Name] = input.Default
			continue
		}
		if !input.Type.Accepts(value) {
			return nil, hterrors.InvalidInputType(input.Name, input.Type.String())
		}
	}
	return validated, nil
}
