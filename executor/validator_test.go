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

package executor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/types"
)

func listQuery() *config.Query {
	return &config.Query{
		Name:      "list",
		Adapter:   "db",
		Statement: "SELECT * FROM users LIMIT {{ inputs.limit }}",
		Inputs: []config.Input{
			{Name: "limit", Type: types.PrimitiveInt, Required: false, Default: 10, HasDefault: true},
		},
	}
}

func TestValidateInputsAppliesDefault(t *testing.T) {
	validated, err := ValidateInputs(listQuery(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 10, validated["limit"])
}

func TestValidateInputsKeepsSupplied(t *testing.T) {
	validated, err := ValidateInputs(listQuery(), map[string]interface{}{"limit": json.Number("50")})
	require.NoError(t, err)
	assert.Equal(t, json.Number("50"), validated["limit"])
}

func TestValidateInputsMissingRequired(t *testing.T) {
	query := &config.Query{
		Name: "lookup",
		Inputs: []config.Input{
			{Name: "name", Type: types.PrimitiveString, Required: true},
		},
	}
	_, err := ValidateInputs(query, map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, hterrors.KindMissingInput, hterrors.KindOf(err))
	assert.Equal(t, "Missing required input: name", err.Error())
}

func TestValidateInputsTypeMismatch(t *testing.T) {
	_, err := ValidateInputs(listQuery(), map[string]interface{}{"limit": "fifty"})
	require.Error(t, err)
	assert.Equal(t, hterrors.KindInvalidInputType, hterrors.KindOf(err))
	assert.Equal(t, "Invalid input type for 'limit': expected int", err.Error())
}

func TestValidateInputsPreservesUndeclaredKeys(t *testing.T) {
	validated, err := ValidateInputs(listQuery(), map[string]interface{}{
		"limit": json.Number("5"),
		"extra": "anything at all",
	})
	require.NoError(t, err)
	assert.Equal(t, "anything at all", validated["extra"])
}
