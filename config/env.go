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
	"os"
	"regexp"

	"github.com/hyperterse/hyperterse/hterrors"
)

// envPattern matches {{ env.NAME }} with optional whitespace inside the braces
var envPattern = regexp.MustCompile(`\{\{\s*env\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// SubstituteEnv replaces every {{ env.NAME }} placeholder in text with the
// value of the named process environment variable. In strict mode a missing
// variable is an error; otherwise the placeholder is left in place.
func SubstituteEnv(text string, strict bool) (string, error) {
	var missing string
	out := envPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return match
		}
		return value
	})
	if strict && missing != "" {
		return "", hterrors.EnvVarNotFound(missing)
	}
	return out, nil
}
