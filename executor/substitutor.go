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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/hterrors"
	"github.com/hyperterse/hyperterse/shared/types"
)

// inputPattern matches {{ inputs.X }}. mongoInputPattern additionally matches
// the token wrapped in JSON string quotes, preferring the quoted form so Mongo
// statements do not double-quote string values. Both run as a single pass over
// the statement, so substituted values are never themselves rescanned.
var (
	inputPattern      = regexp.MustCompile(`\{\{\s*inputs\.([A-Za-z0-9_-]+)\s*\}\}`)
	mongoInputPattern = regexp.MustCompile(`"\{\{\s*inputs\.([A-Za-z0-9_-]+)\s*\}\}"|\{\{\s*inputs\.([A-Za-z0-9_-]+)\s*\}\}`)
)

// Substitute resolves a statement's placeholders for the target connector
// kind: environment placeholders first (missing is fatal at request time),
// then input placeholders with dialect-specific escaping. The escaping rules
// here are the single injection defense for substituted statements.
func Substitute(statement string, inputs map[string]interface{}, kind types.ConnectorKind) (string, error) {
	text, err := config.SubstituteEnv(statement, true)
	if err != nil {
		return "", err
	}

	var escape func(v interface{}) (string, error)
	switch {
	case kind.IsSQL():
		escape = escapeSQL
	case kind == types.ConnectorRedis:
		escape = escapeRedis
	default:
		escape = renderJSON
	}

	pattern := inputPattern
	if kind == types.ConnectorMongoDB {
		pattern = mongoInputPattern
	}

	var firstErr error
	text = pattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := pattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" && len(groups) > 2 {
			name = groups[2]
		}
		value, ok := inputs[name]
		if !ok {
			if firstErr == nil {
				firstErr = hterrors.MissingInput(name)
			}
			return match
		}
		escaped, err := escape(value)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return escaped
	})

	if firstErr != nil {
		return "", firstErr
	}
	return text, nil
}

// escapeSQL renders a value as a SQL literal: strings are single-quoted with
// embedded quotes doubled, arrays become parenthesized lists, objects become
// quoted JSON.
func escapeSQL(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case string:
		return quoteSQL(val), nil
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			escaped, err := escapeSQL(elem)
			if err != nil {
				return "", err
			}
			parts[i] = escaped
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case map[string]interface{}:
		serialized, err := renderJSON(val)
		if err != nil {
			return "", err
		}
		return quoteSQL(serialized), nil
	default:
		if s, ok := formatNumber(v); ok {
			return s, nil
		}
		serialized, err := renderJSON(v)
		if err != nil {
			return "", err
		}
		return quoteSQL(serialized), nil
	}
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeRedis renders a value as a command-line token. Strings containing
// whitespace or quote characters are double-quoted with backslash escapes;
// containers travel as double-quoted JSON.
func escapeRedis(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case string:
		if strings.ContainsAny(val, " \t\n\r\"'") {
			return quoteRedis(val), nil
		}
		return val, nil
	case []interface{}, map[string]interface{}:
		serialized, err := renderJSON(val)
		if err != nil {
			return "", err
		}
		return quoteRedis(serialized), nil
	default:
		if s, ok := formatNumber(v); ok {
			return s, nil
		}
		serialized, err := renderJSON(v)
		if err != nil {
			return "", err
		}
		return quoteRedis(serialized), nil
	}
}

func quoteRedis(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// renderJSON serializes a value to its canonical JSON form
func renderJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", hterrors.Template("failed to serialize input value", err)
	}
	return string(data), nil
}

// formatNumber renders numeric values as decimal literals without exponent
// notation
func formatNumber(v interface{}) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case int:
		return strconv.Itoa(n), true
	case int8, int16, int32:
		return fmt.Sprintf("%d", n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint, uint8, uint16, uint32:
		return fmt.Sprintf("%d", n), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}
