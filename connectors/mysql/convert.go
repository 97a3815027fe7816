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

package mysql

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// convertValue maps a scanned column value to its JSON representation. The
// MySQL text protocol delivers most columns as []byte, so conversion parses
// from the driver's reported type name. Unknown types fall back to a
// best-effort string; NULL reads stay nil.
func convertValue(val interface{}, dbType string) interface{} {
	if val == nil {
		return nil
	}

	switch dbType {
	case "BOOLEAN", "BOOL":
		switch v := val.(type) {
		case bool:
			return v
		case int64:
			return v != 0
		case []byte:
			return string(v) == "1" || string(v) == "true"
		}
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT",
		"UNSIGNED TINYINT", "UNSIGNED SMALLINT", "UNSIGNED MEDIUMINT", "UNSIGNED INT", "UNSIGNED BIGINT":
		switch v := val.(type) {
		case int64:
			return v
		case uint64:
			return v
		case []byte:
			if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
				return n
			}
		}
	case "FLOAT", "DOUBLE":
		var f float64
		switch v := val.(type) {
		case float64:
			f = v
		case []byte:
			parsed, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return string(v)
			}
			f = parsed
		default:
			return asString(val)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case "DATETIME", "TIMESTAMP":
		switch v := val.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339)
		case []byte:
			if t, err := time.Parse("2006-01-02 15:04:05", string(v)); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	case "DATE":
		switch v := val.(type) {
		case time.Time:
			return v.Format("2006-01-02")
		case []byte:
			return string(v)
		}
	case "JSON":
		var raw []byte
		switch v := val.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		}
		if raw != nil {
			var decoded interface{}
			if err := json.Unmarshal(raw, &decoded); err == nil {
				return decoded
			}
		}
	}

	return asString(val)
}

func asString(val interface{}) interface{} {
	switch v := val.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return val
	}
}
