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

package types

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// datetimeLayoutSpace is the second accepted datetime shape besides RFC 3339
const datetimeLayoutSpace = "2006-01-02 15:04:05"

// Accepts reports whether a decoded JSON or YAML value matches the primitive.
// Callers decode JSON bodies with UseNumber, so numbers arrive as json.Number;
// YAML defaults arrive as native int/float64/bool/string. Both shapes are
// accepted.
func (p Primitive) Accepts(v interface{}) bool {
	switch p {
	case PrimitiveString:
		_, ok := v.(string)
		return ok
	case PrimitiveBoolean:
		_, ok := v.(bool)
		return ok
	case PrimitiveInt:
		return isInteger(v)
	case PrimitiveFloat:
		return isNumber(v)
	case PrimitiveUUID:
		s, ok := v.(string)
		if !ok || len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	case PrimitiveDatetime:
		s, ok := v.(string)
		if !ok {
			return false
		}
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return true
		}
		_, err := time.Parse(datetimeLayoutSpace, s)
		return err == nil
	default:
		return false
	}
}

func isInteger(v interface{}) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		// uint64 range above MaxInt64
		_, err := strconv.ParseUint(n.String(), 10, 64)
		return err == nil
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0) && !math.IsNaN(n)
	default:
		return false
	}
}

func isNumber(v interface{}) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	default:
		return false
	}
}
