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

package mongodb

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseCommand decodes a JSON statement into an ordered command document.
// Key order matters: the server requires the command name to be the first
// element, so decoding goes through a token walk into bson.D rather than a
// map. A top-level "database" string is extracted and removed.
func parseCommand(statement string) (bson.D, string, error) {
	dec := json.NewDecoder(strings.NewReader(statement))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, "", err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, "", errors.New("statement must be a JSON object")
	}

	doc, err := decodeDocument(dec)
	if err != nil {
		return nil, "", err
	}

	var database string
	filtered := make(bson.D, 0, len(doc))
	for _, elem := range doc {
		if elem.Key == "database" {
			s, ok := elem.Value.(string)
			if !ok {
				return nil, "", errors.New("'database' must be a string")
			}
			database = s
			continue
		}
		filtered = append(filtered, elem)
	}
	return filtered, database, nil
}

func decodeDocument(dec *json.Decoder) (bson.D, error) {
	var doc bson.D
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		doc = append(doc, bson.E{Key: key, Value: value})
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeDocument(dec)
		case '[':
			var arr bson.A
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			// consume closing ']'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if arr == nil {
				arr = bson.A{}
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool, or nil
		return t, nil
	}
}

// convertBSON recursively converts BSON values to JSON-compatible values
func convertBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, elem := range val {
			out[elem.Key] = convertBSON(elem.Value)
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, e := range val {
			out[k] = convertBSON(e)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = convertBSON(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = convertBSON(e)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return val.String()
	case primitive.Binary:
		return fmt.Sprintf("%x", val.Data)
	case primitive.Null:
		return nil
	default:
		return v
	}
}
