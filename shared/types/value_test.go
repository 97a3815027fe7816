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
	"testing"
)

func TestAcceptsInt(t *testing.T) {
	if !PrimitiveInt.Accepts(json.Number("50")) {
		t.Error("json integer should be accepted as int")
	}
	if !PrimitiveInt.Accepts(json.Number("18446744073709551615")) {
		t.Error("uint64 range should be accepted as int")
	}
	if PrimitiveInt.Accepts(json.Number("50.5")) {
		t.Error("fractional number should be rejected as int")
	}
	if PrimitiveInt.Accepts("fifty") {
		t.Error("string should be rejected as int")
	}
	if !PrimitiveInt.Accepts(10) {
		t.Error("native int (yaml default) should be accepted")
	}
}

func TestAcceptsFloat(t *testing.T) {
	if !PrimitiveFloat.Accepts(json.Number("3.14")) {
		t.Error("number should be accepted as float")
	}
	if !PrimitiveFloat.Accepts(json.Number("3")) {
		t.Error("integer should be accepted as float")
	}
	if PrimitiveFloat.Accepts("3.14") {
		t.Error("string should be rejected as float")
	}
}

func TestAcceptsStringAndBoolean(t *testing.T) {
	if !PrimitiveString.Accepts("hello") {
		t.Error("string should be accepted")
	}
	if PrimitiveString.Accepts(json.Number("1")) {
		t.Error("number should be rejected as string")
	}
	if !PrimitiveBoolean.Accepts(true) {
		t.Error("bool should be accepted")
	}
	if PrimitiveBoolean.Accepts("true") {
		t.Error("string should be rejected as boolean")
	}
}

func TestAcceptsUUID(t *testing.T) {
	if !PrimitiveUUID.Accepts("6ba7b810-9dad-11d1-80b4-00c04fd430c8") {
		t.Error("canonical uuid should be accepted")
	}
	if PrimitiveUUID.Accepts("6ba7b8109dad11d180b400c04fd430c8") {
		t.Error("non-canonical uuid should be rejected")
	}
	if PrimitiveUUID.Accepts("not-a-uuid") {
		t.Error("garbage should be rejected")
	}
}

func TestAcceptsDatetime(t *testing.T) {
	if !PrimitiveDatetime.Accepts("2025-06-01T12:30:00Z") {
		t.Error("RFC 3339 should be accepted")
	}
	if !PrimitiveDatetime.Accepts("2025-06-01 12:30:00") {
		t.Error("space-separated layout should be accepted")
	}
	if PrimitiveDatetime.Accepts("June 1st 2025") {
		t.Error("free-form date should be rejected")
	}
}

func TestSchemaType(t *testing.T) {
	cases := []struct {
		primitive  Primitive
		schemaType string
		format     string
	}{
		{PrimitiveInt, "integer", "int64"},
		{PrimitiveFloat, "number", "double"},
		{PrimitiveBoolean, "boolean", ""},
		{PrimitiveUUID, "string", "uuid"},
		{PrimitiveDatetime, "string", "date-time"},
		{PrimitiveString, "string", ""},
	}
	for _, tc := range cases {
		st, format := tc.primitive.SchemaType()
		if st != tc.schemaType || format != tc.format {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tc.primitive, st, format, tc.schemaType, tc.format)
		}
	}
}
