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

// Package types provides shared type definitions used across hyperterse
// components. This file defines the primitive types an input may declare.
package types

// Primitive represents the declared type of a query input
type Primitive string

const (
	PrimitiveString   Primitive = "string"
	PrimitiveInt      Primitive = "int"
	PrimitiveFloat    Primitive = "float"
	PrimitiveBoolean  Primitive = "boolean"
	PrimitiveUUID     Primitive = "uuid"
	PrimitiveDatetime Primitive = "datetime"
)

// String returns the string representation of the Primitive
func (p Primitive) String() string {
	return string(p)
}

// IsValid returns true if the Primitive is a valid known value
func (p Primitive) IsValid() bool {
	switch p {
	case PrimitiveString, PrimitiveInt, PrimitiveFloat, PrimitiveBoolean, PrimitiveUUID, PrimitiveDatetime:
		return true
	default:
		return false
	}
}

// SchemaType returns the JSON Schema / OpenAPI type and format pair for the
// primitive. Format is empty where the schema carries no format.
func (p Primitive) SchemaType() (string, string) {
	switch p {
	case PrimitiveInt:
		return "integer", "int64"
	case PrimitiveFloat:
		return "number", "double"
	case PrimitiveBoolean:
		return "boolean", ""
	case PrimitiveUUID:
		return "string", "uuid"
	case PrimitiveDatetime:
		return "string", "date-time"
	default:
		return "string", ""
	}
}
