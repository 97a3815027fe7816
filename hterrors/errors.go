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

// Package hterrors defines the error taxonomy shared by the parser, the
// executor, and the protocol surfaces, together with the HTTP status mapping
// and the sanitization rules applied at the public boundary.
package hterrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping and sanitization
type Kind string

const (
	KindConfig           Kind = "config"
	KindValidation       Kind = "validation"
	KindEnvVarNotFound   Kind = "env_var_not_found"
	KindQueryNotFound    Kind = "query_not_found"
	KindAdapterNotFound  Kind = "adapter_not_found"
	KindMissingInput     Kind = "missing_input"
	KindInvalidInputType Kind = "invalid_input_type"
	KindTemplate         Kind = "template"
	KindDatabase         Kind = "database"
	KindServer           Kind = "server"
)

// Error carries a classified failure across component boundaries
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error with an underlying cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Config reports a document that failed to parse or is structurally invalid
func Config(message string, cause error) *Error {
	return Wrap(KindConfig, message, cause)
}

// Validation reports a document that violates a model invariant
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// EnvVarNotFound reports an unresolved {{ env.NAME }} placeholder
func EnvVarNotFound(name string) *Error {
	return New(KindEnvVarNotFound, "Environment variable not found: "+name)
}

// QueryNotFound reports a request naming no known query
func QueryNotFound(name string) *Error {
	return New(KindQueryNotFound, "Query not found: "+name)
}

// AdapterNotFound reports a reference to a missing adapter
func AdapterNotFound(name string) *Error {
	return New(KindAdapterNotFound, "Adapter not found: "+name)
}

// MissingInput reports a required input absent from the call
func MissingInput(name string) *Error {
	return New(KindMissingInput, "Missing required input: "+name)
}

// InvalidInputType reports a caller value that does not match the declared primitive
func InvalidInputType(name, expected string) *Error {
	return New(KindInvalidInputType, fmt.Sprintf("Invalid input type for '%s': expected %s", name, expected))
}

// Template reports substitution producing unserializable output
func Template(message string, cause error) *Error {
	return Wrap(KindTemplate, message, cause)
}

// Database reports a backend failure
func Database(message string, cause error) *Error {
	return Wrap(KindDatabase, message, cause)
}

// KindOf extracts the Kind from an error chain, KindServer if unclassified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// StatusCode maps an error to the HTTP status the public surface returns
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindQueryNotFound, KindAdapterNotFound:
		return http.StatusNotFound
	case KindValidation, KindMissingInput, KindInvalidInputType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sanitize returns the message safe to expose to clients. Not-found and
// validation classes keep their identifiers; backend and internal errors are
// collapsed to a class-level string so connection strings and driver detail
// cannot leak.
func Sanitize(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error"
	}
	switch e.Kind {
	case KindQueryNotFound, KindAdapterNotFound, KindValidation, KindMissingInput, KindInvalidInputType:
		return e.Message
	case KindDatabase:
		return "Database connection error"
	default:
		return "Internal server error"
	}
}
