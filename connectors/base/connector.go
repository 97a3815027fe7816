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

// Package base defines the interface every backend connector implements and
// the error type connectors report through.
package base

import (
	"context"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/shared/types"
)

// Row is one result record: column or field name to JSON-compatible value
type Row = map[string]interface{}

// Connector is the uniform surface over the supported backends. Statements
// arrive fully substituted; Execute runs them and materializes rows.
type Connector interface {
	Execute(ctx context.Context, statement string) ([]Row, error)
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
	Kind() types.ConnectorKind
}

// Config holds everything a connector needs to open its backend
type Config struct {
	Name string
	URL  string
	Pool config.PoolConfig
}

// ConnectorError represents errors specific to connector operations
type ConnectorError struct {
	ConnectorName string
	Operation     string
	Message       string
	Cause         error
}

func (e *ConnectorError) Error() string {
	if e.Cause != nil {
		return e.ConnectorName + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.ConnectorName + "." + e.Operation + ": " + e.Message
}

func (e *ConnectorError) Unwrap() error {
	return e.Cause
}

// NewConnectorError creates a new ConnectorError
func NewConnectorError(connectorName, operation, message string, cause error) *ConnectorError {
	return &ConnectorError{
		ConnectorName: connectorName,
		Operation:     operation,
		Message:       message,
		Cause:         cause,
	}
}
