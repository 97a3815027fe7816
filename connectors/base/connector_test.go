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

package base

import (
	"errors"
	"testing"
)

func TestConnectorError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *ConnectorError
		wantMsg string
	}{
		{
			name: "with cause",
			err: &ConnectorError{
				ConnectorName: "postgres",
				Operation:     "Execute",
				Message:       "connection failed",
				Cause:         errors.New("network timeout"),
			},
			wantMsg: "postgres.Execute: connection failed (cause: network timeout)",
		},
		{
			name: "without cause",
			err: &ConnectorError{
				ConnectorName: "redis",
				Operation:     "HealthCheck",
				Message:       "ping failed",
			},
			wantMsg: "redis.HealthCheck: ping failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConnectorError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectorError("mongodb", "Execute", "command failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}

	var connErr *ConnectorError
	if !errors.As(error(err), &connErr) {
		t.Fatal("errors.As should match *ConnectorError")
	}
	if connErr.ConnectorName != "mongodb" {
		t.Errorf("unexpected connector name %q", connErr.ConnectorName)
	}
}
