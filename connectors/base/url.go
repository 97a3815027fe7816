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
	"fmt"
	"net/url"
	"strings"

	"github.com/hyperterse/hyperterse/shared/types"
)

// connectorSchemes maps each backend to the URL schemes its driver accepts.
// MySQL is absent: go-sql-driver takes a DSN, not a URL.
var connectorSchemes = map[types.ConnectorKind][]string{
	types.ConnectorPostgres: {"postgres", "postgresql"},
	types.ConnectorRedis:    {"redis", "rediss"},
	types.ConnectorMongoDB:  {"mongodb", "mongodb+srv"},
}

// ValidateURL checks that a connection string is plausible for the given
// backend before a connector attempts to dial it. It catches the common
// misconfiguration of pasting one backend's URL under another's adapter.
func ValidateURL(kind types.ConnectorKind, rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("connection string is empty")
	}

	schemes, ok := connectorSchemes[kind]
	if !ok {
		// DSN-style connection strings carry no scheme to check
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("connection string scheme %q is not valid for %s (expected %s)",
		parsed.Scheme, kind, strings.Join(schemes, " or "))
}
