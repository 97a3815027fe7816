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

// ConnectorKind identifies which backend family an adapter speaks to
type ConnectorKind string

const (
	ConnectorPostgres ConnectorKind = "postgres"
	ConnectorMySQL    ConnectorKind = "mysql"
	ConnectorRedis    ConnectorKind = "redis"
	ConnectorMongoDB  ConnectorKind = "mongodb"
)

// String returns the string representation of the ConnectorKind
func (k ConnectorKind) String() string {
	return string(k)
}

// IsValid returns true if the ConnectorKind is a valid known value
func (k ConnectorKind) IsValid() bool {
	switch k {
	case ConnectorPostgres, ConnectorMySQL, ConnectorRedis, ConnectorMongoDB:
		return true
	default:
		return false
	}
}

// IsSQL returns true for connector kinds that speak a SQL dialect and share
// the single-quote escaping rules
func (k ConnectorKind) IsSQL() bool {
	return k == ConnectorPostgres || k == ConnectorMySQL
}
