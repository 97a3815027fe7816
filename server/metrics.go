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

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	promQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperterse_queries_total",
			Help: "Total number of query executions",
		},
		[]string{"query", "status"},
	)
	promQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hyperterse_query_duration_milliseconds",
			Help:    "Query execution duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
		},
		[]string{"query"},
	)
	promMcpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperterse_mcp_requests_total",
			Help: "Total number of MCP JSON-RPC requests",
		},
		[]string{"method"},
	)
	promSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hyperterse_mcp_sessions_active",
			Help: "Number of live MCP sessions",
		},
	)
	promReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyperterse_config_reloads_total",
			Help: "Total number of hot reload attempts",
		},
		[]string{"status"},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(promQueriesTotal)
	prometheus.MustRegister(promQueryDuration)
	prometheus.MustRegister(promMcpRequestsTotal)
	prometheus.MustRegister(promSessionsActive)
	prometheus.MustRegister(promReloadsTotal)
}
