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
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/hyperterse/hyperterse/shared/logger"
)

// shutdownTimeout bounds the drain of in-flight requests on shutdown
const shutdownTimeout = 30 * time.Second

// Server serves the query endpoints and the MCP transport over one runtime
type Server struct {
	runtime  *Runtime
	sessions *SessionStore
	version  string
	logger   *logger.Logger
}

// New creates a Server over the given runtime
func New(runtime *Runtime, version string) *Server {
	return &Server{
		runtime:  runtime,
		sessions: NewSessionStore(),
		version:  version,
		logger:   logger.New("server"),
	}
}

// Sessions returns the MCP session store
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Handler builds the router with permissive CORS
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{sessionHeader},
	})

	// Health check
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Documentation
	r.HandleFunc("/docs", s.handleDocs).Methods("GET")
	r.HandleFunc("/llms.txt", s.handleLlmsTxt).Methods("GET")

	// Query endpoint
	r.HandleFunc("/query/{name}", s.handleQuery).Methods("POST")

	// MCP transport
	r.HandleFunc("/mcp", s.handleMcpPost).Methods("POST")
	r.HandleFunc("/mcp", s.handleMcpGet).Methods("GET")
	r.HandleFunc("/mcp", s.handleMcpDelete).Methods("DELETE")

	return c.Handler(r)
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// closes all connectors. Connector close errors are logged, not fatal.
func (s *Server) Run(ctx context.Context) error {
	port := s.runtime.State().Model.Port()

	// No WriteTimeout: SSE streams are long-lived
	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("", "server started", map[string]interface{}{
		"port":    port,
		"version": s.version,
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("", "shutting down", nil)
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(drainCtx); err != nil {
		s.logger.ErrorWithCause("", "shutdown did not complete cleanly", err, nil)
	}

	if err := s.runtime.State().Manager.CloseAll(context.Background()); err != nil {
		s.logger.ErrorWithCause("", "failed to close connectors", err, nil)
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
