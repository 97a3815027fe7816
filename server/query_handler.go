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
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/hterrors"
)

// requestTimeout bounds one query or tool call
const requestTimeout = 30 * time.Second

type queryRequest struct {
	Inputs map[string]interface{} `json:"inputs"`
}

// queryEnvelope is the fixed response shape of the query endpoint
type queryEnvelope struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Results []base.Row `json:"results"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	state := s.runtime.State()
	name := mux.Vars(r)["name"]

	inputs, err := decodeInputs(r.Body)
	if err != nil {
		sendEnvelope(w, http.StatusBadRequest, queryEnvelope{
			Success: false,
			Error:   "Invalid request body",
			Results: []base.Row{},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	rows, err := state.Executor.Execute(ctx, name, inputs)
	promQueryDuration.WithLabelValues(name).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		promQueriesTotal.WithLabelValues(name, "error").Inc()
		s.logger.ErrorWithCause("", "query failed", err, map[string]interface{}{"query": name})
		sendEnvelope(w, hterrors.StatusCode(err), queryEnvelope{
			Success: false,
			Error:   hterrors.Sanitize(err),
			Results: []base.Row{},
		})
		return
	}

	promQueriesTotal.WithLabelValues(name, "success").Inc()
	if rows == nil {
		rows = []base.Row{}
	}
	sendEnvelope(w, http.StatusOK, queryEnvelope{
		Success: true,
		Error:   "",
		Results: rows,
	})
}

// decodeInputs reads the request body's inputs map. Numbers are preserved as
// json.Number so integer literals substitute without float formatting. An
// empty body means no inputs.
func decodeInputs(body io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var req queryRequest
	if err := dec.Decode(&req); err != nil {
		if err == io.EOF {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}
	if req.Inputs == nil {
		req.Inputs = map[string]interface{}{}
	}
	return req.Inputs, nil
}

func sendEnvelope(w http.ResponseWriter, statusCode int, envelope queryEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
