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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/hterrors"
)

// mcpProtocolVersion is the MCP revision this transport implements
const mcpProtocolVersion = "2024-11-05"

// sessionHeader carries the session id on MCP requests and responses
const sessionHeader = "MCP-Session-Id"

// keepAliveInterval paces SSE comment lines
const keepAliveInterval = 15 * time.Second

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   json.RawMessage `json:"error"`
}

type jsonrpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *jsonrpcError `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// handleMcpPost dispatches one JSON-RPC 2.0 message
func (s *Server) handleMcpPost(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var msg jsonrpcMessage
	if err := dec.Decode(&msg); err != nil {
		sendJSONRPC(w, http.StatusBadRequest, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: codeParseError, Message: "Parse error"},
		})
		return
	}
	if msg.JSONRPC != "2.0" {
		sendJSONRPC(w, http.StatusBadRequest, jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   &jsonrpcError{Code: codeInvalidRequest, Message: "Invalid request: jsonrpc must be \"2.0\""},
		})
		return
	}

	// A response message from the client: acknowledge and discard
	if msg.Method == "" && (msg.Result != nil || msg.Error != nil) {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// A notification: acknowledge without a body
	if msg.Method != "" && msg.ID == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	promMcpRequestsTotal.WithLabelValues(msg.Method).Inc()

	switch msg.Method {
	case "initialize":
		s.mcpInitialize(w, msg)
	case "ping":
		sendJSONRPC(w, http.StatusOK, jsonrpcResponse{JSONRPC: "2.0", ID: msg.ID, Result: map[string]interface{}{}})
	case "tools/list":
		s.mcpToolsList(w, msg)
	case "tools/call":
		s.mcpToolsCall(w, r, msg)
	default:
		sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   &jsonrpcError{Code: codeMethodNotFound, Message: "Method not found"},
		})
	}
}

func (s *Server) mcpInitialize(w http.ResponseWriter, msg jsonrpcMessage) {
	session := s.sessions.Create()
	w.Header().Set(sessionHeader, session.ID)
	sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result: map[string]interface{}{
			"protocolVersion": mcpProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "hyperterse",
				"version": s.version,
			},
		},
	})
}

func (s *Server) mcpToolsList(w http.ResponseWriter, msg jsonrpcMessage) {
	model := s.runtime.State().Model

	tools := make([]map[string]interface{}, 0, len(model.Queries))
	for i := range model.Queries {
		query := &model.Queries[i]
		description := query.Description
		if description == "" {
			description = "Execute query " + query.Name
		}
		tools = append(tools, map[string]interface{}{
			"name":        query.Name,
			"description": description,
			"inputSchema": inputSchema(query),
		})
	}

	sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result:  map[string]interface{}{"tools": tools},
	})
}

func (s *Server) mcpToolsCall(w http.ResponseWriter, r *http.Request, msg jsonrpcMessage) {
	var params toolCallParams
	if msg.Params != nil {
		if err := unmarshalWithNumbers(msg.Params, &params); err != nil {
			sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
				JSONRPC: "2.0",
				ID:      msg.ID,
				Error:   &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params"},
			})
			return
		}
	}
	if params.Name == "" {
		sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   &jsonrpcError{Code: codeInvalidParams, Message: "Invalid params: tool name is required"},
		})
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state := s.runtime.State()
	start := time.Now()
	rows, err := state.Executor.Execute(ctx, params.Name, params.Arguments)
	promQueryDuration.WithLabelValues(params.Name).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		promQueriesTotal.WithLabelValues(params.Name, "error").Inc()
		s.logger.ErrorWithCause("", "tool call failed", err, map[string]interface{}{"tool": params.Name})
		// Tool failures travel as a JSON-RPC success with isError set,
		// per the MCP tool-error convention
		sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Result: map[string]interface{}{
				"content": []map[string]interface{}{
					{"type": "text", "text": "Error: " + hterrors.Sanitize(err)},
				},
				"isError": true,
			},
		})
		return
	}

	promQueriesTotal.WithLabelValues(params.Name, "success").Inc()
	if rows == nil {
		rows = []base.Row{}
	}
	pretty, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
			JSONRPC: "2.0",
			ID:      msg.ID,
			Error:   &jsonrpcError{Code: codeInternalError, Message: "Internal error"},
		})
		return
	}

	sendJSONRPC(w, http.StatusOK, jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(pretty)},
			},
		},
	})
}

// handleMcpGet opens a server-sent-event stream bound to a session. Without
// a session header an ephemeral session lives for the duration of the stream.
func (s *Server) handleMcpGet(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var session *Session
	ephemeral := false
	if id := r.Header.Get(sessionHeader); id != "" {
		if existing, found := s.sessions.Get(id); found {
			session = existing
		}
	}
	if session == nil {
		session = s.sessions.Create()
		ephemeral = true
	}
	if ephemeral {
		defer s.sessions.Delete(session.ID)
	}

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(sessionHeader, session.ID)
	w.WriteHeader(http.StatusOK)

	// Priming event: fresh id, empty data
	fmt.Fprintf(w, "id: %d\ndata: \n\n", session.NextEventID())
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case value, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(value)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\ndata: %s\n\n", session.NextEventID(), data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handleMcpDelete destroys the session named by the request header
func (s *Server) handleMcpDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("no session to terminate"))
		return
	}
	if !s.sessions.Delete(id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("session terminated"))
}

func unmarshalWithNumbers(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func sendJSONRPC(w http.ResponseWriter, statusCode int, resp jsonrpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
