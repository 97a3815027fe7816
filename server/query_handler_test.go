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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/hyperterse/connectors/base"
)

func postQuery(t *testing.T, srv *Server, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query/"+name, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestQuerySuccess(t *testing.T) {
	fake := &fakeConnector{rows: []base.Row{{"id": float64(1), "name": "alice"}}}
	srv := newTestServer(t, fake)

	rec := postQuery(t, srv, "lookup", `{"inputs":{"name":"alice"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope queryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Empty(t, envelope.Error)
	require.Len(t, envelope.Results, 1)
	assert.Equal(t, "alice", envelope.Results[0]["name"])

	assert.Equal(t, `SELECT * FROM users WHERE name = 'alice'`, fake.statements[0])
}

func TestQueryAppliesDefault(t *testing.T) {
	fake := &fakeConnector{}
	srv := newTestServer(t, fake)

	rec := postQuery(t, srv, "list", `{"inputs":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT * FROM users LIMIT 10", fake.statements[0])

	rec = postQuery(t, srv, "list", `{"inputs":{"limit":50}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT * FROM users LIMIT 50", fake.statements[1])
}

func TestQueryValidationError(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := postQuery(t, srv, "list", `{"inputs":{"limit":"fifty"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"Invalid input type for 'limit': expected int","results":[]}`,
		rec.Body.String())
}

func TestQueryMissingRequiredInput(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := postQuery(t, srv, "lookup", `{"inputs":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope queryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Missing required input: name", envelope.Error)
	assert.NotNil(t, envelope.Results)
}

func TestQueryNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := postQuery(t, srv, "nope", `{"inputs":{}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope queryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Query not found: nope", envelope.Error)
}

func TestQueryBackendErrorIsSanitized(t *testing.T) {
	fake := &fakeConnector{err: errBackendDown}
	srv := newTestServer(t, fake)

	rec := postQuery(t, srv, "list", `{"inputs":{}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope queryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Database connection error", envelope.Error)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestQueryEmptyBodyMeansNoInputs(t *testing.T) {
	fake := &fakeConnector{}
	srv := newTestServer(t, fake)

	rec := postQuery(t, srv, "list", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT * FROM users LIMIT 10", fake.statements[0])
}

func TestQueryInvalidBody(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := postQuery(t, srv, "list", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope queryEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestDocsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	paths := doc["paths"].(map[string]interface{})
	require.Contains(t, paths, "/query/lookup")
	require.Contains(t, paths, "/query/list")

	post := paths["/query/list"].(map[string]interface{})["post"].(map[string]interface{})
	schema := post["requestBody"].(map[string]interface{})["content"].(map[string]interface{})["application/json"].(map[string]interface{})["schema"].(map[string]interface{})
	inputs := schema["properties"].(map[string]interface{})["inputs"].(map[string]interface{})
	limit := inputs["properties"].(map[string]interface{})["limit"].(map[string]interface{})
	assert.Equal(t, "integer", limit["type"])
	assert.Equal(t, "int64", limit["format"])
}

func TestLlmsTxtEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeConnector{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/llms.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST /query/lookup")
	assert.Contains(t, rec.Body.String(), "Find a user by name")
}
