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

package redis

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/base"
	"github.com/hyperterse/hyperterse/shared/types"
)

func testConnector(t *testing.T) *Connector {
	t.Helper()
	mr := miniredis.RunT(t)
	conn, err := New(context.Background(), base.Config{
		Name: "cache",
		URL:  "redis://" + mr.Addr(),
		Pool: config.DefaultPoolConfig(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}

func TestExecuteSetGet(t *testing.T) {
	conn := testConnector(t)
	ctx := context.Background()

	rows, err := conn.Execute(ctx, "SET greeting hello")
	if err != nil {
		t.Fatalf("SET: %v", err)
	}
	if len(rows) != 1 || rows[0]["result"] != "OK" {
		t.Errorf("unexpected SET reply: %#v", rows)
	}

	rows, err = conn.Execute(ctx, "GET greeting")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if rows[0]["result"] != "hello" {
		t.Errorf("unexpected GET reply: %#v", rows)
	}
}

func TestExecuteQuotedArgument(t *testing.T) {
	conn := testConnector(t)
	ctx := context.Background()

	if _, err := conn.Execute(ctx, `SET greeting "hello world"`); err != nil {
		t.Fatalf("SET: %v", err)
	}
	rows, err := conn.Execute(ctx, "GET greeting")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if rows[0]["result"] != "hello world" {
		t.Errorf("quoted value lost: %#v", rows)
	}
}

func TestExecuteMissingKeyYieldsNull(t *testing.T) {
	conn := testConnector(t)

	rows, err := conn.Execute(context.Background(), "GET does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if rows[0]["result"] != nil {
		t.Errorf("expected nil result, got %#v", rows[0]["result"])
	}
}

func TestExecuteArrayReply(t *testing.T) {
	conn := testConnector(t)
	ctx := context.Background()

	for _, cmd := range []string{"RPUSH items a", "RPUSH items b"} {
		if _, err := conn.Execute(ctx, cmd); err != nil {
			t.Fatalf("%s: %v", cmd, err)
		}
	}
	rows, err := conn.Execute(ctx, "LRANGE items 0 -1")
	if err != nil {
		t.Fatalf("LRANGE: %v", err)
	}
	want := []interface{}{"a", "b"}
	if !reflect.DeepEqual(rows[0]["result"], want) {
		t.Errorf("unexpected array reply: %#v", rows[0]["result"])
	}
}

func TestExecuteEmptyCommand(t *testing.T) {
	conn := testConnector(t)
	if _, err := conn.Execute(context.Background(), "   "); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestKind(t *testing.T) {
	conn := &Connector{}
	if conn.Kind() != types.ConnectorRedis {
		t.Errorf("unexpected kind %s", conn.Kind())
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"GET key", []string{"GET", "key"}},
		{"SET k  v", []string{"SET", "k", "v"}},
		{`SET k "hello world"`, []string{"SET", "k", "hello world"}},
		{`SET k "say \"hi\""`, []string{"SET", "k", `say "hi"`}},
		{`SET k "back\\slash"`, []string{"SET", "k", `back\slash`}},
		{`SET k ""`, []string{"SET", "k", ""}},
		{"  GET  key  ", []string{"GET", "key"}},
	}
	for _, tc := range cases {
		got := tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("tokenize(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
