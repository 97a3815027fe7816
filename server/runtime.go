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

// Package server exposes the validated model as HTTP endpoints and as MCP
// tools, and owns the runtime state that hot reload swaps.
package server

import (
	"context"
	"sync/atomic"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/connectors/manager"
	"github.com/hyperterse/hyperterse/executor"
	"github.com/hyperterse/hyperterse/shared/logger"
)

// State is one immutable runtime generation: a validated model, its
// initialized connector manager, and the executor over both
type State struct {
	Model    *config.Model
	Manager  *manager.Manager
	Executor *executor.Executor
}

// BuildState initializes connectors for a validated model and wires the
// executor. On connector failure the partially opened manager is discarded.
func BuildState(ctx context.Context, model *config.Model) (*State, error) {
	mgr := manager.New()
	if err := mgr.Initialize(ctx, model.Adapters, model.Pool()); err != nil {
		return nil, err
	}
	logger.SetVerbosity(model.LogLevel())
	return &State{
		Model:    model,
		Manager:  mgr,
		Executor: executor.New(model, mgr),
	}, nil
}

// Runtime hands out the current State to request handlers and swaps
// generations atomically during hot reload. Handlers capture one State on
// entry and never re-read it within a request.
type Runtime struct {
	current      atomic.Pointer[State]
	portOverride string
	configPath   string
}

// NewRuntime creates a Runtime serving the given initial state. portOverride
// is the startup --port flag, carried across reloads; configPath is the
// document the state was loaded from.
func NewRuntime(state *State, configPath, portOverride string) *Runtime {
	r := &Runtime{portOverride: portOverride, configPath: configPath}
	r.current.Store(state)
	return r
}

// State returns the current runtime generation
func (r *Runtime) State() *State {
	return r.current.Load()
}

// Swap installs the next generation and returns the superseded one
func (r *Runtime) Swap(next *State) *State {
	return r.current.Swap(next)
}

// PortOverride returns the startup port override, empty if none
func (r *Runtime) PortOverride() string {
	return r.portOverride
}

// ConfigPath returns the path of the loaded config document
func (r *Runtime) ConfigPath() string {
	return r.configPath
}
