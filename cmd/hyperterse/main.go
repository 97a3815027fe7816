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

// Command hyperterse runs the declarative query gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperterse/hyperterse/config"
	"github.com/hyperterse/hyperterse/server"
)

// version is overridden at build time via -ldflags
var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "hyperterse",
		Short:         "Declarative query gateway over SQL, Redis, and MongoDB backends",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newRunCmd(), newDevCmd(), newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Serve the queries declared in the config document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(args[0], port, false, 0)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "override the server port")
	return cmd
}

func newDevCmd() *cobra.Command {
	var port string
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "dev <config>",
		Short: "Serve with hot reload on config changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(args[0], port, true, debounce)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "override the server port")
	cmd.Flags().DurationVar(&debounce, "debounce", server.DefaultDebounce, "quiet window before a change triggers a reload")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Parse and validate a config document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d adapter(s), %d query(ies)\n",
				args[0], len(model.Adapters), len(model.Queries))
			return nil
		},
	}
}

func serve(configPath, port string, watch bool, debounce time.Duration) error {
	model, err := config.Load(configPath)
	if err != nil {
		return err
	}
	model.ApplyPortOverride(port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := server.BuildState(ctx, model)
	if err != nil {
		return err
	}

	runtime := server.NewRuntime(state, configPath, port)
	srv := server.New(runtime, version)

	if watch {
		controller := server.NewReloadController(runtime, debounce)
		go func() {
			if err := controller.Watch(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "config watcher stopped: %v\n", err)
			}
		}()
	}

	return srv.Run(ctx)
}
