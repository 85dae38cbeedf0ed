package commands

import (
	"fmt"

	"github.com/marmos91/frtrpc/cmd/frtctl/cmdutil"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the server is reachable and responding",
	Long: `ping sends frt.rpc.ping and reports round-trip latency.

Examples:
  frtctl ping -a 127.0.0.1:8001`,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	target := cmdutil.GetTarget()
	defer target.SubRef()

	req := rpcrequest.New()
	req.SetMethodName(reflection.MethodPing)

	result := target.InvokeSync(req, cmdutil.Flags.Timeout)
	if result.IsError() {
		return fmt.Errorf("ping failed: [%d] %s", result.ErrorCode(), result.ErrorMessage())
	}

	fmt.Println("pong")
	return nil
}
