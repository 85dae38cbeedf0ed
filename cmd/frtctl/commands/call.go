package commands

import (
	"fmt"

	"github.com/marmos91/frtrpc/cmd/frtctl/cmdutil"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <method> [tag:value ...]",
	Short: "Invoke an arbitrary method with inline-typed arguments",
	Long: `call invokes method with zero or more scalar arguments, each given as
tag:value (the tag is the frt type-string character: b/h/i/l for unsigned
integer widths, f/d for float/double, s for string, x for hex-encoded
DATA). Arrays have no compact literal form and aren't supported here.

Examples:
  frtctl call frt.rpc.ping
  frtctl call frt.rpc.echo i:42 s:hello
  frtctl call add i:3 i:4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

func runCall(cmd *cobra.Command, args []string) error {
	target := cmdutil.GetTarget()
	defer target.SubRef()

	req := rpcrequest.New()
	req.SetMethodName(args[0])
	if err := cmdutil.ParseArgs(req.Params(), args[1:]); err != nil {
		return err
	}

	result := target.InvokeSync(req, cmdutil.Flags.Timeout)
	if result.IsError() {
		return fmt.Errorf("call failed: [%d] %s", result.ErrorCode(), result.ErrorMessage())
	}

	// The return Values container has no fixed schema to marshal against a
	// struct, so --output is ignored here: its own debug renderer is the
	// only representation that doesn't assume one.
	fmt.Print(result.Return().Print(0))
	return nil
}
