package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/frtrpc/cmd/frtctl/cmdutil"
	"github.com/marmos91/frtrpc/internal/cli/output"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <method>",
	Short: "Show a single method's description, specs, and parameter/return names",
	Long: `describe calls frt.rpc.getMethodInfo for the named method.

Examples:
  frtctl describe frt.rpc.echo -a 127.0.0.1:8001`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

type methodInfo struct {
	Method      string   `json:"method" yaml:"method"`
	Description string   `json:"description" yaml:"description"`
	ParamSpec   string   `json:"param_spec" yaml:"param_spec"`
	ReturnSpec  string   `json:"return_spec" yaml:"return_spec"`
	ParamNames  []string `json:"param_names" yaml:"param_names"`
	ReturnNames []string `json:"return_names" yaml:"return_names"`
}

func runDescribe(cmd *cobra.Command, args []string) error {
	target := cmdutil.GetTarget()
	defer target.SubRef()

	req := rpcrequest.New()
	req.SetMethodName(reflection.MethodGetMethodInfo)
	req.Params().AddString(args[0])

	result := target.InvokeSync(req, cmdutil.Flags.Timeout)
	if result.IsError() {
		return fmt.Errorf("getMethodInfo failed: [%d] %s", result.ErrorCode(), result.ErrorMessage())
	}

	ret := result.Return()
	info := methodInfo{
		Method:      args[0],
		Description: ret.String(0),
		ParamSpec:   ret.String(1),
		ReturnSpec:  ret.String(2),
		ParamNames:  ret.StringArray(3),
		ReturnNames: ret.StringArray(5),
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	default:
		fmt.Printf("%s\n", info.Method)
		fmt.Printf("  description: %s\n", info.Description)
		fmt.Printf("  params:      %s %v\n", info.ParamSpec, info.ParamNames)
		fmt.Printf("  returns:     %s %v\n", info.ReturnSpec, info.ReturnNames)
		return nil
	}
}
