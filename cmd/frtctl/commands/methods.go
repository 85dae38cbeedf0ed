package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/frtrpc/cmd/frtctl/cmdutil"
	"github.com/marmos91/frtrpc/internal/frt/reflection"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the methods registered on the server",
	Long: `methods calls frt.rpc.getMethodList and prints every method name
alongside its parameter and return type specs.

Examples:
  frtctl methods -a 127.0.0.1:8001`,
	RunE: runMethods,
}

// methodList is the table/JSON/YAML rendering of frt.rpc.getMethodList's result.
type methodList struct {
	Names   []string `json:"names" yaml:"names"`
	Params  []string `json:"params" yaml:"params"`
	Returns []string `json:"returns" yaml:"returns"`
}

func (m methodList) Headers() []string { return []string{"METHOD", "PARAMS", "RETURNS"} }

func (m methodList) Rows() [][]string {
	rows := make([][]string, len(m.Names))
	for i, name := range m.Names {
		rows[i] = []string{name, m.Params[i], m.Returns[i]}
	}
	return rows
}

func runMethods(cmd *cobra.Command, args []string) error {
	target := cmdutil.GetTarget()
	defer target.SubRef()

	req := rpcrequest.New()
	req.SetMethodName(reflection.MethodGetMethodList)

	result := target.InvokeSync(req, cmdutil.Flags.Timeout)
	if result.IsError() {
		return fmt.Errorf("getMethodList failed: [%d] %s", result.ErrorCode(), result.ErrorMessage())
	}

	ret := result.Return()
	list := methodList{
		Names:   ret.StringArray(0),
		Params:  ret.StringArray(1),
		Returns: ret.StringArray(2),
	}

	return cmdutil.PrintOutput(os.Stdout, list, len(list.Names) == 0, "No methods registered.", list)
}
