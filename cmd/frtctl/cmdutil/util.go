package cmdutil

import (
	"fmt"
	"io"
	"time"

	"github.com/marmos91/frtrpc/internal/cli/output"
	"github.com/marmos91/frtrpc/internal/frt/client"
	"github.com/marmos91/frtrpc/internal/frt/supervisor"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values shared by every frtctl command.
type GlobalFlags struct {
	Network string
	Address string
	Timeout time.Duration
	Output  string
}

// GetTarget dials a Target at Flags.Network/Flags.Address. Each frtctl
// invocation is short-lived, so there's no supervisor to share and no
// reflection methods to register on this side; a bare Supervisor is
// constructed only to borrow its GetTarget/reflection-free dialer.
func GetTarget() *client.Target {
	sup := supervisor.New(0, nil)
	return sup.GetTarget(Flags.Network, Flags.Address, Flags.Timeout)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// PrintOutput prints data in the configured format. For table format, it
// prints emptyMsg if isEmpty, otherwise renders tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}
