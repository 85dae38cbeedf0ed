// Package commands implements the frtctl CLI commands.
package commands

import (
	"os"
	"time"

	"github.com/marmos91/frtrpc/cmd/frtctl/cmdutil"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "frtctl",
	Short: "frtctl - ad-hoc client for an frt RPC endpoint",
	Long: `frtctl dials a running frt supervisor and issues one RPC call per
invocation: a liveness ping, method-list/method-info introspection, or an
arbitrary method call with inline-typed arguments.

Use "frtctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.Network, _ = cmd.Flags().GetString("network")
		cmdutil.Flags.Address, _ = cmd.Flags().GetString("address")
		cmdutil.Flags.Timeout, _ = cmd.Flags().GetDuration("timeout")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("network", "tcp", "dial network (tcp, tcp4, tcp6)")
	rootCmd.PersistentFlags().StringP("address", "a", "127.0.0.1:8001", "server address")
	rootCmd.PersistentFlags().DurationP("timeout", "t", 5*time.Second, "per-call timeout")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table|json|yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(callCmd)
}

// Exit prints an error to stderr and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}
