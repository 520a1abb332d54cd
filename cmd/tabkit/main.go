// Command tabkit runs the table operations over CSV and Arrow files.
//
//	tabkit merge --on id invoices.csv payments.csv
//	tabkit verify --column-values id,date ledger.csv
//	tabkit trim --which leading readings.csv value
//
// Results go to stdout (or --output) as CSV, JSON or an Arrow IPC stream.
// Logs go to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/logging"
)

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "tabkit",
		Short:         "Combine, check and clean tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringSlice("index", nil, "columns to use as the index of every input")
	pf.Bool("infer", false, "infer numeric and date columns after reading CSV")
	pf.String("delim", ",", "CSV field delimiter")
	pf.StringP("format", "f", "csv", "output format: csv, json or arrow")
	pf.StringP("output", "o", "", "output file (default: stdout)")
	pf.Int("max-shown", 10, "entries listed in duplicate reports")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolP("quiet", "q", false, "silence status output")

	addCommands(root, c)
	return root
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "%s\n", core.FormatUserError(err))
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cli is the state shared by every command.
type cli struct {
	service *core.Service
}

func (c *cli) init(cmd *cobra.Command) {
	level, _ := cmd.Flags().GetString("log-level")
	maxShown, _ := cmd.Flags().GetInt("max-shown")
	logging.SetupWriter(cmd.ErrOrStderr(), level, "text")
	c.service = core.NewService(core.Options{MaxShown: maxShown}, nil)
}
