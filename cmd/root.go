package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dictd/cmd/serve"
	"github.com/ValentinKolb/dictd/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command
	RootCmd = NewRootCmd()
)

func init() {
	cobra.OnInitialize(util.InitConfig)
}

// NewRootCmd creates the dictd command with all flags and subcommands
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dictd <port>",
		Short: "concurrent dictionary lookup server",
		Long: fmt.Sprintf(`dictd (v%s)

A TCP server answering word queries from a partitioned dictionary.
Every message a client sends is one query; the answer is the definitions
of the word (at most two per category) or NOENTRY.

All flags can be set as environment variables DICTD_<FLAG> (e.g. DICTD_WORKERS=8).`, Version),
		Args:    serve.ParsePort,
		PreRunE: serve.ProcessConfig,
		RunE:    serve.Run,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &util.ExitError{Code: util.ExitCodeUsage, Err: err}
	})

	serve.AddFlags(root)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of dictd",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dictd v%s\n", Version)
		},
	})

	return root
}

// Execute runs the root command and exits with the matching exit code.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	os.Exit(util.ExitCode(RootCmd.Execute()))
}
