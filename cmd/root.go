package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/fetchd/cmd/file"
	"github.com/ValentinKolb/fetchd/cmd/serve"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "fetchd",
		Short: "minimal file retrieval service",
		Long: fmt.Sprintf(`fetchd (v%s)

A minimal remote file listing and retrieval service written in Go.
Commands and status tokens travel over a control connection, payloads
are delivered over a separately established data connection.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fetchd",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fetchd v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(file.FileCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
