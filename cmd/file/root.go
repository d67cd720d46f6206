package file

import (
	"github.com/ValentinKolb/fetchd/cmd/util"
	"github.com/ValentinKolb/fetchd/ftp/client"
	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/transport/tcp"
	"github.com/spf13/cobra"
)

var (
	fileClient client.IFileClient

	// FileCommands represents the file command group
	FileCommands = &cobra.Command{
		Use:               "file",
		Short:             "Retrieve listings and files from a file server",
		PersistentPreRunE: setupFileClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common client flags to the file command
	util.SetupClientFlags(FileCommands)

	// Add subcommands
	FileCommands.AddCommand(lsCmd)
	FileCommands.AddCommand(getCmd)
	FileCommands.AddCommand(shellCmd)
	FileCommands.AddCommand(perfTestCmd)
}

// setupFileClient initializes the file client
func setupFileClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration
	config := util.GetClientConfig()

	// Create the file client (validates the configuration)
	var err error
	fileClient, err = client.NewFileClient(
		*config,
		tcp.NewTCPClientConnector(),
	)
	if err != nil {
		return err
	}

	common.InitLoggers(config.LogLevel)
	return nil
}
