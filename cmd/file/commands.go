package file

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ValentinKolb/fetchd/cmd/util"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "Lists the files the server serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := fileClient.ListNames()
			if err != nil {
				return err
			}

			// Plain output for scripting, one name per line
			if plain, _ := cmd.Flags().GetBool("plain"); plain {
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			}

			if len(names) == 0 {
				fmt.Println("the server serves no files")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Name"})
			table.SetBorder(false)
			for i, name := range names {
				table.Append([]string{strconv.Itoa(i + 1), name})
			}
			table.Render()

			fmt.Printf("\n%d file(s)\n", len(names))
			return nil
		},
	}

	getCmd = &cobra.Command{
		Use:   "get [name]",
		Short: "Retrieves a file from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			data, err := fileClient.Get(name)
			if err != nil {
				return err
			}

			// The file is stored under its remote name unless --output is given
			target, _ := cmd.Flags().GetString("output")
			if target == "" {
				target = name
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", target)
				}
			}

			if err := os.WriteFile(target, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %v", target, err)
			}

			color.Green("received %s (%d bytes) -> %s", name, len(data), target)
			return nil
		},
	}
)

func init() {
	lsCmd.Flags().Bool("plain", false, util.WrapString("Print one file name per line without table formatting"))

	getCmd.Flags().String("output", "", util.WrapString("Local path to store the retrieved file at (default: the remote name)"))
	getCmd.Flags().Bool("force", false, util.WrapString("Overwrite the local file if it already exists"))
}
