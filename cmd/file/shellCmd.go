package file

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell for browsing a file server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sh := &shell{cacheTimeout: 15 * time.Second}

		fmt.Println("Type 'help' for a list of commands, 'exit' to leave.")
		p := prompt.New(
			sh.execute,
			sh.complete,
			prompt.OptionTitle("fetchd shell"),
			prompt.OptionPrefix("fetchd> "),
			prompt.OptionPrefixTextColor(prompt.Cyan),
		)
		p.Run()
		return nil
	},
}

// shell dispatches the interactive commands and caches the remote file
// names for completion
type shell struct {
	remoteNames  []string
	lastUpdate   time.Time
	cacheTimeout time.Duration
}

var shellCommands = []prompt.Suggest{
	{Text: "ls", Description: "List files on the server"},
	{Text: "get", Description: "Retrieve a file from the server"},
	{Text: "help", Description: "Show available commands"},
	{Text: "exit", Description: "Leave the shell"},
}

// execute runs one line entered at the prompt
func (sh *shell) execute(line string) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case "ls":
		names, err := fileClient.ListNames()
		if err != nil {
			color.Red("ls failed: %v", err)
			return
		}
		sh.updateCache(names)
		for _, name := range names {
			fmt.Println(name)
		}
		fmt.Printf("%d file(s)\n", len(names))

	case "get":
		if len(words) != 2 {
			color.Red("usage: get <name>")
			return
		}
		name := words[1]
		data, err := fileClient.Get(name)
		if err != nil {
			color.Red("get failed: %v", err)
			return
		}
		if err := os.WriteFile(name, data, 0644); err != nil {
			color.Red("failed to write %s: %v", name, err)
			return
		}
		color.Green("received %s (%d bytes)", name, len(data))

	case "help":
		for _, cmd := range shellCommands {
			fmt.Printf("  %-8s%s\n", cmd.Text, cmd.Description)
		}

	case "exit", "quit":
		os.Exit(0)

	default:
		color.Red("unknown command %q (try 'help')", words[0])
	}
}

// complete suggests commands and, for get, the cached remote file names
func (sh *shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	// Completing the command itself
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return prompt.FilterHasPrefix(shellCommands, d.GetWordBeforeCursor(), true)
	}

	// Completing the filename argument of get
	if words[0] == "get" {
		if time.Since(sh.lastUpdate) > sh.cacheTimeout {
			sh.refreshCache()
		}

		suggestions := make([]prompt.Suggest, 0, len(sh.remoteNames))
		for _, name := range sh.remoteNames {
			suggestions = append(suggestions, prompt.Suggest{Text: name, Description: "Remote file"})
		}
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
	}

	return nil
}

// updateCache stores the remote names for completion
func (sh *shell) updateCache(names []string) {
	sh.remoteNames = names
	sh.lastUpdate = time.Now()
}

// refreshCache fetches a fresh listing, keeping the old cache on failure
func (sh *shell) refreshCache() {
	names, err := fileClient.ListNames()
	if err != nil {
		return
	}
	sh.updateCache(names)
}
