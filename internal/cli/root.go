// Package cli implements the chatkeep command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	owner     string
	jsonMode  bool
	verbose   bool
}

// app carries the state of one command-line invocation.
type app struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "chatkeep" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "chatkeep",
		Short: "Chat history and title engine for an AI roadmap assistant",
		Long: "chatkeep stores users, folders, chats, and messages, titles chats\n" +
			"from their first exchange, and organizes them for a sidebar.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	pf.StringVar(&a.flags.owner, "owner", "", "id of the user to act as (env CHATKEEP_OWNER)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log operations to stderr")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newServeCmd(),
		a.newUserCmd(),
		a.newChatCmd(),
		a.newFolderCmd(),
		a.newSidebarCmd(),
		a.newTitleCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}
