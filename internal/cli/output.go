package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// emit writes v as indented JSON in --json mode and calls human otherwise.
func (a *app) emit(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if a.flags.jsonMode {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return sysError("marshal JSON", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	human(w)
	return nil
}

// stamp renders epoch milliseconds in local time.
func stamp(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func printChat(w io.Writer, c *types.Chat) {
	pin := " "
	if c.IsPinned {
		pin = "*"
	}
	fmt.Fprintf(w, "%s %s  %s  (%s)\n", pin, c.ChatID, c.Title, stamp(c.UpdatedAt))
}

func printChats(w io.Writer, chats []*types.Chat) {
	if len(chats) == 0 {
		fmt.Fprintln(w, "no chats")
		return
	}
	for _, c := range chats {
		printChat(w, c)
	}
}

func printFolder(w io.Writer, f *types.Folder) {
	fmt.Fprintf(w, "%3d  %s  %s\n", f.Order, f.FolderID, f.Name)
}

func printFolders(w io.Writer, folders []*types.Folder) {
	if len(folders) == 0 {
		fmt.Fprintln(w, "no folders")
		return
	}
	for _, f := range folders {
		printFolder(w, f)
	}
}

func printMessage(w io.Writer, m *types.Message) {
	fmt.Fprintf(w, "[%s] %s: %s\n", stamp(m.Timestamp), m.Role, m.Content)
}
