package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/pkg/sidebar"
	"github.com/mesh-intelligence/chatkeep/pkg/title"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func (a *app) newSidebarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sidebar",
		Short: "Show chats grouped for the sidebar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				groups, err := s.mgr.Sidebar(cmd.Context(), owner)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, groups, func(w io.Writer) { printSidebar(w, groups) })
			})
		},
	}
}

// printSidebar prints the non-empty sections in display order.
func printSidebar(w io.Writer, g sidebar.Groups) {
	section := func(name string, chats []*types.Chat) {
		if len(chats) == 0 {
			return
		}
		fmt.Fprintf(w, "%s\n", name)
		for _, c := range chats {
			fmt.Fprint(w, "  ")
			printChat(w, c)
		}
	}
	section("Pinned", g.Pinned)
	for _, fg := range g.Folders {
		fmt.Fprintf(w, "%s/\n", fg.Folder.Name)
		for _, c := range fg.Chats {
			fmt.Fprint(w, "  ")
			printChat(w, c)
		}
	}
	section(sidebar.BucketToday, g.Today)
	section(sidebar.BucketYesterday, g.Yesterday)
	section(sidebar.BucketLast7Days, g.Last7Days)
	section(sidebar.BucketOlder, g.Older)
}

func (a *app) newTitleCmd() *cobra.Command {
	var assistant string
	cmd := &cobra.Command{
		Use:   "title <user-text>...",
		Short: "Preview the title chatkeep would give a chat",
		Long: "Print the title derived from a first message, or from a first exchange\n" +
			"when --assistant is given. Nothing is stored.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := map[string]string{"strategy": metrics.StrategyFirstMessage}
			if strings.TrimSpace(assistant) == "" {
				out["title"] = title.FromFirstMessage(text)
			} else {
				out["title"] = title.FromExchange(text, assistant)
				out["strategy"] = metrics.StrategyExchange
			}
			return a.emit(cmd, out, func(w io.Writer) { fmt.Fprintln(w, out["title"]) })
		},
	}
	cmd.Flags().StringVar(&assistant, "assistant", "", "first assistant reply")
	return cmd
}
