package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}
	cmd.AddCommand(
		a.newFolderCreateCmd(),
		a.newFolderRenameCmd(),
		a.newFolderReorderCmd(),
		a.newFolderDeleteCmd(),
		a.newFolderListCmd(),
	)
	return cmd
}

func (a *app) newFolderCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>...",
		Short: "Create a folder after the existing ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				f, err := s.mgr.CreateFolder(cmd.Context(), owner, strings.Join(args, " "))
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, f, func(w io.Writer) { printFolder(w, f) })
			})
		},
	}
}

func (a *app) newFolderRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder-id> <name>...",
		Short: "Rename a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				f, err := s.mgr.RenameFolder(cmd.Context(), owner, args[0], strings.Join(args[1:], " "))
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, f, func(w io.Writer) { printFolder(w, f) })
			})
		},
	}
}

func (a *app) newFolderReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <folder-id>...",
		Short: "Put folders in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				folders, err := s.mgr.ReorderFolders(cmd.Context(), owner, args)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, folders, func(w io.Writer) { printFolders(w, folders) })
			})
		},
	}
}

func (a *app) newFolderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder; its chats become unfiled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				n, err := s.mgr.DeleteFolder(cmd.Context(), owner, args[0])
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, map[string]any{"deleted": args[0], "detached": n}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted folder %s (%d chats unfiled)\n", args[0], n)
				})
			})
		},
	}
}

func (a *app) newFolderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List folders in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				folders, err := s.mgr.ListFolders(cmd.Context(), owner)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, folders, func(w io.Writer) { printFolders(w, folders) })
			})
		},
	}
}
