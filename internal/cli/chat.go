package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/pkg/conversation"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func (a *app) newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start, read, and manage chats",
	}
	cmd.AddCommand(
		a.newChatStartCmd(),
		a.newChatNewCmd(),
		a.newChatAppendCmd(),
		a.newChatShowCmd(),
		a.newChatListCmd(),
		a.newChatUpdateCmd(),
		a.newChatDeleteCmd(),
	)
	return cmd
}

// withOwner opens a session, resolves the owner, and runs fn.
func (a *app) withOwner(fn func(s *session, owner string) error) error {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.close()
	owner, err := a.owner(s)
	if err != nil {
		return err
	}
	return fn(s, owner)
}

// optional returns nil for an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a *app) newChatStartCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "start <message>...",
		Short: "Start a chat with its first message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				chat, err := s.mgr.StartChat(cmd.Context(), owner, strings.Join(args, " "), optional(folder))
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, chat, func(w io.Writer) { printChat(w, chat) })
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "file the chat under this folder id")
	return cmd
}

func (a *app) newChatNewCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				chat, err := s.mgr.NewChat(cmd.Context(), owner, optional(folder))
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, chat, func(w io.Writer) { printChat(w, chat) })
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "file the chat under this folder id")
	return cmd
}

func (a *app) newChatAppendCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "append <chat-id> <message>...",
		Short: "Append a message to a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				out, err := s.mgr.AppendMessage(cmd.Context(), owner, args[0], strings.Join(args[1:], " "), role)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, out, func(w io.Writer) {
					printMessage(w, out.Message)
					if out.Retitled {
						fmt.Fprintf(w, "retitled: %s\n", out.Chat.Title)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", types.RoleUser, "message role (user or assistant)")
	return cmd
}

// chatTranscript is a chat with its messages.
type chatTranscript struct {
	Chat     *types.Chat      `json:"chat"`
	Messages []*types.Message `json:"messages"`
}

func (a *app) newChatShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Show a chat and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				chat, err := s.mgr.GetChat(cmd.Context(), owner, args[0])
				if err != nil {
					return managerError(err)
				}
				msgs, err := s.mgr.ListMessages(cmd.Context(), owner, args[0])
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, chatTranscript{Chat: chat, Messages: msgs}, func(w io.Writer) {
					printChat(w, chat)
					for _, m := range msgs {
						printMessage(w, m)
					}
				})
			})
		},
	}
}

func (a *app) newChatListCmd() *cobra.Command {
	var folder string
	var pinned bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := conversation.ChatQuery{FolderID: optional(folder)}
			if cmd.Flags().Changed("pinned") {
				q.Pinned = &pinned
			}
			return a.withOwner(func(s *session, owner string) error {
				chats, err := s.mgr.ListChats(cmd.Context(), owner, q)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, chats, func(w io.Writer) { printChats(w, chats) })
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "only chats in this folder")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned (or, with --pinned=false, unpinned) chats")
	return cmd
}

func (a *app) newChatUpdateCmd() *cobra.Command {
	var title, folder string
	var unfile, pin, unpin bool
	cmd := &cobra.Command{
		Use:   "update <chat-id>",
		Short: "Rename, file, or pin a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pin && unpin {
				return userError(errors.New("--pin and --unpin are mutually exclusive"))
			}
			var upd types.ChatUpdate
			if cmd.Flags().Changed("title") {
				upd.Title = &title
			}
			upd.FolderID = optional(folder)
			upd.ClearFolder = unfile
			switch {
			case pin:
				upd.IsPinned = &pin
			case unpin:
				upd.IsPinned = new(bool)
			}
			return a.withOwner(func(s *session, owner string) error {
				chat, err := s.mgr.UpdateChat(cmd.Context(), owner, args[0], upd)
				if err != nil {
					return managerError(err)
				}
				return a.emit(cmd, chat, func(w io.Writer) { printChat(w, chat) })
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&folder, "folder", "", "file under this folder id")
	cmd.Flags().BoolVar(&unfile, "unfile", false, "remove the chat from its folder")
	cmd.Flags().BoolVar(&pin, "pin", false, "pin the chat")
	cmd.Flags().BoolVar(&unpin, "unpin", false, "unpin the chat")
	return cmd
}

func (a *app) newChatDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat and all of its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOwner(func(s *session, owner string) error {
				if err := s.mgr.DeleteChat(cmd.Context(), owner, args[0]); err != nil {
					return managerError(err)
				}
				return a.emit(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted chat %s\n", args[0])
				})
			})
		},
	}
}
