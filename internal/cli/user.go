package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

func (a *app) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(a.newUserSyncCmd())
	return cmd
}

func (a *app) newUserSyncCmd() *cobra.Command {
	var id types.Identity
	var avatar string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Record a signed-in identity, creating the user on first sight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if avatar != "" {
				id.AvatarURL = &avatar
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			defer s.close()

			u, created, err := s.mgr.SyncUser(cmd.Context(), id)
			if err != nil {
				return managerError(err)
			}
			return a.emit(cmd, map[string]any{"user": u, "created": created}, func(w io.Writer) {
				verb := "existing"
				if created {
					verb = "created"
				}
				fmt.Fprintf(w, "%s user %s (%s)\n", verb, u.UserID, u.Email)
			})
		},
	}
	cmd.Flags().StringVar(&id.ExternalID, "external-id", "", "identity provider subject (required)")
	cmd.Flags().StringVar(&id.Email, "email", "", "email address")
	cmd.Flags().StringVar(&id.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	return cmd
}
