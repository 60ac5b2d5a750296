package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"securejoin/internal/domain"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the handshake in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWire()
			if err != nil {
				return err
			}
			defer w.Close()

			state, err := w.Join.Status(cmd.Context())
			if err != nil {
				return err
			}
			if state == nil {
				fmt.Println("No handshake in progress.")
				return nil
			}
			inv := state.Invite()
			kind := "contact"
			if g, ok := inv.(domain.GroupInvite); ok {
				kind = fmt.Sprintf("group %q (%s)", g.GroupName, g.Group)
			}
			fmt.Printf("Handshake %d\n  joining:     %s\n  fingerprint: %s\n  chat:        %d\n  next:        %s\n",
				state.ID(), kind, inv.Fingerprint(), state.ChatID(), state.Next())
			return nil
		},
	}
}
