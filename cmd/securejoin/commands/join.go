package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func joinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <OPENPGP4FPR:...>",
		Short: "Start joining the contact or group behind an invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWire()
			if err != nil {
				return err
			}
			defer w.Close()
			events, cancel := w.Events.Subscribe()
			defer cancel()

			state, stage, err := w.Join.Join(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEvents(events)
			fmt.Printf("Handshake %d: %s (next: %s)\n", state.ID(), stage, state.Next())
			return nil
		},
	}
}
