package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func contactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contacts",
		Short: "List known contacts and their key verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWire()
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := cmd.Context()
			list, err := w.Contacts.ListContacts(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tADDRESS\tNAME\tORIGIN\tVERIFIED")
			for _, c := range list {
				verified := "-"
				ps, ok, err := w.Peers.LoadPeerStateByAddr(ctx, c.Addr)
				if err != nil {
					return err
				}
				if ok && ps.VerifiedKeyFingerprint != "" {
					verified = ps.VerifiedKeyFingerprint.Short()
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Addr, c.Name, c.Origin, verified)
			}
			return tw.Flush()
		},
	}
}
