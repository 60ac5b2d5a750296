package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"securejoin/internal/app"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return errPassphraseRequired
			}
			fp, err := app.NewIdentityService(cfg).FingerprintIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
