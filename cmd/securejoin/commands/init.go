package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"securejoin/internal/app"
)

var errPassphraseRequired = errors.New("passphrase required (-p)")

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return errPassphraseRequired
			}
			id, fp, err := app.NewIdentityService(cfg).GenerateIdentity(passphrase)
			if err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Printf("Identity created.\nKey id: %d\nFingerprint: %s\n", id.KeyID, fp)
			if cfg.Username == "" {
				fmt.Println("No username set; rerun with --username to save one.")
			}
			return nil
		},
	}
}
