package commands

import (
	"os"

	"github.com/spf13/cobra"

	"securejoin/internal/app"
)

var (
	home       string
	passphrase string
	cfg        *app.Config

	relayURL     string
	username     string
	storeBackend string
)

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "securejoin",
		Short:         "Join a verified contact or group from an invite code",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				home = app.DefaultHome()
			}
			if err := app.EnsureHome(home); err != nil {
				return err
			}
			c, err := app.LoadHome(home)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("relay") {
				c.RelayURL = relayURL
			}
			if flags.Changed("username") {
				c.Username = username
			}
			if flags.Changed("store") {
				c.StoreBackend = storeBackend
			}
			if err := c.Validate(); err != nil {
				return err
			}
			cfg = c
			return app.ConfigureLogging(cfg, os.Stderr)
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.securejoin)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase to protect keys")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVarP(&username, "username", "u", "", "your relay address")
	root.PersistentFlags().StringVar(&storeBackend, "store", "", "handshake store backend: bolt or sqlite")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		joinCmd(),
		recvCmd(),
		statusCmd(),
		contactsCmd(),
	)
	return root.Execute()
}

// openWire unlocks the identity and builds the full dependency graph.
func openWire() (*app.Wire, error) {
	if passphrase == "" {
		return nil, errPassphraseRequired
	}
	return app.NewWire(cfg, passphrase)
}
