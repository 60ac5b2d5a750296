package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"securejoin/internal/app"
)

// recv: fetch queued messages, feed handshake messages to the joiner and
// print the rest.
func recvCmd() *cobra.Command {
	var (
		limit    int
		follow   bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch your queued messages and advance the handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWire()
			if err != nil {
				return err
			}
			defer w.Close()
			events, cancel := w.Events.Subscribe()
			defer cancel()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			for {
				if err := receiveOnce(ctx, w, limit); err != nil {
					return err
				}
				printEvents(events)
				if !follow {
					return nil
				}
				state, err := w.Join.Status(ctx)
				if err != nil {
					return err
				}
				if state == nil {
					fmt.Println("No handshake in progress.")
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages per fetch (0 = all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling until no handshake is in progress")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval with --follow")
	return cmd
}

func receiveOnce(ctx context.Context, w *app.Wire, limit int) error {
	msgs, err := w.Messages.ReceiveMessages(ctx, limit)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		handled, err := w.Join.HandleMessage(ctx, m)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		fmt.Printf("[%s] %s\n", m.From, m.Text)
	}
	return nil
}
