package commands

import (
	"fmt"

	"securejoin/internal/domain"
)

// printEvents writes whatever is buffered on ch without waiting.
func printEvents(ch <-chan domain.Event) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch ev.Kind {
			case domain.EventJoinerProgress:
				fmt.Printf("* progress %d/1000 (contact %d)\n", ev.Progress, ev.Contact)
			case domain.EventHandshakeTerminated:
				fmt.Printf("* handshake terminated: %s\n", ev.Reason)
			case domain.EventHandshakeAborted:
				fmt.Printf("* earlier handshake in chat %d aborted\n", ev.Chat)
			default:
				fmt.Printf("* %s\n", ev.Kind)
			}
		default:
			return
		}
	}
}
