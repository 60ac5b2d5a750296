// Package main runs the store-and-forward HTTP relay used by securejoin
// clients. It queues envelopes for recipients until they fetch them.
//
// HTTP API
//
//	POST /msg/{user}
//	    Enqueue an Envelope destined to {user}. Envelope.To must equal {user}.
//
//	GET /msg/{user}?limit=N
//	    Return up to N queued Envelopes for {user}. If limit is absent or
//	    greater than the queue length, all queued envelopes are returned.
//
//	POST /msg/{user}/ack { "count": N }
//	    Drop the first N queued envelopes for {user}. If N exceeds the queue
//	    length, the queue is cleared.
//
//	GET /metrics
//	    Prometheus metrics.
//
// Behaviour
//
//   - Mailboxes live in memory unless --redis is given.
//   - An access log records method, path, remote, status, bytes and duration
//     for each request.
//   - The default listen address is :8080.
//
// The relay never sees private keys. Encrypted envelopes are opaque to it;
// handshake requests travel in plaintext.
package main
