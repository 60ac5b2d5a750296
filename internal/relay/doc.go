// Package relay implements the store-and-forward relay that carries
// securejoin envelopes, both sides of it.
//
// The relay is an untrusted mailbox for signed envelopes. It gives no
// delivery or ordering guarantees beyond FIFO per mailbox, which is all the
// handshake assumes.
//
// Client side:
//   - HTTP speaks JSON over HTTP to a running relay.
//   - Local talks to a Mailbox in the same process.
//
// Server side:
//   - NewServer routes POST /msg/{user}, GET /msg/{user}?limit=N,
//     POST /msg/{user}/ack and GET /metrics onto a Mailbox.
//   - MemoryMailbox and RedisMailbox store the queued envelopes.
//
// All client requests accept a context for cancellation and deadlines.
// Non-2xx statuses are returned as errors with the HTTP method, full URL,
// and status text to aid diagnostics.
package relay
