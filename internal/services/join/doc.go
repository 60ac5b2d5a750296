// Package join drives the joiner handshake from user actions and incoming
// messages.
//
// It turns scanned invite codes into a started handshake, routes received
// Secure-Join messages to the active BobState and reports outcomes as
// chat notices and events.
package join
