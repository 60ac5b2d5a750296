// Package verify answers whether a peer's key matches an out-of-band
// fingerprint and whether a received message is encrypted and signed.
package verify
