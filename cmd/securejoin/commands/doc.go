// Package commands defines the securejoin CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init           Create or rotate the local identity and save config
//   - fingerprint    Print the identity fingerprint
//   - join           Scan an OPENPGP4FPR invite and start the handshake
//   - recv           Fetch queued messages and advance the handshake
//   - status         Show the handshake in progress, if any
//   - contacts       List the address book
//
// # Implementation
//
// The root command loads <home>/config.toml, applies flag overrides and
// configures logging before any subcommand runs. Commands that talk to the
// relay build an app.Wire and close it on return.
package commands
