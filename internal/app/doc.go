// Package app wires application dependencies for the CLI.
//
// It loads Config from <home>/config.toml, configures logging, and builds
// the concrete stores, relay client and services, exposing them via the
// Wire struct for commands to use.
package app
