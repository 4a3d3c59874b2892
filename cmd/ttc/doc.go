// Package main hosts the ttc CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, sets up structured
// logging, and drives the texture conversion pipeline and glTF update pass.
// Subcommands cover configuration scaffolding, run history, and version
// reporting.
//
// Keep this package lean: new behavior belongs in the internal packages
// first, surfaced here through dedicated commands or flags.
package main
