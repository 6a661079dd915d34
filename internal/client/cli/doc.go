// Package cli provides the interactive findash terminal client.
//
// It wires configuration, the local token store, the REST client, the
// session and view state machines, and an interactive REPL. Typical flow:
// restore the stored session, verify it, land on the upload or dashboard
// screen, and execute user commands until exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
