// Package cli provides the interactive Daybook command-line client.
//
// It wires configuration, the gRPC record store, the per-user session (the
// paginated moment list, optimistic edits and the streak tracker) and a
// small REPL. Typical flow: register or log in, which also imports a legacy
// local store once, then list, add, feature and delete moments while the
// streak updates in the background.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
