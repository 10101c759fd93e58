// Package cli provides the interactive Akashi command-line client.
//
// It wires configuration, the local journal, the blob store, the chain
// client and the wallet into an interactive REPL. A background watcher pings
// the chain node and switches the client between online and offline mode.
//
// Key features:
//   - connect / newkey / importkey / disconnect (encrypted local keystore)
//   - upload, mint, and issue (upload then mint) certificate files
//   - activity in sender or approver mode, and approve
//   - fetch stored files back, and list journaled runs and approvals
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
