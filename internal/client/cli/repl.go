package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isConnected() bool
	isOnline() bool

	Connect(ctx context.Context) error
	NewKey(ctx context.Context) error
	ImportKey(ctx context.Context) error
	Disconnect(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Upload(ctx context.Context, args []string) error
	Issue(ctx context.Context, args []string) error
	Mint(ctx context.Context, args []string) error
	Activity(ctx context.Context, args []string) error
	Approve(ctx context.Context, args []string) error
	Fetch(ctx context.Context, args []string) error
	Runs(ctx context.Context, args []string) error
	Approvals(ctx context.Context) error
}

// networkCommands need the node or the blob store.
var networkCommands = map[string]bool{
	"upload":   true,
	"issue":    true,
	"mint":     true,
	"activity": true,
	"a":        true,
	"approve":  true,
	"fetch":    true,
}

const (
	helpDisconnected = "Available commands: connect, newkey, importkey, fetch, help, exit"
	helpConnected    = "Available commands: whoami, upload, issue, mint, activity [sender|approver], approve, approvals, fetch, runs [n], disconnect, help, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Prompts issued by the commands read from the same reader. The loop ends on
// EOF, on "exit"/"quit" or when ctx is cancelled.
//
// Errors returned by handlers are not printed here; handlers report them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "akashi%s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if networkCommands[cmd] && !a.isOnline() {
			fmt.Fprintf(out, "'%s' needs the network; currently offline.\n", cmd)
			continue
		}

		switch cmd {
		case "help":
			if a.isConnected() {
				fmt.Fprintln(out, helpConnected)
			} else {
				fmt.Fprintln(out, helpDisconnected)
			}

		case "connect":
			_ = a.Connect(ctx)
		case "newkey":
			_ = a.NewKey(ctx)
		case "importkey":
			_ = a.ImportKey(ctx)
		case "disconnect":
			_ = a.Disconnect(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "upload":
			_ = a.Upload(ctx, args)
		case "issue":
			_ = a.Issue(ctx, args)
		case "mint":
			_ = a.Mint(ctx, args)
		case "activity", "a":
			_ = a.Activity(ctx, args)
		case "approve":
			_ = a.Approve(ctx, args)
		case "fetch":
			_ = a.Fetch(ctx, args)
		case "runs":
			_ = a.Runs(ctx, args)
		case "approvals":
			_ = a.Approvals(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
