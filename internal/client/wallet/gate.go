package wallet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TxSummary is what the user is asked to approve.
type TxSummary struct {
	Signer    string
	Call      MoveCall
	GasBudget uint64
}

// PermissionGate decides whether a transaction may be signed.
type PermissionGate interface {
	Confirm(ctx context.Context, tx TxSummary) (bool, error)
}

// AutoConfirm approves everything.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, TxSummary) (bool, error) { return true, nil }

// GateFunc adapts a function to PermissionGate.
type GateFunc func(ctx context.Context, tx TxSummary) (bool, error)

func (f GateFunc) Confirm(ctx context.Context, tx TxSummary) (bool, error) { return f(ctx, tx) }

// PromptGate prints the transaction and waits for y/yes.
type PromptGate struct {
	In  *bufio.Reader
	Out io.Writer
}

func (g PromptGate) Confirm(ctx context.Context, tx TxSummary) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(g.Out, "Sign transaction as %s\n", tx.Signer)
	fmt.Fprintf(g.Out, "  call: %s\n", tx.Call.Target())
	for i, a := range tx.Call.Arguments {
		fmt.Fprintf(g.Out, "  arg%d: %v\n", i, a)
	}
	fmt.Fprintf(g.Out, "  gas budget: %d\n", tx.GasBudget)
	fmt.Fprint(g.Out, "Approve? [y/N] ")

	line, err := g.In.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
