package client

import "context"

// Client is the contract for talking to a Sui full node.
type Client interface {
	// Ping checks that the node answers.
	Ping(ctx context.Context) error

	// QueryTransactionBlocks pages through transactions calling one Move
	// function, newest first.
	QueryTransactionBlocks(ctx context.Context, fn MoveFunction, cursor string, limit int) (*Page[TransactionBlock], error)

	// GetObject reads the live state of an object.
	GetObject(ctx context.Context, objectID string) (*ObjectData, error)

	// GetOwnedObjects pages through objects of structType owned by owner.
	GetOwnedObjects(ctx context.Context, owner, structType, cursor string, limit int) (*Page[ObjectResponse], error)

	// MoveCall asks the node to build an unsigned transaction.
	MoveCall(ctx context.Context, req MoveCallRequest) (*TransactionBytes, error)

	// ExecuteTransactionBlock submits a signed transaction and waits for
	// local execution.
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*TransactionBlock, error)
}
