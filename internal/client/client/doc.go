// Package client talks to a Sui full node over JSON-RPC 2.0.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     calls the certificate lifecycle needs: transaction queries filtered by
//     Move function, object reads, owned-object listings, transaction
//     building (unsafe_moveCall) and execution, and a liveness Ping.
//  2. A concrete HTTP implementation (see RPCClient) with a per-request
//     timeout and sentinel error mapping.
//  3. Decoded response types (TransactionBlock, ObjectData, MoveContent) with
//     helpers for reading MoveCall arguments, created objects and object fields.
//
// # Error Handling
//
// Transport failures and 5xx responses are ErrUnavailable, JSON-RPC error
// objects are ErrRPC (see RPCError), and deadlines are joined with
// common.ErrTimeout. Match them with errors.Is.
//
// RPCClient is safe for concurrent use. All operations honor ctx.
package client
