package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable = errors.New("chain node unavailable")
	ErrRPC         = errors.New("chain rpc error")
	ErrNoObject    = errors.New("object does not exist")
)

// RPCError is the error object of a JSON-RPC response. It matches ErrRPC.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) Unwrap() error {
	return ErrRPC
}
