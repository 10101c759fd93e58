package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/dmitrijs2005/akashi/internal/netx"
)

// RPCClient is a JSON-RPC 2.0 client for a Sui full node.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	nextID     atomic.Uint64
}

var _ Client = (*RPCClient)(nil)

// Option is a functional option for configuring an RPCClient.
type Option func(*RPCClient)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *RPCClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option {
	return func(c *RPCClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewRPCClient creates a client for the node at endpoint.
func NewRPCClient(endpoint string, opts ...Option) *RPCClient {
	c := &RPCClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", method, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	b, err := netx.Do(ctx, c.httpClient, http.MethodPost, c.endpoint, body, header)
	if err != nil {
		return mapError(method, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return fmt.Errorf("%s: %w: decode response: %w", method, ErrRPC, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: %w: decode result: %w", method, ErrRPC, err)
	}
	return nil
}

func mapError(method string, err error) error {
	if netx.IsTimeout(err) {
		return errors.Join(common.ErrTimeout, fmt.Errorf("%s: %w", method, err))
	}
	var se *netx.StatusError
	if errors.As(err, &se) && !se.Retryable() {
		return fmt.Errorf("%s: %w: %w", method, ErrRPC, err)
	}
	return fmt.Errorf("%s: %w: %w", method, ErrUnavailable, err)
}

func (c *RPCClient) Ping(ctx context.Context) error {
	var chainID string
	return c.call(ctx, "sui_getChainIdentifier", nil, &chainID)
}

type txResponseOptions struct {
	ShowInput         bool `json:"showInput,omitempty"`
	ShowEffects       bool `json:"showEffects,omitempty"`
	ShowObjectChanges bool `json:"showObjectChanges,omitempty"`
}

func (c *RPCClient) QueryTransactionBlocks(ctx context.Context, fn MoveFunction, cursor string, limit int) (*Page[TransactionBlock], error) {
	query := map[string]any{
		"filter": map[string]any{"MoveFunction": fn},
		"options": txResponseOptions{
			ShowInput:         true,
			ShowEffects:       true,
			ShowObjectChanges: true,
		},
	}

	var page Page[TransactionBlock]
	if err := c.call(ctx, "suix_queryTransactionBlocks", []any{query, nullable(cursor), limit, true}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type objectDataOptions struct {
	ShowType    bool `json:"showType,omitempty"`
	ShowOwner   bool `json:"showOwner,omitempty"`
	ShowContent bool `json:"showContent,omitempty"`
}

func (c *RPCClient) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	var resp ObjectResponse
	opts := objectDataOptions{ShowType: true, ShowOwner: true, ShowContent: true}
	if err := c.call(ctx, "sui_getObject", []any{objectID, opts}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		code := "unknown"
		if resp.Error != nil {
			code = resp.Error.Code
		}
		return nil, fmt.Errorf("sui_getObject %s: %w (%s)", objectID, ErrNoObject, code)
	}
	return resp.Data, nil
}

func (c *RPCClient) GetOwnedObjects(ctx context.Context, owner, structType, cursor string, limit int) (*Page[ObjectResponse], error) {
	query := map[string]any{
		"filter":  map[string]any{"StructType": structType},
		"options": objectDataOptions{ShowType: true, ShowContent: true},
	}

	var page Page[ObjectResponse]
	if err := c.call(ctx, "suix_getOwnedObjects", []any{owner, query, nullable(cursor), limit}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *RPCClient) MoveCall(ctx context.Context, req MoveCallRequest) (*TransactionBytes, error) {
	typeArgs := req.TypeArguments
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := req.Arguments
	if args == nil {
		args = []any{}
	}

	params := []any{
		req.Signer,
		req.Package,
		req.Module,
		req.Function,
		typeArgs,
		args,
		nil,
		strconv.FormatUint(req.GasBudget, 10),
	}

	var tb TransactionBytes
	if err := c.call(ctx, "unsafe_moveCall", params, &tb); err != nil {
		return nil, err
	}
	if tb.TxBytes == "" {
		return nil, fmt.Errorf("unsafe_moveCall: %w: empty txBytes", ErrRPC)
	}
	return &tb, nil
}

func (c *RPCClient) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*TransactionBlock, error) {
	opts := txResponseOptions{ShowInput: true, ShowEffects: true, ShowObjectChanges: true}

	var tx TransactionBlock
	params := []any{txBytes, signatures, opts, "WaitForLocalExecution"}
	if err := c.call(ctx, "sui_executeTransactionBlock", params, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
