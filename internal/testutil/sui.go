// Package testutil provides in-process fakes of the external collaborators:
// a Sui node running the certificate program and a Walrus publisher and
// aggregator.
package testutil

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/akashi/internal/client/client"
	"github.com/dmitrijs2005/akashi/internal/client/wallet"
	"github.com/dmitrijs2005/akashi/internal/common"
)

// Chain is an in-memory Sui node that runs the certificate_nft program. It
// verifies transaction signatures and enforces the program's rules: only the
// recipient may approve, and only once.
type Chain struct {
	PackageID string

	mu      sync.Mutex
	seq     int
	clock   time.Time
	pending map[string]client.MoveCallRequest
	objects map[string]*object
	order   []string // object ids in creation order
	txs     []client.TransactionBlock
	calls   map[string]int
	faults  map[string]error
	offline bool
}

type object struct {
	id     string
	owner  string
	typ    string
	fields map[string]any
}

var _ client.Client = (*Chain)(nil)

func NewChain(packageID string) *Chain {
	return &Chain{
		PackageID: packageID,
		clock:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		pending:   make(map[string]client.MoveCallRequest),
		objects:   make(map[string]*object),
		calls:     make(map[string]int),
		faults:    make(map[string]error),
	}
}

// Fail makes every call of method return err until cleared with a nil err.
// Method names are the Client method names, e.g. "GetObject".
func (c *Chain) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.faults, method)
		return
	}
	c.faults[method] = err
}

// SetOffline makes Ping fail with client.ErrUnavailable.
func (c *Chain) SetOffline(off bool) {
	c.mu.Lock()
	c.offline = off
	c.mu.Unlock()
}

// Calls returns how many times method was invoked.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Approved reports the on-chain approved flag of a certificate.
func (c *Chain) Approved(objectID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.objects[objectID]; ok {
		b, _ := o.fields["approved"].(bool)
		return b
	}
	return false
}

// SetField overwrites a field of an object, e.g. to simulate a legacy
// deployment or can_approve=false.
func (c *Chain) SetField(objectID, name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.objects[objectID]; ok {
		o.fields[name] = value
	}
}

// DeleteField removes a field of an object.
func (c *Chain) DeleteField(objectID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.objects[objectID]; ok {
		delete(o.fields, name)
	}
}

// Certificates returns the number of certificate objects that exist.
func (c *Chain) Certificates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

func (c *Chain) enter(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[method]++
	return c.faults[method]
}

func (c *Chain) structType() string {
	return c.PackageID + "::" + common.CertificateModule + "::" + common.CertificateStruct
}

func (c *Chain) Ping(ctx context.Context) error {
	if err := c.enter("Ping"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offline {
		return fmt.Errorf("ping: %w", client.ErrUnavailable)
	}
	return ctx.Err()
}

// QueryTransactionBlocks returns executed transactions calling fn, newest
// first. The cursor is the digest of the last item of the previous page.
func (c *Chain) QueryTransactionBlocks(ctx context.Context, fn client.MoveFunction, cursor string, limit int) (*client.Page[client.TransactionBlock], error) {
	if err := c.enter("QueryTransactionBlocks"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []client.TransactionBlock
	for i := len(c.txs) - 1; i >= 0; i-- {
		if _, ok := c.txs[i].MoveCallArgs(fn); ok {
			matched = append(matched, c.txs[i])
		}
	}

	start := 0
	if cursor != "" {
		start = slices.IndexFunc(matched, func(tx client.TransactionBlock) bool { return tx.Digest == cursor }) + 1
	}
	return page(matched, start, limit, func(tx client.TransactionBlock) string { return tx.Digest }), nil
}

func (c *Chain) GetObject(ctx context.Context, objectID string) (*client.ObjectData, error) {
	if err := c.enter("GetObject"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.objects[objectID]
	if !ok {
		return nil, fmt.Errorf("sui_getObject %s: %w", objectID, client.ErrNoObject)
	}
	return o.data(), nil
}

// GetOwnedObjects pages through owner's objects of structType in creation
// order. The cursor is the id of the last object of the previous page.
func (c *Chain) GetOwnedObjects(ctx context.Context, owner, structType, cursor string, limit int) (*client.Page[client.ObjectResponse], error) {
	if err := c.enter("GetOwnedObjects"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var owned []client.ObjectResponse
	for _, id := range c.order {
		o := c.objects[id]
		if o.owner == owner && strings.HasPrefix(o.typ, structType) {
			owned = append(owned, client.ObjectResponse{Data: o.data()})
		}
	}

	start := 0
	if cursor != "" {
		start = slices.IndexFunc(owned, func(r client.ObjectResponse) bool { return r.Data.ObjectID == cursor }) + 1
	}
	return page(owned, start, limit, func(r client.ObjectResponse) string { return r.Data.ObjectID }), nil
}

// txEnvelope is what the fake encodes into txBytes.
type txEnvelope struct {
	Seq int                    `json:"seq"`
	Req client.MoveCallRequest `json:"req"`
}

func (c *Chain) MoveCall(ctx context.Context, req client.MoveCallRequest) (*client.TransactionBytes, error) {
	if err := c.enter("MoveCall"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Package != c.PackageID || req.Module != common.CertificateModule {
		return nil, &client.RPCError{Code: -32602, Message: "unknown module " + req.Package + "::" + req.Module}
	}
	switch req.Function {
	case common.MintFunction:
		if len(req.Arguments) != 4 {
			return nil, &client.RPCError{Code: -32602, Message: "mint_certificate takes 4 arguments"}
		}
	case common.ApproveFunction:
		if len(req.Arguments) != 1 {
			return nil, &client.RPCError{Code: -32602, Message: "approve_certificate takes 1 argument"}
		}
	default:
		return nil, &client.RPCError{Code: -32602, Message: "unknown function " + req.Function}
	}

	c.seq++
	raw, err := json.Marshal(txEnvelope{Seq: c.seq, Req: req})
	if err != nil {
		return nil, err
	}
	txBytes := base64.StdEncoding.EncodeToString(raw)
	c.pending[txBytes] = req
	return &client.TransactionBytes{TxBytes: txBytes}, nil
}

// ExecuteTransactionBlock runs a transaction built by MoveCall. Program
// aborts produce a block with failed effects, as a real node does.
func (c *Chain) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*client.TransactionBlock, error) {
	if err := c.enter("ExecuteTransactionBlock"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.pending[txBytes]
	if !ok {
		return nil, &client.RPCError{Code: -32002, Message: "unknown transaction"}
	}
	if len(signatures) != 1 {
		return nil, &client.RPCError{Code: -32002, Message: "expected one signature"}
	}
	signer, err := wallet.VerifyTransaction(txBytes, signatures[0])
	if err != nil || signer != req.Signer {
		return nil, &client.RPCError{Code: -32002, Message: "signature does not match sender"}
	}
	delete(c.pending, txBytes)

	c.clock = c.clock.Add(time.Second)
	tx := client.TransactionBlock{
		Digest:      fmt.Sprintf("TX%06d", len(c.txs)+1),
		TimestampMs: strconv.FormatInt(c.clock.UnixMilli(), 10),
		Transaction: &client.SenderSignedData{
			Data:         client.TransactionData{Sender: req.Signer, Transaction: programmable(req)},
			TxSignatures: signatures,
		},
		Effects: &client.TransactionEffects{Status: client.ExecutionStatus{Status: "success"}},
	}

	switch req.Function {
	case common.MintFunction:
		c.mint(&tx, req)
	case common.ApproveFunction:
		c.approve(&tx, req)
	}

	c.txs = append(c.txs, tx)
	return &tx, nil
}

func (c *Chain) mint(tx *client.TransactionBlock, req client.MoveCallRequest) {
	args := make([]string, len(req.Arguments))
	for i, a := range req.Arguments {
		args[i] = fmt.Sprint(a)
	}

	id := fmt.Sprintf("0x%064x", len(c.order)+1)
	o := &object{
		id:    id,
		owner: args[3],
		typ:   c.structType(),
		fields: map[string]any{
			"id":          map[string]any{"id": id},
			"title":       args[0],
			"description": args[1],
			"walrus_cid":  args[2],
			"recipient":   args[3],
			"approved":    false,
			"can_approve": true,
		},
	}
	c.objects[id] = o
	c.order = append(c.order, id)

	tx.ObjectChanges = []client.ObjectChange{{
		Type:       "created",
		Sender:     req.Signer,
		ObjectType: o.typ,
		ObjectID:   id,
		Version:    "1",
	}}
}

func (c *Chain) approve(tx *client.TransactionBlock, req client.MoveCallRequest) {
	id := fmt.Sprint(req.Arguments[0])
	o, ok := c.objects[id]

	var abort string
	switch {
	case !ok:
		abort = "object not found"
	case o.fields["recipient"] != req.Signer:
		abort = "MoveAbort: ENotRecipient"
	case o.fields["approved"] == true:
		abort = "MoveAbort: EAlreadyApproved"
	}
	if abort != "" {
		tx.Effects.Status = client.ExecutionStatus{Status: "failure", Error: abort}
		return
	}

	o.fields["approved"] = true
	tx.ObjectChanges = []client.ObjectChange{{
		Type:       "mutated",
		Sender:     req.Signer,
		ObjectType: o.typ,
		ObjectID:   id,
	}}
}

func programmable(req client.MoveCallRequest) client.ProgrammableTransaction {
	ptx := client.ProgrammableTransaction{Kind: "ProgrammableTransaction"}
	call := &client.MoveCallCommand{Package: req.Package, Module: req.Module, Function: req.Function}

	for i, a := range req.Arguments {
		in := client.CallInput{Type: "pure", ValueType: "0x1::string::String"}
		if req.Function == common.ApproveFunction {
			in = client.CallInput{Type: "object", ObjectID: fmt.Sprint(a)}
		} else {
			in.Value, _ = json.Marshal(fmt.Sprint(a))
		}
		ptx.Inputs = append(ptx.Inputs, in)

		idx := i
		call.Arguments = append(call.Arguments, client.CallArgument{Input: &idx})
	}
	ptx.Transactions = []client.Command{{MoveCall: call}}
	return ptx
}

func (o *object) data() *client.ObjectData {
	fields := make(map[string]json.RawMessage, len(o.fields))
	for k, v := range o.fields {
		fields[k], _ = json.Marshal(v)
	}
	return &client.ObjectData{
		ObjectID: o.id,
		Version:  "1",
		Digest:   "D" + o.id[len(o.id)-6:],
		Type:     o.typ,
		Content:  &client.MoveContent{DataType: "moveObject", Type: o.typ, Fields: fields},
	}
}

func page[T any](items []T, start, limit int, key func(T) string) *client.Page[T] {
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	p := &client.Page[T]{Data: slices.Clone(items[start:end]), HasNextPage: end < len(items)}
	if p.Data == nil {
		p.Data = []T{}
	}
	if end > start {
		next := key(items[end-1])
		p.NextCursor = &next
	}
	return p
}
