package client

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Page is one page of a cursor-paginated query.
type Page[T any] struct {
	Data        []T     `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Cursor returns the cursor of the next page or "".
func (p *Page[T]) Cursor() string {
	if p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}

// MoveFunction identifies package::module::function.
type MoveFunction struct {
	Package  string `json:"package"`
	Module   string `json:"module"`
	Function string `json:"function"`
}

func (f MoveFunction) String() string {
	return f.Package + "::" + f.Module + "::" + f.Function
}

// TransactionBlock is a transaction as returned by query and execute.
type TransactionBlock struct {
	Digest        string              `json:"digest"`
	Transaction   *SenderSignedData   `json:"transaction,omitempty"`
	Effects       *TransactionEffects `json:"effects,omitempty"`
	ObjectChanges []ObjectChange      `json:"objectChanges,omitempty"`
	TimestampMs   string              `json:"timestampMs,omitempty"`
}

// Timestamp converts TimestampMs; zero when absent or malformed.
func (t *TransactionBlock) Timestamp() time.Time {
	ms, err := strconv.ParseInt(t.TimestampMs, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Sender returns the signer of the transaction or "".
func (t *TransactionBlock) Sender() string {
	if t.Transaction == nil {
		return ""
	}
	return t.Transaction.Data.Sender
}

// Succeeded reports whether the effects carry a success status.
func (t *TransactionBlock) Succeeded() bool {
	return t.Effects != nil && t.Effects.Status.Status == "success"
}

// CreatedObject returns the id of the first created object whose type starts
// with typePrefix.
func (t *TransactionBlock) CreatedObject(typePrefix string) (string, bool) {
	for _, ch := range t.ObjectChanges {
		if ch.Type == "created" && strings.HasPrefix(ch.ObjectType, typePrefix) {
			return ch.ObjectID, true
		}
	}
	return "", false
}

// MoveCallArgs returns the pure argument values of the first MoveCall to fn,
// in call order. Arguments that are not plain strings come back as "".
func (t *TransactionBlock) MoveCallArgs(fn MoveFunction) ([]string, bool) {
	if t.Transaction == nil {
		return nil, false
	}
	ptx := t.Transaction.Data.Transaction
	for _, cmd := range ptx.Transactions {
		mc := cmd.MoveCall
		if mc == nil || mc.Package != fn.Package || mc.Module != fn.Module || mc.Function != fn.Function {
			continue
		}
		out := make([]string, len(mc.Arguments))
		for i, arg := range mc.Arguments {
			if arg.Input == nil || *arg.Input < 0 || *arg.Input >= len(ptx.Inputs) {
				continue
			}
			out[i] = ptx.Inputs[*arg.Input].String()
		}
		return out, true
	}
	return nil, false
}

type SenderSignedData struct {
	Data         TransactionData `json:"data"`
	TxSignatures []string        `json:"txSignatures,omitempty"`
}

type TransactionData struct {
	Sender      string                  `json:"sender"`
	Transaction ProgrammableTransaction `json:"transaction"`
}

type ProgrammableTransaction struct {
	Kind         string      `json:"kind"`
	Inputs       []CallInput `json:"inputs"`
	Transactions []Command   `json:"transactions"`
}

// CallInput is one transaction input. Pure inputs carry a JSON value.
type CallInput struct {
	Type      string          `json:"type"`
	ValueType string          `json:"valueType,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	ObjectID  string          `json:"objectId,omitempty"`
}

// String returns the input as text: the decoded value of a string pure
// input, or the object id of an object input.
func (in CallInput) String() string {
	if in.ObjectID != "" {
		return in.ObjectID
	}
	var s string
	if err := json.Unmarshal(in.Value, &s); err == nil {
		return s
	}
	return ""
}

// Command is one programmable transaction command. Only MoveCall is used.
type Command struct {
	MoveCall *MoveCallCommand `json:"MoveCall,omitempty"`
}

type MoveCallCommand struct {
	Package   string         `json:"package"`
	Module    string         `json:"module"`
	Function  string         `json:"function"`
	Arguments []CallArgument `json:"arguments"`
}

type CallArgument struct {
	Input *int `json:"Input,omitempty"`
}

type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ObjectChange struct {
	Type       string `json:"type"`
	Sender     string `json:"sender,omitempty"`
	ObjectType string `json:"objectType,omitempty"`
	ObjectID   string `json:"objectId,omitempty"`
	Version    string `json:"version,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

// ObjectResponse wraps object data or the reason it is missing.
type ObjectResponse struct {
	Data  *ObjectData          `json:"data,omitempty"`
	Error *ObjectResponseError `json:"error,omitempty"`
}

type ObjectResponseError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

type ObjectData struct {
	ObjectID string       `json:"objectId"`
	Version  string       `json:"version"`
	Digest   string       `json:"digest"`
	Type     string       `json:"type,omitempty"`
	Content  *MoveContent `json:"content,omitempty"`
}

// MoveContent is the parsed Move struct of an object.
type MoveContent struct {
	DataType string                     `json:"dataType"`
	Type     string                     `json:"type"`
	Fields   map[string]json.RawMessage `json:"fields"`
}

// StringField returns fields[name] when it is a JSON string.
func (c *MoveContent) StringField(name string) (string, bool) {
	raw, ok := c.Fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BoolField returns fields[name] when it is a JSON bool.
func (c *MoveContent) BoolField(name string) (bool, bool) {
	raw, ok := c.Fields[name]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// MoveCallRequest describes a call for unsafe_moveCall.
type MoveCallRequest struct {
	Signer        string
	Package       string
	Module        string
	Function      string
	TypeArguments []string
	Arguments     []any
	GasBudget     uint64
}

// TransactionBytes is the unsigned transaction built by the node.
type TransactionBytes struct {
	TxBytes string `json:"txBytes"`
}
