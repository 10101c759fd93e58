package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/akashi/internal/common"
)

// ActionGuard lets one submission per logical action run at a time.
type ActionGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewActionGuard() *ActionGuard {
	return &ActionGuard{held: make(map[string]struct{})}
}

// Acquire takes key or fails fast with common.ErrActionInProgress. The
// returned release func is idempotent.
func (g *ActionGuard) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		return nil, fmt.Errorf("%w: %s", common.ErrActionInProgress, key)
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is currently held.
func (g *ActionGuard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

// IssueKey identifies an issue of one file to one recipient.
func IssueKey(data []byte, recipient string) string {
	sum := sha256.Sum256(data)
	return "issue:" + hex.EncodeToString(sum[:]) + ":" + recipient
}

func MintKey(contentAddress, recipient string) string {
	return "mint:" + contentAddress + ":" + recipient
}

func ApproveKey(objectID string) string {
	return "approve:" + objectID
}
