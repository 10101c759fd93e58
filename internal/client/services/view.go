package services

import (
	"sync"

	"github.com/dmitrijs2005/akashi/internal/client/models"
)

// ViewTicket tags one activity fetch.
type ViewTicket struct {
	Account string
	Mode    models.Mode
	seq     uint64
}

// ViewTracker implements last-request-wins for an activity view: only the
// most recently started fetch may publish its result.
type ViewTracker struct {
	mu      sync.Mutex
	seq     uint64
	current ViewTicket
}

// Begin starts a fetch for (account, mode) and supersedes all earlier ones.
func (t *ViewTracker) Begin(account string, mode models.Mode) ViewTicket {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.current = ViewTicket{Account: account, Mode: mode, seq: t.seq}
	return t.current
}

// IsLatest reports whether tk still belongs to the newest fetch.
func (t *ViewTracker) IsLatest(tk ViewTicket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tk.seq != 0 && tk == t.current
}

// Invalidate discards every outstanding fetch, e.g. on disconnect.
func (t *ViewTracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current = ViewTicket{seq: t.seq}
}
