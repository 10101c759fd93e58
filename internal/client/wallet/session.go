package wallet

import (
	"context"

	"github.com/dmitrijs2005/akashi/internal/common"
)

// Session is the connected account and its signing capability. The zero
// Session is disconnected.
type Session struct {
	signer Signer
}

func NewSession(s Signer) Session {
	return Session{signer: s}
}

// Account returns the connected address or "".
func (s Session) Account() string {
	if s.signer == nil {
		return ""
	}
	return s.signer.Address()
}

func (s Session) Connected() bool {
	return s.Account() != ""
}

// SignAndSubmit delegates to the signer; a disconnected session fails with
// common.ErrNotConnected.
func (s Session) SignAndSubmit(ctx context.Context, call MoveCall) (*SubmitResult, error) {
	if !s.Connected() {
		return nil, common.ErrNotConnected
	}
	return s.signer.SignAndSubmit(ctx, call)
}
