// Package models defines the certificate lifecycle types shared by the
// Akashi client: drafts, minted certificates, activity views and journal
// records.
package models

import (
	"fmt"
	"time"
)

// Certificate is an on-chain certificate record.
type Certificate struct {
	// ObjectID is the id of the created Move object. It is empty until a
	// mint transaction has been finalized.
	ObjectID string

	Title          string
	Description    string
	ContentAddress string

	// Recipient is the account allowed to approve the certificate.
	Recipient string

	// Sender is the account that signed the mint transaction.
	Sender string

	// Approved flips from false to true once and never back.
	Approved bool

	MintedAt time.Time
	TxDigest string
}

// Mode selects which side of the activity an account is looking at.
type Mode string

const (
	// ModeSender lists certificates the account has minted.
	ModeSender Mode = "sender"
	// ModeApprover lists certificates the account may approve.
	ModeApprover Mode = "approver"
)

// ParseMode accepts "sender" or "approver".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSender, ModeApprover:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// CertificateView is a Certificate as shown in an activity listing.
type CertificateView struct {
	Certificate

	// CanApprove mirrors the on-chain can_approve flag. It defaults to true
	// for records that do not carry it.
	CanApprove bool

	// Enriched is false when the live object could not be read and the
	// fields come from the raw mint transaction arguments.
	Enriched bool
}

// Actionable reports whether the approve action should be offered.
func (v CertificateView) Actionable() bool {
	return v.CanApprove && !v.Approved
}

// ApprovalResult describes a finalized approve transaction.
type ApprovalResult struct {
	ObjectID string
	Approver string
	TxDigest string
}
