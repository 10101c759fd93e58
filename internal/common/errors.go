// Package common defines shared constants and sentinel errors used across
// Akashi components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Lifecycle errors. The first four abort the pipeline that raised them.
	ErrNotConnected       = errors.New("no wallet account connected")
	ErrUploadFailed       = errors.New("upload failed")
	ErrSignatureRejected  = errors.New("signature rejected")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrQueryFailed        = errors.New("chain query failed")
	ErrEnrichmentFailed   = errors.New("record enrichment failed")
	ErrTimeout            = errors.New("request timed out")
	ErrInvalidDraft       = errors.New("invalid certificate draft")
	ErrActionInProgress   = errors.New("action already in progress")
	ErrInvalidPassphrase  = errors.New("invalid passphrase")
	ErrKeystoreNotPresent = errors.New("keystore not found")
)
