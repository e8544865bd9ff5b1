package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
//
// The structural errors (ErrUnknownKind, ErrNegativeAmount) abort a run.
// Everything else is a semantic rejection: the processor drops the record,
// counts it, and moves on.

var (
	// Structural errors — fatal, surfaced by the record source
	ErrUnknownKind    = errors.New("unknown transaction kind")
	ErrNegativeAmount = errors.New("amount must not be negative")

	// Semantic rejections — silently discarded by the processor
	ErrDuplicateTransaction = errors.New("transaction id already seen")
	ErrUnknownTransaction   = errors.New("referenced transaction not found")
	ErrUnknownAccount       = errors.New("account not found")
	ErrClientMismatch       = errors.New("client does not own referenced transaction")
	ErrInsufficientFunds    = errors.New("insufficient available funds")
	ErrAccountLocked        = errors.New("account is locked")
	ErrNotDisputable        = errors.New("only deposits can be disputed")
	ErrNotDisputed          = errors.New("referenced transaction is not under dispute")
	ErrAlreadyDisputed      = errors.New("referenced transaction is already past dispute")
)
