// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing
// but the decimal type used for money.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ─── Identifiers ────────────────────────────────────────────────────────────

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute-family records reference
// the TxID of the transaction they act on rather than carrying their own.
type TxID uint32

// ─── Transaction Kinds ──────────────────────────────────────────────────────

// Kind is the closed set of record kinds on the wire.
type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

// ParseKind maps a wire literal to a Kind. The match is exact after
// lowercasing; anything else is a structural input error.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "deposit":
		return KindDeposit, nil
	case "withdrawal":
		return KindWithdrawal, nil
	case "dispute":
		return KindDispute, nil
	case "resolve":
		return KindResolve, nil
	case "chargeback":
		return KindChargeback, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// String returns the wire literal for the kind.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	}
	return "unknown"
}

// Funded reports whether records of this kind carry an amount.
// Only deposits and withdrawals move fresh funds; the dispute family
// references amounts already cached.
func (k Kind) Funded() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ─── Transaction Record ─────────────────────────────────────────────────────

// Transaction is one structurally-valid input record.
// Amount is zero for dispute-family kinds.
type Transaction struct {
	Kind   Kind
	Client ClientID
	ID     TxID
	Amount decimal.Decimal
}

// ─── Dispute Lifecycle ──────────────────────────────────────────────────────

// DisputeState tracks where a cached transaction is in the dispute lifecycle.
//
//	Normal → Disputed → Resolved
//	                  → ChargedBack
//
// Resolved and ChargedBack are terminal: a transaction cannot be re-disputed.
type DisputeState uint8

const (
	DisputeNone DisputeState = iota
	DisputeOpen
	DisputeResolved
	DisputeChargedBack
)

// String returns a short label for logs and the HTTP API.
func (s DisputeState) String() string {
	switch s {
	case DisputeNone:
		return "normal"
	case DisputeOpen:
		return "disputed"
	case DisputeResolved:
		return "resolved"
	case DisputeChargedBack:
		return "charged_back"
	}
	return "unknown"
}

// ─── Amount Helpers ─────────────────────────────────────────────────────────

// ParseAmount parses a wire amount. Amounts are exact decimals
// (conventionally up to 4 fractional digits) and must be non-negative;
// violations are structural errors that abort the run.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	return d, nil
}

// FormatAmount renders an amount with the conventional 4 fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(4)
}
