// Package ledger owns the two indexed structures of a run: the account
// ledger (client id → account state) and the transaction history cache
// (tx id → accepted deposit/withdrawal). Both are exclusively owned and
// mutated by a single processor; neither does any policy validation of
// its own — legality of a mutation is the processor's job.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/reckon-ledger/reckon/internal/domain"
)

// ─── Account ────────────────────────────────────────────────────────────────

// Account is the per-client balance state.
// Invariant: Total = Available + Held after every mutation. Available and
// Total may legitimately go negative (a chargeback can reverse a deposit
// that was already partially withdrawn).
type Account struct {
	Client    domain.ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger maps client ids to accounts. Accounts are created lazily on first
// reference and never destroyed within a run. Memory scales with the number
// of distinct clients, not with total record count.
type Ledger struct {
	accounts map[domain.ClientID]*Account
	order    []domain.ClientID // insertion order, for a stable report
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[domain.ClientID]*Account),
	}
}

// GetOrCreate returns the account for client, creating a zeroed unlocked
// account if none exists yet.
func (l *Ledger) GetOrCreate(client domain.ClientID) *Account {
	if acct, ok := l.accounts[client]; ok {
		return acct
	}
	acct := &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
	l.accounts[client] = acct
	l.order = append(l.order, client)
	return acct
}

// Get returns the account for client, or nil if the client has never
// been seen. The ledger itself never fails; absence is the caller's
// signal to reject the record.
func (l *Ledger) Get(client domain.ClientID) *Account {
	return l.accounts[client]
}

// Apply mutates an existing account by the given signed deltas and
// recomputes Total = Available + Held. It performs no sufficiency check;
// that policy lives in the processor.
func (l *Ledger) Apply(client domain.ClientID, dAvailable, dHeld decimal.Decimal) {
	acct := l.accounts[client]
	if acct == nil {
		return
	}
	acct.Available = acct.Available.Add(dAvailable)
	acct.Held = acct.Held.Add(dHeld)
	acct.Total = acct.Available.Add(acct.Held)
}

// IsLocked reports whether the client's account is locked. Unknown
// clients are not locked.
func (l *Ledger) IsLocked(client domain.ClientID) bool {
	acct := l.accounts[client]
	return acct != nil && acct.Locked
}

// Lock marks the account locked. Idempotent; locking is monotonic for
// the rest of the run.
func (l *Ledger) Lock(client domain.ClientID) {
	if acct := l.accounts[client]; acct != nil {
		acct.Locked = true
	}
}

// Len returns the number of accounts created so far.
func (l *Ledger) Len() int { return len(l.accounts) }

// Snapshot returns a copy of every account in insertion order. The order
// carries no semantics; it just keeps reports and tests stable.
func (l *Ledger) Snapshot() []Account {
	out := make([]Account, 0, len(l.order))
	for _, client := range l.order {
		out = append(out, *l.accounts[client])
	}
	return out
}
