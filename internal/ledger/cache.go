package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/reckon-ledger/reckon/internal/domain"
	"github.com/reckon-ledger/reckon/internal/infra/dsa"
)

// ─── Transaction History Cache ──────────────────────────────────────────────

// CachedTx is a previously-accepted deposit or withdrawal, kept so that
// later dispute-family records can reference it. Dispute-family records
// themselves are never cached: they carry no amount and are not
// referenceable.
type CachedTx struct {
	ID     domain.TxID
	Client domain.ClientID
	Kind   domain.Kind // KindDeposit or KindWithdrawal only
	Amount decimal.Decimal
	State  domain.DisputeState
}

// TxCache maps transaction ids to cached transactions. A Bloom filter
// fronts the map so the common case (a fresh id) skips the map probe.
// Memory scales with the number of accepted deposits and withdrawals.
type TxCache struct {
	txs  map[domain.TxID]*CachedTx
	seen *dsa.BloomFilter
}

// NewTxCache creates an empty cache with the Bloom screen sized by cfg.
func NewTxCache(cfg dsa.BloomConfig) *TxCache {
	return &TxCache{
		txs:  make(map[domain.TxID]*CachedTx),
		seen: dsa.NewBloomFilter(cfg),
	}
}

// Insert records a newly-accepted deposit or withdrawal in the Normal
// dispute state. Returns ErrDuplicateTransaction if the id already
// exists (replayed or malformed input).
func (c *TxCache) Insert(id domain.TxID, client domain.ClientID, kind domain.Kind, amount decimal.Decimal) error {
	if c.seen.Contains(uint64(id)) {
		// Possible duplicate; the map has the exact answer.
		if _, ok := c.txs[id]; ok {
			return domain.ErrDuplicateTransaction
		}
	}
	c.txs[id] = &CachedTx{
		ID:     id,
		Client: client,
		Kind:   kind,
		Amount: amount,
		State:  domain.DisputeNone,
	}
	c.seen.Add(uint64(id))
	return nil
}

// Lookup returns the cached transaction, or nil if the id is unknown.
func (c *TxCache) Lookup(id domain.TxID) *CachedTx {
	if !c.seen.Contains(uint64(id)) {
		return nil
	}
	return c.txs[id]
}

// SetDisputeState overwrites the dispute state of an existing cached
// transaction. No validation: the processor has already judged the
// transition legal.
func (c *TxCache) SetDisputeState(id domain.TxID, state domain.DisputeState) {
	if tx, ok := c.txs[id]; ok {
		tx.State = state
	}
}

// Len returns the number of cached transactions.
func (c *TxCache) Len() int { return len(c.txs) }
