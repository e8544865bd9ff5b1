// Package engine implements the transaction processing state machine.
// A Processor consumes records strictly in arrival order and drives
// mutations into the account ledger and the transaction history cache.
//
// Each record produces exactly one of:
//  1. A ledger mutation (and a cache mutation for deposits/withdrawals)
//  2. A dispute-state transition plus the matching fund movement
//  3. A silent no-op — semantically invalid records are discarded,
//     counted, and logged; processing continues with the next record
//
// Only a structural failure from the record source aborts a run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reckon-ledger/reckon/internal/domain"
	"github.com/reckon-ledger/reckon/internal/infra/observability"
	"github.com/reckon-ledger/reckon/internal/ledger"
)

// RecordSource yields structurally-parsed records in arrival order.
// Next returns io.EOF when the stream is exhausted; any other error is
// a structural failure that aborts the run.
type RecordSource interface {
	Next() (domain.Transaction, error)
}

// Stats summarizes one run.
type Stats struct {
	RunID     uuid.UUID `json:"run_id"`
	Processed int64     `json:"processed"`
	Discarded int64     `json:"discarded"`
}

// Processor owns no long-lived state of its own beyond one run: the
// ledger and cache are handed in so tests and callers can construct
// isolated instances.
type Processor struct {
	ledger    *ledger.Ledger
	cache     *ledger.TxCache
	runID     uuid.UUID
	processed int64
	discarded int64
}

// New creates a processor over the given ledger and cache.
func New(l *ledger.Ledger, c *ledger.TxCache) *Processor {
	return &Processor{
		ledger: l,
		cache:  c,
		runID:  uuid.New(),
	}
}

// Ledger returns the account ledger this processor mutates.
func (p *Processor) Ledger() *ledger.Ledger { return p.ledger }

// Cache returns the transaction history cache this processor mutates.
func (p *Processor) Cache() *ledger.TxCache { return p.cache }

// Stats returns the running counters for this run.
func (p *Processor) Stats() Stats {
	return Stats{RunID: p.runID, Processed: p.processed, Discarded: p.discarded}
}

// ─── Run Loop ───────────────────────────────────────────────────────────────

// Process consumes the source to exhaustion. Semantically invalid
// records are dropped and counted; a source error aborts the run with
// no guarantee of a partial report.
func (p *Processor) Process(ctx context.Context, src RecordSource) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tx, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		p.Apply(tx) // rejection already counted and logged
	}

	log.Printf("[engine] run %s complete: processed=%d discarded=%d accounts=%d cached_txs=%d",
		p.runID, p.processed, p.discarded, p.ledger.Len(), p.cache.Len())
	return nil
}

// Apply processes a single record. A non-nil error means the record was
// discarded; the error is one of the domain sentinels and is informational
// only — the run continues.
func (p *Processor) Apply(tx domain.Transaction) error {
	err := p.apply(tx)
	if err != nil {
		p.discarded++
		observability.TransactionsDiscarded.WithLabelValues(tx.Kind.String(), discardReason(err)).Inc()
		log.Printf("[engine] discarding %s tx=%d client=%d: %v", tx.Kind, tx.ID, tx.Client, err)
		return err
	}
	p.processed++
	observability.TransactionsProcessed.WithLabelValues(tx.Kind.String()).Inc()
	return nil
}

// apply dispatches on the closed set of kinds. The exhaustive switch is
// the completeness check over the policy table.
func (p *Processor) apply(tx domain.Transaction) error {
	switch tx.Kind {
	case domain.KindDeposit:
		return p.applyDeposit(tx)
	case domain.KindWithdrawal:
		return p.applyWithdrawal(tx)
	case domain.KindDispute:
		return p.applyDispute(tx)
	case domain.KindResolve:
		return p.applyResolve(tx)
	case domain.KindChargeback:
		return p.applyChargeback(tx)
	}
	return domain.ErrUnknownKind
}

// ─── Per-Kind Policy ────────────────────────────────────────────────────────

// applyDeposit credits available funds and caches the transaction.
// The deposit is the only record kind that creates accounts.
func (p *Processor) applyDeposit(tx domain.Transaction) error {
	if p.ledger.IsLocked(tx.Client) {
		return domain.ErrAccountLocked
	}
	// Insert before touching the ledger: a duplicate id must not mutate.
	if err := p.cache.Insert(tx.ID, tx.Client, domain.KindDeposit, tx.Amount); err != nil {
		return err
	}
	if p.ledger.Get(tx.Client) == nil {
		observability.AccountsCreated.Inc()
	}
	p.ledger.GetOrCreate(tx.Client)
	p.ledger.Apply(tx.Client, tx.Amount, decimal.Zero)
	return nil
}

// applyWithdrawal debits available funds. Withdrawals never create
// accounts and never overdraw: available must cover the full amount.
// The accepted withdrawal is cached so later dispute-family records can
// reference it structurally, though disputes themselves are defined
// only over deposits.
func (p *Processor) applyWithdrawal(tx domain.Transaction) error {
	acct := p.ledger.Get(tx.Client)
	if acct == nil {
		return domain.ErrUnknownAccount
	}
	if acct.Locked {
		return domain.ErrAccountLocked
	}
	if acct.Available.LessThan(tx.Amount) {
		return domain.ErrInsufficientFunds
	}
	if err := p.cache.Insert(tx.ID, tx.Client, domain.KindWithdrawal, tx.Amount); err != nil {
		return err
	}
	p.ledger.Apply(tx.Client, tx.Amount.Neg(), decimal.Zero)
	return nil
}

// applyDispute moves the referenced deposit's funds from available to
// held. Total is unchanged. Available may go negative if the funds were
// already withdrawn — that is deliberate.
//
// Dispute-family records are exempt from the lock check: a dispute
// already in flight must be able to run to completion on a locked
// account.
func (p *Processor) applyDispute(tx domain.Transaction) error {
	cached, err := p.referenced(tx)
	if err != nil {
		return err
	}
	if cached.Kind != domain.KindDeposit {
		return domain.ErrNotDisputable
	}
	if cached.State != domain.DisputeNone {
		return domain.ErrAlreadyDisputed
	}
	p.ledger.Apply(tx.Client, cached.Amount.Neg(), cached.Amount)
	p.cache.SetDisputeState(tx.ID, domain.DisputeOpen)
	observability.DisputesOpen.Inc()
	return nil
}

// applyResolve closes a dispute in the depositor's favor, releasing the
// held funds back to available. Resolved is terminal: the transaction
// cannot be re-disputed.
func (p *Processor) applyResolve(tx domain.Transaction) error {
	cached, err := p.referenced(tx)
	if err != nil {
		return err
	}
	if cached.State != domain.DisputeOpen {
		return domain.ErrNotDisputed
	}
	p.ledger.Apply(tx.Client, cached.Amount, cached.Amount.Neg())
	p.cache.SetDisputeState(tx.ID, domain.DisputeResolved)
	observability.DisputesOpen.Dec()
	return nil
}

// applyChargeback closes a dispute against the depositor: the held
// funds leave the account entirely and the account locks. Locking is
// monotonic for the rest of the run.
func (p *Processor) applyChargeback(tx domain.Transaction) error {
	cached, err := p.referenced(tx)
	if err != nil {
		return err
	}
	if cached.State != domain.DisputeOpen {
		return domain.ErrNotDisputed
	}
	p.ledger.Apply(tx.Client, decimal.Zero, cached.Amount.Neg())
	p.cache.SetDisputeState(tx.ID, domain.DisputeChargedBack)
	p.ledger.Lock(tx.Client)
	observability.AccountsLocked.Inc()
	observability.DisputesOpen.Dec()
	return nil
}

// referenced resolves a dispute-family record against the cache,
// rejecting unknown ids and client mismatches.
func (p *Processor) referenced(tx domain.Transaction) (*ledger.CachedTx, error) {
	cached := p.cache.Lookup(tx.ID)
	if cached == nil {
		return nil, domain.ErrUnknownTransaction
	}
	if cached.Client != tx.Client {
		return nil, domain.ErrClientMismatch
	}
	return cached, nil
}

// ─── Discard Reasons ────────────────────────────────────────────────────────

// discardReason maps a rejection sentinel to a stable metric label.
func discardReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateTransaction):
		return "duplicate_tx"
	case errors.Is(err, domain.ErrUnknownTransaction):
		return "unknown_tx"
	case errors.Is(err, domain.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, domain.ErrClientMismatch):
		return "client_mismatch"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, domain.ErrNotDisputable):
		return "not_disputable"
	case errors.Is(err, domain.ErrNotDisputed):
		return "not_disputed"
	case errors.Is(err, domain.ErrAlreadyDisputed):
		return "already_disputed"
	}
	return "other"
}
