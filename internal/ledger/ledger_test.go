package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/reckon-ledger/reckon/internal/domain"
)

func amt(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

// ─── Ledger Tests ───────────────────────────────────────────────────────────

func TestLedger_GetOrCreate(t *testing.T) {
	l := New()

	acct := l.GetOrCreate(1)
	if acct == nil {
		t.Fatal("GetOrCreate returned nil")
	}
	if !acct.Available.IsZero() || !acct.Held.IsZero() || !acct.Total.IsZero() {
		t.Errorf("new account not zeroed: %+v", acct)
	}
	if acct.Locked {
		t.Error("new account should be unlocked")
	}

	// Second call returns the same account, not a fresh one.
	l.Apply(1, amt(t, "5"), decimal.Zero)
	again := l.GetOrCreate(1)
	if !again.Available.Equal(amt(t, "5")) {
		t.Errorf("GetOrCreate returned a fresh account: available = %s, want 5", again.Available)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestLedger_Get_Unknown(t *testing.T) {
	l := New()
	if acct := l.Get(42); acct != nil {
		t.Errorf("Get(42) = %+v, want nil", acct)
	}
	if l.IsLocked(42) {
		t.Error("unknown client reported locked")
	}
}

func TestLedger_Apply_Invariant(t *testing.T) {
	l := New()
	l.GetOrCreate(1)

	steps := []struct {
		dAvailable, dHeld string
	}{
		{"10", "0"},
		{"-3", "0"},
		{"-5", "5"},  // dispute: available → held
		{"5", "-5"},  // resolve: held → available
		{"-7", "7"},  // dispute again
		{"0", "-7"},  // chargeback: held leaves entirely
	}

	for _, s := range steps {
		l.Apply(1, amt(t, s.dAvailable), amt(t, s.dHeld))
		acct := l.Get(1)
		if !acct.Total.Equal(acct.Available.Add(acct.Held)) {
			t.Fatalf("invariant broken after (%s,%s): available=%s held=%s total=%s",
				s.dAvailable, s.dHeld, acct.Available, acct.Held, acct.Total)
		}
	}

	acct := l.Get(1)
	if want := amt(t, "0"); !acct.Total.Equal(want) {
		t.Errorf("total = %s, want %s", acct.Total, want)
	}
}

func TestLedger_Apply_UnknownClientIsNoop(t *testing.T) {
	l := New()
	l.Apply(9, amt(t, "10"), decimal.Zero)
	if l.Len() != 0 {
		t.Errorf("Apply on unknown client created an account: Len() = %d", l.Len())
	}
}

func TestLedger_Lock(t *testing.T) {
	l := New()
	l.GetOrCreate(1)

	if l.IsLocked(1) {
		t.Error("fresh account locked")
	}
	l.Lock(1)
	if !l.IsLocked(1) {
		t.Error("Lock did not lock")
	}
	l.Lock(1) // idempotent
	if !l.IsLocked(1) {
		t.Error("locking must be monotonic")
	}
}

func TestLedger_Snapshot_InsertionOrder(t *testing.T) {
	l := New()
	for _, c := range []domain.ClientID{5, 2, 9} {
		l.GetOrCreate(c)
	}

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	for i, want := range []domain.ClientID{5, 2, 9} {
		if snap[i].Client != want {
			t.Errorf("snapshot[%d].Client = %d, want %d", i, snap[i].Client, want)
		}
	}
}

func TestLedger_Snapshot_IsCopy(t *testing.T) {
	l := New()
	l.GetOrCreate(1)
	snap := l.Snapshot()

	l.Apply(1, amt(t, "100"), decimal.Zero)
	if !snap[0].Available.IsZero() {
		t.Error("snapshot aliases live account state")
	}
}
