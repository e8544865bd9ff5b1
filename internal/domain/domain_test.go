package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// ─── Kind Tests ─────────────────────────────────────────────────────────────

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"deposit", KindDeposit},
		{"withdrawal", KindWithdrawal},
		{"dispute", KindDispute},
		{"resolve", KindResolve},
		{"chargeback", KindChargeback},
		{"Deposit", KindDeposit}, // case-insensitive
		{"CHARGEBACK", KindChargeback},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if err != nil {
				t.Fatalf("ParseKind(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseKind_Unknown(t *testing.T) {
	for _, in := range []string{"", "transfer", "deposits", "charge back"} {
		if _, err := ParseKind(in); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", in, err)
		}
	}
}

func TestKind_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback} {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestKind_Funded(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindDeposit, true},
		{KindWithdrawal, true},
		{KindDispute, false},
		{KindResolve, false},
		{KindChargeback, false},
	}
	for _, tt := range tests {
		if got := tt.kind.Funded(); got != tt.want {
			t.Errorf("%v.Funded() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// ─── Amount Tests ───────────────────────────────────────────────────────────

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10.0000"},
		{"10.5", "10.5000"},
		{"0.0001", "0.0001"},
		{"0", "0.0000"},
		{"12345.6789", "12345.6789"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			if err != nil {
				t.Fatalf("ParseAmount(%q) error: %v", tt.in, err)
			}
			if got := FormatAmount(d); got != tt.want {
				t.Errorf("FormatAmount(ParseAmount(%q)) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount_Negative(t *testing.T) {
	if _, err := ParseAmount("-1.0"); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("ParseAmount(-1.0) error = %v, want ErrNegativeAmount", err)
	}
}

func TestParseAmount_Garbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1,5"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) expected error, got nil", in)
		}
	}
}

func TestFormatAmount_ExactReversal(t *testing.T) {
	// A dispute cycle must be exactly reversible: a - b + b == a.
	a := decimal.RequireFromString("100.1234")
	b := decimal.RequireFromString("0.0003")
	got := a.Sub(b).Add(b)
	if !got.Equal(a) {
		t.Errorf("a - b + b = %s, want %s", got, a)
	}
}

// ─── DisputeState Tests ─────────────────────────────────────────────────────

func TestDisputeState_String(t *testing.T) {
	tests := []struct {
		state DisputeState
		want  string
	}{
		{DisputeNone, "normal"},
		{DisputeOpen, "disputed"},
		{DisputeResolved, "resolved"},
		{DisputeChargedBack, "charged_back"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("DisputeState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
