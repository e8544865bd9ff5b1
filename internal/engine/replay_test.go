package engine

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/reckon-ledger/reckon/internal/report"
	"github.com/reckon-ledger/reckon/internal/source"
)

// replayCSV runs a full CSV through the engine and renders the report,
// returning the output and the run error.
func replayCSV(t *testing.T, input string) (string, error) {
	t.Helper()
	p := newProcessor()
	err := p.Process(context.Background(), source.NewCSV(strings.NewReader(input)))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if werr := report.WriteCSV(&out, p.Ledger().Snapshot()); werr != nil {
		t.Fatalf("write report: %v", werr)
	}
	return out.String(), nil
}

// sortedLines compares reports ignoring account row order, which
// carries no semantics.
func sortedLines(s string) []string {
	lines := strings.Fields(s)
	sort.Strings(lines)
	return lines
}

func wantReport(t *testing.T, got, want string) {
	t.Helper()
	g, w := sortedLines(got), sortedLines(want)
	if len(g) != len(w) {
		t.Fatalf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
		}
	}
}

func TestReplay_Simple(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,10.0
withdrawal,1,2,5.0
`
	got, err := replayCSV(t, input)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	wantReport(t, got, `client,available,held,total,locked
1,5.0000,0.0000,5.0000,false
`)
}

func TestReplay_Complex(t *testing.T) {
	input := `type, client, tx, amount
deposit, 1, 1, 10.0
deposit, 2, 2, 20.0
withdrawal, 1, 3, 2.5
dispute, 1, 1,
resolve, 1, 1,
dispute, 2, 2,
withdrawal, 2, 4, 1.0
chargeback, 2, 2,
deposit, 2, 5, 100.0
`
	got, err := replayCSV(t, input)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	// Client 1: 10 - 2.5 after a full dispute/resolve round trip.
	// Client 2: dispute holds the 20, so the withdrawal of 1.0 fails
	// (available 0), the chargeback removes the 20 and locks, and the
	// final deposit is rejected on the locked account.
	wantReport(t, got, `client,available,held,total,locked
1,7.5000,0.0000,7.5000,false
2,0.0000,0.0000,0.0000,true
`)
}

func TestReplay_UnseenReferences(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,5.0
dispute,1,99,
resolve,1,99,
chargeback,1,99,
dispute,2,1,
`
	got, err := replayCSV(t, input)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	wantReport(t, got, `client,available,held,total,locked
1,5.0000,0.0000,5.0000,false
`)
}

func TestReplay_StructuralErrorsAbort(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "invalid header",
			input: "kind,client,tx,amount\ndeposit,1,1,10.0\n",
		},
		{
			name:  "invalid amount",
			input: "type,client,tx,amount\ndeposit,1,1,ten\n",
		},
		{
			name:  "invalid type literal",
			input: "type,client,tx,amount\ntransfer,1,1,10.0\n",
		},
		{
			name:  "negative amount",
			input: "type,client,tx,amount\ndeposit,1,1,-10.0\n",
		},
		{
			name:  "missing amount on deposit",
			input: "type,client,tx,amount\ndeposit,1,1,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := replayCSV(t, tt.input); err == nil {
				t.Fatal("expected run to abort, got nil error")
			}
		})
	}
}

func TestReplay_EmptyInput(t *testing.T) {
	got, err := replayCSV(t, "type,client,tx,amount\n")
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	wantReport(t, got, "client,available,held,total,locked\n")
}

func TestReplay_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newProcessor()
	err := p.Process(ctx, source.NewCSV(strings.NewReader("type,client,tx,amount\n")))
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
}
