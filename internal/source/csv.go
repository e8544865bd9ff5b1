// Package source reads transaction records off a byte stream.
//
// The CSV source is a pull-based lazy sequence: one record is held in
// memory at a time, so memory stays bounded regardless of input size.
// End of stream (io.EOF) is distinct from a structural parse failure;
// the latter aborts the run.
package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reckon-ledger/reckon/internal/domain"
)

// Expected header columns. The amount column is optional in the header
// and in each row: dispute-family records carry no amount.
var wantHeader = []string{"type", "client", "tx", "amount"}

// CSV streams transaction records from CSV input of the form
//
//	type,client,tx,amount
//	deposit,1,1,10.0
//	dispute,1,1,
//
// Field whitespace is trimmed. Rows may omit the trailing amount field.
type CSV struct {
	r      *csv.Reader
	line   int
	header bool
}

// NewCSV creates a source over r. Nothing is read until the first Next.
func NewCSV(r io.Reader) *CSV {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1 // rows may have 3 or 4 fields
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &CSV{r: cr}
}

// Next returns the next record, io.EOF at end of stream, or a
// structural parse error.
func (s *CSV) Next() (domain.Transaction, error) {
	if !s.header {
		if err := s.readHeader(); err != nil {
			return domain.Transaction{}, err
		}
		s.header = true
		s.line = 1 // header consumed
	}

	fields, err := s.r.Read()
	if errors.Is(err, io.EOF) {
		return domain.Transaction{}, io.EOF
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("read csv: %w", err)
	}
	s.line++

	if len(fields) < 3 || len(fields) > 4 {
		return domain.Transaction{}, fmt.Errorf("line %d: expected 3 or 4 fields, got %d", s.line, len(fields))
	}

	kind, err := domain.ParseKind(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("line %d: %w", s.line, err)
	}

	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("line %d: parse client: %w", s.line, err)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("line %d: parse tx: %w", s.line, err)
	}

	tx := domain.Transaction{
		Kind:   kind,
		Client: domain.ClientID(client),
		ID:     domain.TxID(id),
	}

	if kind.Funded() {
		if len(fields) < 4 || strings.TrimSpace(fields[3]) == "" {
			return domain.Transaction{}, fmt.Errorf("line %d: %s requires an amount", s.line, kind)
		}
		amount, err := domain.ParseAmount(strings.TrimSpace(fields[3]))
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		tx.Amount = amount
	}
	// An amount on a dispute-family row is ignored: those records
	// reference cached amounts, never their own.

	return tx, nil
}

// readHeader consumes and validates the header row.
func (s *CSV) readHeader() error {
	fields, err := s.r.Read()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("invalid header: expected %v", wantHeader)
	}
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f), wantHeader[i]) {
			return fmt.Errorf("invalid header column %d: got %q, want %q", i, f, wantHeader[i])
		}
	}
	return nil
}
