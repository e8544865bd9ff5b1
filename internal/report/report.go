// Package report renders the final ledger snapshot. The core's contract
// ends at supplying the snapshot rows; rendering lives here.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/reckon-ledger/reckon/internal/domain"
	"github.com/reckon-ledger/reckon/internal/ledger"
)

// WriteCSV writes the snapshot as CSV with amounts fixed to 4 decimal
// places:
//
//	client,available,held,total,locked
//	1,10.0000,0.0000,10.0000,false
func WriteCSV(w io.Writer, accounts []ledger.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, acct := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acct.Client), 10),
			domain.FormatAmount(acct.Available),
			domain.FormatAmount(acct.Held),
			domain.FormatAmount(acct.Total),
			strconv.FormatBool(acct.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write account %d: %w", acct.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
