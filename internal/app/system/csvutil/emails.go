// internal/app/system/csvutil/emails.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/dalemusser/coursehub/internal/app/system/limits"
)

// RowError describes one rejected roster line.
type RowError struct {
	Line   int    `json:"line"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Roster is the result of scanning a roster CSV.
type Roster struct {
	Emails []string   `json:"emails"`
	Errors []RowError `json:"errors,omitempty"`
}

func (r Roster) HasErrors() bool { return len(r.Errors) > 0 }

// PreScanRoster reads an e-mail roster. The address is taken from the column
// headed "email" when a header row is present, otherwise from the first
// column. Blank lines are skipped and addresses are lower-cased and
// de-duplicated. It never writes to a store.
func PreScanRoster(r io.Reader) (Roster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := Roster{Emails: []string{}}
	seen := map[string]bool{}
	col := 0
	line := 0

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Roster{}, fmt.Errorf("read roster: %w", err)
		}
		line++
		if line > limits.MaxCSVRows {
			return Roster{}, fmt.Errorf("roster has more than %d rows", limits.MaxCSVRows)
		}

		if line == 1 {
			if i := headerColumn(rec); i >= 0 {
				col = i
				continue
			}
		}
		if col >= len(rec) {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(rec[col]))
		if v == "" {
			continue
		}
		if a, err := mail.ParseAddress(v); err != nil || a.Address != v {
			out.Errors = append(out.Errors, RowError{Line: line, Value: v, Reason: "not an e-mail address"})
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out.Emails = append(out.Emails, v)
	}
	return out, nil
}

func headerColumn(rec []string) int {
	for i, f := range rec {
		if strings.EqualFold(strings.TrimSpace(f), "email") {
			return i
		}
	}
	return -1
}
