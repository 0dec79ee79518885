// Package export writes ledger records to CSV and reads them back as a
// snapshot for import.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// Header is the CSV column order.
var Header = []string{"id", "date", "title", "amount", "type", "category", "is_recurring", "recurrence_type"}

var ErrBadHeader = errors.New("unexpected CSV header")

// WriteCSV writes a header and one row per record, in the order given.
// It returns the number of rows written.
func WriteCSV(w io.Writer, records iter.Seq[*ledger.Record]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	n := 0
	for r := range records {
		recurrence := ""
		if r.Interval != model.None {
			recurrence = r.Interval.String()
		}
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Date.String(),
			r.Title,
			r.Amount.String(),
			r.Kind.String(),
			r.Category,
			strconv.FormatBool(r.Recurring),
			recurrence,
		}
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("writing row %d: %w", r.ID, err)
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flushing csv: %w", err)
	}
	return n, nil
}

// ReadCSV parses a file written by WriteCSV into a snapshot whose records
// run oldest first, ready for pipeline.Merge. Field values are validated
// later by the ledger.
func ReadCSV(r io.Reader) (ledger.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("reading header: %w", err)
	}
	if !slices.Equal(head, Header) {
		return ledger.Snapshot{}, fmt.Errorf("%w: %v", ErrBadHeader, head)
	}

	var recs []ledger.SnapshotRecord
	var maxID int64
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ledger.Snapshot{}, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return ledger.Snapshot{}, fmt.Errorf("line %d: id %q: %w", line, row[0], err)
		}
		recurring, err := strconv.ParseBool(row[6])
		if err != nil {
			return ledger.Snapshot{}, fmt.Errorf("line %d: is_recurring %q: %w", line, row[6], err)
		}
		sr := ledger.SnapshotRecord{
			ID:          id,
			Date:        row[1],
			Title:       row[2],
			Amount:      json.Number(row[3]),
			Type:        row[4],
			Category:    row[5],
			IsRecurring: recurring,
		}
		if row[7] != "" {
			rt := row[7]
			sr.RecurrenceType = &rt
		}
		recs = append(recs, sr)
		maxID = max(maxID, id)
	}

	// Exports are newest first.
	slices.Reverse(recs)
	return ledger.Snapshot{Transactions: recs, NextID: maxID + 1}, nil
}
