package eventlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/deed-xyz/go-deed/registry"
)

// csvHeader is the fixed column layout of exported event files.
var csvHeader = []string{"seq", "id", "kind", "from", "to", "token_id", "approved", "uri", "timestamp"}

// timestampFormats are tried in order when parsing event files produced by
// other tooling.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// WriteCSV writes events in emission order to w.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range events {
		row := []string{
			strconv.FormatUint(e.Seq, 10),
			e.ID,
			string(e.Kind),
			string(e.From),
			string(e.To),
			tokenColumn(e),
			strconv.FormatBool(e.Approved),
			e.URI,
			e.Timestamp.Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing event %d: %w", e.Seq, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes events to a file.
func ExportCSV(filename string, events []Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteCSV(f, events)
}

// ParseCSV reads an event file.
func ParseCSV(filename string) ([]Event, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseCSVReader(f)
}

// ParseCSVReader reads events from a CSV stream written by WriteCSV.
func ParseCSVReader(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(header))
	}

	var events []Event
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		e, err := eventFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}

	return events, nil
}

func eventFromRow(row []string) (Event, error) {
	seq, err := strconv.ParseUint(row[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("bad seq %q: %w", row[0], err)
	}

	var id registry.TokenID
	if row[5] != "" {
		id, err = registry.ParseID(row[5])
		if err != nil {
			return Event{}, fmt.Errorf("bad token id %q: %w", row[5], err)
		}
	}

	approved, err := strconv.ParseBool(row[6])
	if err != nil {
		return Event{}, fmt.Errorf("bad approved flag %q: %w", row[6], err)
	}

	ts, err := parseTimestamp(row[8])
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        row[1],
		Seq:       seq,
		Timestamp: ts,
		Event: registry.Event{
			Kind:     registry.EventKind(row[2]),
			From:     registry.Account(row[3]),
			To:       registry.Account(row[4]),
			TokenID:  id,
			Approved: approved,
			URI:      row[7],
		},
	}, nil
}

// tokenColumn renders the token id column; ApprovalForAll records carry no
// token, so their column is left empty.
func tokenColumn(e Event) string {
	if e.Kind == registry.KindApprovalForAll {
		return ""
	}
	return registry.FormatID(e.TokenID)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
