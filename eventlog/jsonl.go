package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deed-xyz/go-deed/registry"
)

// record is the JSONL wire form of an event. Token ids travel as decimal
// strings so consumers never face 256-bit integer precision issues.
type record struct {
	Seq       uint64 `json:"seq"`
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	Approved  bool   `json:"approved,omitempty"`
	URI       string `json:"uri,omitempty"`
	Timestamp string `json:"timestamp"`
}

// WriteJSONL writes events as JSON Lines, one record per line.
func WriteJSONL(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, e := range events {
		rec := record{
			Seq:       e.Seq,
			ID:        e.ID,
			Kind:      string(e.Kind),
			From:      string(e.From),
			To:        string(e.To),
			TokenID:   tokenColumn(e),
			Approved:  e.Approved,
			URI:       e.URI,
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding event %d: %w", e.Seq, err)
		}
	}

	return bw.Flush()
}

// ExportJSONL writes events to a file.
func ExportJSONL(filename string, events []Event) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return WriteJSONL(f, events)
}

// ParseJSONL reads an event file written by WriteJSONL.
func ParseJSONL(filename string) ([]Event, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseJSONLReader(f)
}

// ParseJSONLReader reads events from a JSONL stream. Blank lines are
// skipped; any malformed line fails the whole parse.
func ParseJSONLReader(r io.Reader) ([]Event, error) {
	var events []Event

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(text) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		e, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	return events, nil
}

func (rec record) toEvent() (Event, error) {
	var id registry.TokenID
	if rec.TokenID != "" {
		parsed, err := registry.ParseID(rec.TokenID)
		if err != nil {
			return Event{}, fmt.Errorf("bad token id %q: %w", rec.TokenID, err)
		}
		id = parsed
	}

	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        rec.ID,
		Seq:       rec.Seq,
		Timestamp: ts,
		Event: registry.Event{
			Kind:     registry.EventKind(rec.Kind),
			From:     registry.Account(rec.From),
			To:       registry.Account(rec.To),
			TokenID:  id,
			Approved: rec.Approved,
			URI:      rec.URI,
		},
	}, nil
}
