package eventlog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deed-xyz/go-deed/registry"
)

func TestCSV_RoundTrip(t *testing.T) {
	_, log := scenario(t)
	events := log.Events()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, events); err != nil {
		t.Fatalf("write: %v", err)
	}

	parsed, err := ParseCSVReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(parsed))
	}

	for i, e := range events {
		p := parsed[i]
		if p.Seq != e.Seq || p.ID != e.ID || p.Kind != e.Kind ||
			p.From != e.From || p.To != e.To || p.TokenID != e.TokenID ||
			p.Approved != e.Approved || p.URI != e.URI {
			t.Errorf("event %d: expected %+v, got %+v", i, e, p)
		}
		if !p.Timestamp.Equal(e.Timestamp) {
			t.Errorf("event %d: expected timestamp %v, got %v", i, e.Timestamp, p.Timestamp)
		}
	}
}

func TestCSV_File(t *testing.T) {
	_, log := scenario(t)

	path := filepath.Join(t.TempDir(), "events.csv")
	if err := ExportCSV(path, log.Events()); err != nil {
		t.Fatalf("export: %v", err)
	}

	parsed, err := ParseCSV(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != log.Len() {
		t.Errorf("expected %d events, got %d", log.Len(), len(parsed))
	}
}

func TestParseCSVReader_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong column count", "seq,id\n"},
		{"bad seq", "seq,id,kind,from,to,token_id,approved,uri,timestamp\nx,a,Transfer,,alice,1,false,u,2026-01-02T15:04:05Z\n"},
		{"bad token id", "seq,id,kind,from,to,token_id,approved,uri,timestamp\n1,a,Transfer,,alice,abc,false,u,2026-01-02T15:04:05Z\n"},
		{"bad timestamp", "seq,id,kind,from,to,token_id,approved,uri,timestamp\n1,a,Transfer,,alice,1,false,u,yesterday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSVReader(strings.NewReader(tt.input)); err == nil {
				t.Error("expected parse error, got nil")
			}
		})
	}
}

func TestCSV_ApprovalForAllTokenColumn(t *testing.T) {
	log := NewLog()
	r := registry.New().WithSink(log)
	if err := r.SetApprovalForAll(alice, bob, true); err != nil {
		t.Fatalf("setApprovalForAll: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, log.Events()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	cols := strings.Split(lines[1], ",")
	if cols[5] != "" {
		t.Errorf("expected empty token column for ApprovalForAll, got %q", cols[5])
	}
	if cols[6] != "true" {
		t.Errorf("expected approved column true, got %q", cols[6])
	}
}
