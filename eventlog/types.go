// Package eventlog collects the observation records emitted by an
// ownership registry: Transfer, Approval and ApprovalForAll. The in-memory
// Log is an append-only sink preserving emission order; records can be
// exported to CSV, JSONL or a SQLite store for external indexers, and an
// exported stream can be replayed back into a state snapshot.
package eventlog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deed-xyz/go-deed/registry"
)

// Event is a registry observation record enriched with log bookkeeping.
type Event struct {
	ID        string    // unique record id
	Seq       uint64    // 1-based position in emission order
	Timestamp time.Time // when the record was appended

	registry.Event
}

// Log is an append-only, in-memory event sink. It implements
// registry.Sink; attach it with registry.WithSink.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Emit appends a registry event, assigning it an id, a sequence number and
// a timestamp. The registry calls this while holding its write lock, so
// sequence order matches operation completion order.
func (l *Log) Emit(e registry.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, Event{
		ID:        uuid.New().String(),
		Seq:       uint64(len(l.events)) + 1,
		Timestamp: time.Now().UTC(),
		Event:     e,
	})
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of all records in emission order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// ByKind returns records of one kind, in emission order.
func (l *Log) ByKind(kind registry.EventKind) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ByToken returns records touching one token, in emission order.
// ApprovalForAll records carry no token and are never included.
func (l *Log) ByToken(id registry.TokenID) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.Kind != registry.KindApprovalForAll && e.TokenID == id {
			out = append(out, e)
		}
	}
	return out
}

// ByAccount returns records where the account appears on either side.
func (l *Log) ByAccount(a registry.Account) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.From == a || e.To == a {
			out = append(out, e)
		}
	}
	return out
}

// Summary provides basic statistics over an event stream.
type Summary struct {
	NumEvents      int
	NumMints       int
	NumTransfers   int // ownership moves, mints excluded
	NumApprovals   int
	NumOperatorOps int
	UniqueTokens   int
	UniqueAccounts int
	StartTime      time.Time
	EndTime        time.Time
}

// Summarize computes summary statistics for a slice of events.
func Summarize(events []Event) Summary {
	s := Summary{NumEvents: len(events)}
	if len(events) == 0 {
		return s
	}

	tokens := make(map[string]bool)
	accounts := make(map[registry.Account]bool)

	s.StartTime = events[0].Timestamp
	s.EndTime = events[0].Timestamp

	for _, e := range events {
		switch e.Kind {
		case registry.KindTransfer:
			if e.From.IsNull() {
				s.NumMints++
			} else {
				s.NumTransfers++
			}
			tokens[registry.FormatID(e.TokenID)] = true
		case registry.KindApproval:
			s.NumApprovals++
			tokens[registry.FormatID(e.TokenID)] = true
		case registry.KindApprovalForAll:
			s.NumOperatorOps++
		}

		if !e.From.IsNull() {
			accounts[e.From] = true
		}
		if !e.To.IsNull() {
			accounts[e.To] = true
		}

		if e.Timestamp.Before(s.StartTime) {
			s.StartTime = e.Timestamp
		}
		if e.Timestamp.After(s.EndTime) {
			s.EndTime = e.Timestamp
		}
	}

	s.UniqueTokens = len(tokens)
	s.UniqueAccounts = len(accounts)
	return s
}

// Accounts returns the sorted list of non-null accounts seen in the stream.
func Accounts(events []Event) []string {
	seen := make(map[string]bool)
	for _, e := range events {
		if !e.From.IsNull() {
			seen[string(e.From)] = true
		}
		if !e.To.IsNull() {
			seen[string(e.To)] = true
		}
	}

	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Print prints the summary to stdout.
func (s Summary) Print() {
	fmt.Println("=== Event Log Summary ===")
	fmt.Printf("Events: %d\n", s.NumEvents)
	fmt.Printf("Mints: %d\n", s.NumMints)
	fmt.Printf("Transfers: %d\n", s.NumTransfers)
	fmt.Printf("Approvals: %d\n", s.NumApprovals)
	fmt.Printf("Operator changes: %d\n", s.NumOperatorOps)
	fmt.Printf("Unique tokens: %d\n", s.UniqueTokens)
	fmt.Printf("Unique accounts: %d\n", s.UniqueAccounts)
	if s.NumEvents > 0 {
		fmt.Printf("Time range: %s to %s\n",
			s.StartTime.Format(time.RFC3339),
			s.EndTime.Format(time.RFC3339))
	}
}
