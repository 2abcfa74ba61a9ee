package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deed-xyz/go-deed/eventlog"
	"github.com/deed-xyz/go-deed/registry"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	kind := fs.String("kind", "", "Only show events of this kind (Transfer, Approval, ApprovalForAll)")
	token := fs.String("token", "", "Only show events touching this token id")
	csvOut := fs.String("csv", "", "Convert to a CSV file")
	jsonlOut := fs.String("jsonl", "", "Convert to a JSONL file")
	quiet := fs.Bool("quiet", false, "Suppress the record listing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deed events <events.csv|events.jsonl> [options]

Read an event file, list its records, and optionally convert it.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("event file required")
	}

	evs, err := loadEvents(fs.Arg(0))
	if err != nil {
		return err
	}

	if *kind != "" {
		evs = filterKind(evs, registry.EventKind(*kind))
	}
	if *token != "" {
		id, err := registry.ParseID(*token)
		if err != nil {
			return fmt.Errorf("bad token id %q: %w", *token, err)
		}
		evs = filterToken(evs, id)
	}

	if !*quiet {
		for _, e := range evs {
			fmt.Println(formatEvent(e))
		}
		fmt.Printf("%d records\n", len(evs))
	}

	if *csvOut != "" {
		if err := eventlog.ExportCSV(*csvOut, evs); err != nil {
			return err
		}
		fmt.Printf("Written to %s\n", *csvOut)
	}
	if *jsonlOut != "" {
		if err := eventlog.ExportJSONL(*jsonlOut, evs); err != nil {
			return err
		}
		fmt.Printf("Written to %s\n", *jsonlOut)
	}
	return nil
}

// loadEvents reads an event file, picking the parser by file extension.
func loadEvents(path string) ([]eventlog.Event, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return eventlog.ParseCSV(path)
	case ".jsonl":
		return eventlog.ParseJSONL(path)
	}
	return nil, fmt.Errorf("unsupported event file %q (want .csv or .jsonl)", path)
}

func filterKind(evs []eventlog.Event, kind registry.EventKind) []eventlog.Event {
	var out []eventlog.Event
	for _, e := range evs {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func filterToken(evs []eventlog.Event, id registry.TokenID) []eventlog.Event {
	var out []eventlog.Event
	for _, e := range evs {
		if e.Kind != registry.KindApprovalForAll && e.TokenID == id {
			out = append(out, e)
		}
	}
	return out
}

func formatEvent(e eventlog.Event) string {
	switch e.Kind {
	case registry.KindTransfer:
		if e.From.IsNull() {
			return fmt.Sprintf("%4d Mint     token %s -> %s uri=%q", e.Seq, registry.FormatID(e.TokenID), e.To, e.URI)
		}
		return fmt.Sprintf("%4d Transfer token %s %s -> %s", e.Seq, registry.FormatID(e.TokenID), e.From, e.To)
	case registry.KindApproval:
		if e.To.IsNull() {
			return fmt.Sprintf("%4d Approval token %s cleared by %s", e.Seq, registry.FormatID(e.TokenID), e.From)
		}
		return fmt.Sprintf("%4d Approval token %s %s delegates %s", e.Seq, registry.FormatID(e.TokenID), e.From, e.To)
	case registry.KindApprovalForAll:
		return fmt.Sprintf("%4d Operator %s -> %s approved=%t", e.Seq, e.From, e.To, e.Approved)
	}
	return fmt.Sprintf("%4d %s", e.Seq, e.Kind)
}
