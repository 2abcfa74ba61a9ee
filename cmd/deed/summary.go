package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/deed-xyz/go-deed/eventlog"
)

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	accounts := fs.Bool("accounts", false, "Also list the accounts seen in the stream")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deed summary <events.csv|events.jsonl> [options]

Show statistics for an event file.

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

	eventlog.Summarize(evs).Print()

	if *accounts {
		fmt.Println("Accounts:")
		for _, a := range eventlog.Accounts(evs) {
			fmt.Printf("  %s\n", a)
		}
	}
	return nil
}
