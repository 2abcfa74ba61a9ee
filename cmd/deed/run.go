package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/deed-xyz/go-deed/eventlog"
	"github.com/deed-xyz/go-deed/registry"
)

// operation is one line of a run script.
type operation struct {
	Op       string `json:"op"`
	Caller   string `json:"caller,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Delegate string `json:"delegate,omitempty"`
	Operator string `json:"operator,omitempty"`
	TokenID  string `json:"token_id,omitempty"`
	URI      string `json:"uri,omitempty"`
	Approved bool   `json:"approved,omitempty"`
}

func run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	csvOut := fs.String("csv", "", "Write emitted events to a CSV file")
	jsonlOut := fs.String("jsonl", "", "Write emitted events to a JSONL file")
	dbOut := fs.String("db", "", "Append emitted events to a SQLite event store")
	state := fs.Bool("state", false, "Print final owners, balances and state CID")
	strict := fs.Bool("strict", false, "Exit with an error on the first failed operation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deed run <script.jsonl> [options]

Execute a JSONL operation script against a fresh registry. Each line is one
operation:

  {"op":"mint","to":"alice","token_id":"1","uri":"ipfs://deed/1"}
  {"op":"approve","caller":"alice","delegate":"bob","token_id":"1"}
  {"op":"setApprovalForAll","caller":"alice","operator":"carol","approved":true}
  {"op":"transfer","caller":"bob","from":"alice","to":"carol","token_id":"1"}

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("script file required")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	log := eventlog.NewLog()
	reg := registry.New().WithSink(log)

	executed := 0
	failed := 0
	line := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(text) == 0 {
			continue
		}

		var op operation
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		executed++
		if err := applyOp(reg, op); err != nil {
			failed++
			fmt.Printf("line %d: %s FAILED: %v\n", line, op.Op, err)
			if *strict {
				return fmt.Errorf("line %d: %s: %w", line, op.Op, err)
			}
			continue
		}
		fmt.Printf("line %d: %s ok\n", line, op.Op)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	fmt.Printf("\n%d operations, %d failed, %d events emitted\n", executed, failed, log.Len())

	if *csvOut != "" {
		if err := eventlog.ExportCSV(*csvOut, log.Events()); err != nil {
			return err
		}
		fmt.Printf("Events written to %s\n", *csvOut)
	}
	if *jsonlOut != "" {
		if err := eventlog.ExportJSONL(*jsonlOut, log.Events()); err != nil {
			return err
		}
		fmt.Printf("Events written to %s\n", *jsonlOut)
	}
	if *dbOut != "" {
		store, err := eventlog.OpenStore(*dbOut)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Append(context.Background(), log.Events()...); err != nil {
			return err
		}
		fmt.Printf("Events appended to %s\n", *dbOut)
	}

	if *state {
		printState(reg.Snapshot())
	}
	return nil
}

func applyOp(reg *registry.Registry, op operation) error {
	switch op.Op {
	case "mint":
		id, err := registry.ParseID(op.TokenID)
		if err != nil {
			return err
		}
		return reg.Mint(registry.Account(op.To), id, op.URI)
	case "approve":
		id, err := registry.ParseID(op.TokenID)
		if err != nil {
			return err
		}
		return reg.Approve(registry.Account(op.Caller), registry.Account(op.Delegate), id)
	case "setApprovalForAll":
		return reg.SetApprovalForAll(registry.Account(op.Caller), registry.Account(op.Operator), op.Approved)
	case "transfer":
		id, err := registry.ParseID(op.TokenID)
		if err != nil {
			return err
		}
		return reg.Transfer(registry.Account(op.Caller), registry.Account(op.From), registry.Account(op.To), id)
	}
	return fmt.Errorf("unknown op %q", op.Op)
}

func printState(s *registry.Snapshot) {
	fmt.Println("\n=== Registry State ===")

	type row struct {
		token string
		owner string
	}
	rows := make([]row, 0, len(s.Owners))
	for id, owner := range s.Owners {
		rows = append(rows, row{token: registry.FormatID(id), owner: string(owner)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].token < rows[j].token })
	for _, r := range rows {
		fmt.Printf("token %s -> %s\n", r.token, r.owner)
	}

	balances := make([]string, 0, len(s.Balances))
	for account := range s.Balances {
		balances = append(balances, string(account))
	}
	sort.Strings(balances)
	for _, account := range balances {
		fmt.Printf("balance %s = %d\n", account, s.Balances[registry.Account(account)])
	}

	fmt.Printf("CID %s\n", s.CID())
}
