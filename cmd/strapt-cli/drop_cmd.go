package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"straptledger/config"
	"straptledger/native/drop"
)

func dropUsage() string {
	return `Usage: strapt-cli drop <subcommand> [flags]

Subcommands:
  create   Create a multi-claimant pool
  claim    Claim a share from a pool
  refund   Refund an expired pool's remainder to its creator
  get      Show a pool`
}

func runDropCommand(l *ledger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, dropUsage())
		return 1
	}
	switch args[0] {
	case "create":
		return runDropCreate(l, args[1:], stdout, stderr)
	case "claim":
		return runDropClaim(l, args[1:], stdout, stderr)
	case "refund":
		return runDropRefund(l, args[1:], stdout, stderr)
	case "get":
		return runDropGet(l, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown drop subcommand: %s\n", args[0])
		fmt.Fprintln(stderr, dropUsage())
		return 1
	}
}

func newDropFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runDropCreate(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newDropFlagSet("drop create", stderr)
	var (
		from       string
		asset      string
		amountStr  string
		recipients uint
		random     bool
		message    string
		expiry     int64
	)
	fs.StringVar(&from, "from", "", "creator hex address")
	fs.StringVar(&asset, "asset", "", "asset symbol")
	fs.StringVar(&amountStr, "amount", "", "gross amount in base units")
	fs.UintVar(&recipients, "recipients", 0, "maximum number of claimants")
	fs.BoolVar(&random, "random", false, "use pseudo-random shares instead of fixed")
	fs.StringVar(&message, "message", "", "optional annotation (256 bytes max)")
	fs.Int64Var(&expiry, "expiry", 0, "expiry as unix seconds (0 selects the default window)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if from == "" {
		return printError(stderr, "--from is required")
	}
	creator, err := config.ParseAddress(from)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if asset == "" {
		return printError(stderr, "--asset is required")
	}
	if amountStr == "" {
		return printError(stderr, "--amount is required")
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	mode := drop.ModeFixed
	if random {
		mode = drop.ModeRandom
	}
	pool, err := l.drops.Create(drop.CreateParams{
		Creator:         creator,
		Asset:           asset,
		Amount:          amount,
		TotalRecipients: uint32(recipients),
		Mode:            mode,
		Message:         message,
		Expiry:          expiry,
	})
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, newDropView(pool))
	return 0
}

func runDropClaim(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newDropFlagSet("drop claim", stderr)
	var (
		idStr  string
		caller string
	)
	fs.StringVar(&idStr, "id", "", "pool identifier")
	fs.StringVar(&caller, "caller", "", "claimant hex address")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if idStr == "" {
		return printError(stderr, "--id is required")
	}
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	id, err := parseID(idStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	claimant, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	claim, err := l.drops.Claim(id, claimant)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, struct {
		Claimant  string `json:"claimant"`
		Amount    string `json:"amount"`
		ClaimedAt int64  `json:"claimedAt"`
	}{hexAddr(claim.Claimant), claim.Amount.String(), claim.ClaimedAt})
	return 0
}

func runDropRefund(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newDropFlagSet("drop refund", stderr)
	var (
		idStr  string
		caller string
	)
	fs.StringVar(&idStr, "id", "", "pool identifier")
	fs.StringVar(&caller, "caller", "", "creator hex address")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if idStr == "" {
		return printError(stderr, "--id is required")
	}
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	id, err := parseID(idStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	creator, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	pool, err := l.drops.RefundExpired(id, creator)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, newDropView(pool))
	return 0
}

func runDropGet(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newDropFlagSet("drop get", stderr)
	var (
		idStr    string
		claimant string
	)
	fs.StringVar(&idStr, "id", "", "pool identifier")
	fs.StringVar(&claimant, "claimant", "", "optional claimant to check membership for")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if idStr == "" {
		return printError(stderr, "--id is required")
	}
	id, err := parseID(idStr)
	if err != nil {
		return printError(stderr, err.Error())
	}
	pool, err := l.drops.Get(id)
	if errors.Is(err, drop.ErrNotFound) {
		return printError(stderr, "pool not found")
	}
	if err != nil {
		return printError(stderr, err.Error())
	}
	if claimant == "" {
		writeJSON(stdout, newDropView(pool))
		return 0
	}
	addr, err := config.ParseAddress(claimant)
	if err != nil {
		return printError(stderr, err.Error())
	}
	claim, claimed := l.drops.HasClaimed(id, addr)
	view := struct {
		dropView
		Claimed       bool   `json:"claimed"`
		ClaimedAmount string `json:"claimedAmount,omitempty"`
	}{dropView: newDropView(pool), Claimed: claimed}
	if claimed {
		view.ClaimedAmount = claim.Amount.String()
	}
	writeJSON(stdout, view)
	return 0
}
