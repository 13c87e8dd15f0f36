package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"straptledger/config"
	"straptledger/native/transfer"
)

func transferUsage() string {
	return `Usage: strapt-cli transfer <subcommand> [flags]

Subcommands:
  create          Create a direct or link transfer
  claim           Claim a pending transfer
  refund          Refund an expired transfer to its creator
  instant-refund  Refund an unclaimed transfer before expiry
  get             Show a transfer record`
}

func runTransferCommand(l *ledger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, transferUsage())
		return 1
	}
	switch args[0] {
	case "create":
		return runTransferCreate(l, args[1:], stdout, stderr)
	case "claim":
		return runTransferClaim(l, args[1:], stdout, stderr)
	case "refund":
		return runTransferRefund(l, args[1:], stdout, stderr, false)
	case "instant-refund":
		return runTransferRefund(l, args[1:], stdout, stderr, true)
	case "get":
		return runTransferGet(l, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown transfer subcommand: %s\n", args[0])
		fmt.Fprintln(stderr, transferUsage())
		return 1
	}
}

func newTransferFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runTransferCreate(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newTransferFlagSet("transfer create", stderr)
	var (
		from      string
		to        string
		asset     string
		amountStr string
		expiry    int64
		password  string
		link      bool
	)
	fs.StringVar(&from, "from", "", "creator hex address")
	fs.StringVar(&to, "to", "", "recipient hex address (direct transfers only)")
	fs.StringVar(&asset, "asset", "", "asset symbol")
	fs.StringVar(&amountStr, "amount", "", "gross amount in base units")
	fs.Int64Var(&expiry, "expiry", 0, "expiry as unix seconds (0 selects the default window)")
	fs.StringVar(&password, "password", "", "optional claim password")
	fs.BoolVar(&link, "link", false, "create a link transfer claimable by anyone")
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
	var recipient [20]byte
	if to != "" {
		if recipient, err = config.ParseAddress(to); err != nil {
			return printError(stderr, err.Error())
		}
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
	kind := transfer.KindDirect
	if link {
		kind = transfer.KindLink
	}
	params := transfer.CreateParams{
		Creator:   creator,
		Recipient: recipient,
		Kind:      kind,
		Asset:     asset,
		Amount:    amount,
		Expiry:    expiry,
	}
	if password != "" {
		params.PasswordHash = transfer.HashPassword([]byte(password))
		params.HasPassword = true
	}
	record, err := l.transfers.Create(params)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, newTransferView(record))
	return 0
}

func runTransferClaim(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newTransferFlagSet("transfer claim", stderr)
	var (
		idStr    string
		caller   string
		password string
	)
	fs.StringVar(&idStr, "id", "", "transfer identifier")
	fs.StringVar(&caller, "caller", "", "claimant hex address")
	fs.StringVar(&password, "password", "", "claim password when the transfer is gated")
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
	var secret []byte
	if password != "" {
		secret = []byte(password)
	}
	record, err := l.transfers.Claim(id, claimant, secret)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, newTransferView(record))
	return 0
}

func runTransferRefund(l *ledger, args []string, stdout, stderr io.Writer, instant bool) int {
	name := "transfer refund"
	if instant {
		name = "transfer instant-refund"
	}
	fs := newTransferFlagSet(name, stderr)
	var (
		idStr  string
		caller string
	)
	fs.StringVar(&idStr, "id", "", "transfer identifier")
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
	var record *transfer.Record
	if instant {
		record, err = l.transfers.InstantRefund(id, creator)
	} else {
		record, err = l.transfers.Refund(id, creator)
	}
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, newTransferView(record))
	return 0
}

func runTransferGet(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newTransferFlagSet("transfer get", stderr)
	var idStr string
	fs.StringVar(&idStr, "id", "", "transfer identifier")
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
	record, err := l.transfers.Get(id)
	if errors.Is(err, transfer.ErrNotFound) {
		return printError(stderr, "transfer not found")
	}
	if err != nil {
		return printError(stderr, err.Error())
	}
	view := struct {
		transferView
		Claimable bool `json:"claimable"`
	}{newTransferView(record), l.transfers.IsClaimable(id)}
	writeJSON(stdout, view)
	return 0
}
