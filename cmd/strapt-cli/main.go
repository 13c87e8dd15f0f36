package main

import (
	"fmt"
	"io"
	"os"

	"straptledger/config"
	"straptledger/core/state"
)

const defaultConfigPath = "./config.toml"

func main() {
	args := os.Args[1:]
	configPath := defaultConfigPath
	if env := os.Getenv("STRAPT_CONFIG"); env != "" {
		configPath = env
	}
	if len(args) >= 2 && args[0] == "--config" {
		configPath = args[1]
		args = args[2:]
	}
	if len(args) < 1 {
		printUsage()
		return
	}
	os.Exit(run(configPath, args, os.Stdout, os.Stderr))
}

func run(configPath string, args []string, stdout, stderr io.Writer) int {
	l, err := openLedger(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer l.Close()

	switch args[0] {
	case "admin":
		return runAdminCommand(l, args[1:], stdout, stderr)
	case "transfer":
		return runTransferCommand(l, args[1:], stdout, stderr)
	case "drop":
		return runDropCommand(l, args[1:], stdout, stderr)
	case "mint":
		return runMint(l, args[1:], stdout, stderr)
	case "balance":
		return runBalance(l, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage()
		return 1
	}
}

// runMint credits an account with new units for local development. The ledger
// otherwise only moves value between accounts and vaults.
func runMint(l *ledger, args []string, stdout, stderr io.Writer) int {
	if len(args) < 3 {
		return printError(stderr, "usage: mint <address> <asset> <amount>")
	}
	addr, err := config.ParseAddress(args[0])
	if err != nil {
		return printError(stderr, err.Error())
	}
	asset := state.NormalizeAsset(args[1])
	if !l.registry.IsAssetSupported(asset) {
		return printError(stderr, fmt.Sprintf("asset %s is not supported", asset))
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := l.manager.Mint(asset, addr, amount); err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintf(stdout, "Minted %s %s to %s\n", amount, asset, hexAddr(addr))
	return 0
}

func runBalance(l *ledger, args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		return printError(stderr, "usage: balance <address> <asset>")
	}
	addr, err := config.ParseAddress(args[0])
	if err != nil {
		return printError(stderr, err.Error())
	}
	asset := state.NormalizeAsset(args[1])
	balance, err := l.manager.Balance(addr, asset)
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, struct {
		Address string `json:"address"`
		Asset   string `json:"asset"`
		Balance string `json:"balance"`
	}{hexAddr(addr), asset, balance.String()})
	return 0
}

func printUsage() {
	fmt.Println(`Usage: strapt-cli [--config path] <command> [args]

Commands:
  admin     Administrative operations (bootstrap, assets, fees, pause)
  transfer  Single-claimant transfers (create, claim, refund, get)
  drop      Multi-claimant pools (create, claim, refund, get)
  mint      Credit an account for local development
  balance   Show an account balance

The config file is created with commented defaults on first use.
Set STRAPT_CONFIG or pass --config to point at a different file.`)
}
