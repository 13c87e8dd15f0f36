package main

import (
	"flag"
	"fmt"
	"io"

	"straptledger/config"
)

func adminUsage() string {
	return `Usage: strapt-cli admin <subcommand> [flags]

Subcommands:
  bootstrap       Grant the first admin role from the config file
  grant           Grant the admin role to another address
  register-asset  Allow-list a new asset
  enable-asset    Re-enable a registered asset
  disable-asset   Disable a registered asset
  assets          List registered assets
  set-fee         Update the creation fee rate and collector
  fee             Show the fee policy
  pause           Pause or resume a module`
}

func runAdminCommand(l *ledger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, adminUsage())
		return 1
	}
	switch args[0] {
	case "bootstrap":
		return runAdminBootstrap(l, args[1:], stdout, stderr)
	case "grant":
		return runAdminGrant(l, args[1:], stdout, stderr)
	case "register-asset":
		return runAdminRegisterAsset(l, args[1:], stdout, stderr)
	case "enable-asset":
		return runAdminSetAssetEnabled(l, args[1:], stdout, stderr, true)
	case "disable-asset":
		return runAdminSetAssetEnabled(l, args[1:], stdout, stderr, false)
	case "assets":
		return runAdminAssets(l, stdout, stderr)
	case "set-fee":
		return runAdminSetFee(l, args[1:], stdout, stderr)
	case "fee":
		return runAdminFee(l, stdout, stderr)
	case "pause":
		return runAdminPause(l, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown admin subcommand: %s\n", args[0])
		fmt.Fprintln(stderr, adminUsage())
		return 1
	}
}

func newAdminFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// runAdminBootstrap seeds the ledger from the config file: first admin role,
// the configured assets and the fee policy. It is a no-op error once an admin
// exists.
func runAdminBootstrap(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newAdminFlagSet("admin bootstrap", stderr)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if l.cfg.Admin == "" {
		return printError(stderr, "config file does not set Admin")
	}
	admin, err := config.ParseAddress(l.cfg.Admin)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := l.registry.Bootstrap(admin); err != nil {
		return printError(stderr, err.Error())
	}
	for _, asset := range l.cfg.Assets {
		if l.registry.IsAssetSupported(asset.Symbol) {
			continue
		}
		if err := l.registry.RegisterAsset(admin, asset.Symbol, asset.Name, asset.Decimals); err != nil {
			return printError(stderr, err.Error())
		}
	}
	if l.cfg.FeeRateBps > 0 {
		collector, err := config.ParseAddress(l.cfg.FeeCollector)
		if err != nil {
			return printError(stderr, err.Error())
		}
		if err := l.registry.SetFeeCollector(admin, collector); err != nil {
			return printError(stderr, err.Error())
		}
		if err := l.registry.SetFeeRate(admin, l.cfg.FeeRateBps); err != nil {
			return printError(stderr, err.Error())
		}
	}
	fmt.Fprintf(stdout, "Bootstrapped admin %s\n", hexAddr(admin))
	return 0
}

func runAdminGrant(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newAdminFlagSet("admin grant", stderr)
	var caller, grantee string
	fs.StringVar(&caller, "caller", "", "existing admin hex address")
	fs.StringVar(&grantee, "to", "", "new admin hex address")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	callerAddr, granteeAddr, code := parseTwoAddresses(caller, grantee, "--caller", "--to", stderr)
	if code != 0 {
		return code
	}
	if err := l.registry.GrantAdmin(callerAddr, granteeAddr); err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintf(stdout, "Granted admin to %s\n", hexAddr(granteeAddr))
	return 0
}

func runAdminRegisterAsset(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newAdminFlagSet("admin register-asset", stderr)
	var (
		caller   string
		symbol   string
		name     string
		decimals uint
	)
	fs.StringVar(&caller, "caller", "", "admin hex address")
	fs.StringVar(&symbol, "symbol", "", "asset symbol")
	fs.StringVar(&name, "name", "", "asset display name")
	fs.UintVar(&decimals, "decimals", 0, "asset decimals")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	if symbol == "" {
		return printError(stderr, "--symbol is required")
	}
	if name == "" {
		return printError(stderr, "--name is required")
	}
	callerAddr, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := l.registry.RegisterAsset(callerAddr, symbol, name, uint8(decimals)); err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintf(stdout, "Registered asset %s\n", symbol)
	return 0
}

func runAdminSetAssetEnabled(l *ledger, args []string, stdout, stderr io.Writer, enabled bool) int {
	name := "admin disable-asset"
	if enabled {
		name = "admin enable-asset"
	}
	fs := newAdminFlagSet(name, stderr)
	var caller, symbol string
	fs.StringVar(&caller, "caller", "", "admin hex address")
	fs.StringVar(&symbol, "symbol", "", "asset symbol")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	if symbol == "" {
		return printError(stderr, "--symbol is required")
	}
	callerAddr, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := l.registry.SetAssetEnabled(callerAddr, symbol, enabled); err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintf(stdout, "Asset %s enabled=%t\n", symbol, enabled)
	return 0
}

func runAdminAssets(l *ledger, stdout, stderr io.Writer) int {
	list, err := l.registry.AssetList()
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, list)
	return 0
}

func runAdminSetFee(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newAdminFlagSet("admin set-fee", stderr)
	var (
		caller    string
		collector string
		rate      uint
		rateSet   bool
	)
	fs.StringVar(&caller, "caller", "", "admin hex address")
	fs.StringVar(&collector, "collector", "", "fee collector hex address")
	fs.UintVar(&rate, "rate-bps", 0, "fee rate in basis points")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "rate-bps" {
			rateSet = true
		}
	})
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	callerAddr, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if collector != "" {
		collectorAddr, err := config.ParseAddress(collector)
		if err != nil {
			return printError(stderr, err.Error())
		}
		if err := l.registry.SetFeeCollector(callerAddr, collectorAddr); err != nil {
			return printError(stderr, err.Error())
		}
	}
	if rateSet {
		if err := l.registry.SetFeeRate(callerAddr, uint32(rate)); err != nil {
			return printError(stderr, err.Error())
		}
	}
	return runAdminFee(l, stdout, stderr)
}

func runAdminFee(l *ledger, stdout, stderr io.Writer) int {
	policy, err := l.registry.FeePolicy()
	if err != nil {
		return printError(stderr, err.Error())
	}
	writeJSON(stdout, struct {
		RateBps   uint32 `json:"rateBps"`
		Collector string `json:"collector"`
	}{policy.RateBps, hexAddr(policy.Collector)})
	return 0
}

func runAdminPause(l *ledger, args []string, stdout, stderr io.Writer) int {
	fs := newAdminFlagSet("admin pause", stderr)
	var (
		caller string
		module string
		resume bool
	)
	fs.StringVar(&caller, "caller", "", "admin hex address")
	fs.StringVar(&module, "module", "", "module name (transfer or drop)")
	fs.BoolVar(&resume, "resume", false, "resume instead of pause")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if caller == "" {
		return printError(stderr, "--caller is required")
	}
	if module == "" {
		return printError(stderr, "--module is required")
	}
	callerAddr, err := config.ParseAddress(caller)
	if err != nil {
		return printError(stderr, err.Error())
	}
	if err := l.registry.SetPaused(callerAddr, module, !resume); err != nil {
		return printError(stderr, err.Error())
	}
	fmt.Fprintf(stdout, "Module %s paused=%t\n", module, !resume)
	return 0
}

func parseTwoAddresses(first, second, firstFlag, secondFlag string, stderr io.Writer) ([20]byte, [20]byte, int) {
	var a, b [20]byte
	if first == "" {
		return a, b, printError(stderr, firstFlag+" is required")
	}
	if second == "" {
		return a, b, printError(stderr, secondFlag+" is required")
	}
	a, err := config.ParseAddress(first)
	if err != nil {
		return a, b, printError(stderr, err.Error())
	}
	b, err = config.ParseAddress(second)
	if err != nil {
		return a, b, printError(stderr, err.Error())
	}
	return a, b, 0
}
