package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const (
	testAdmin     = "0x0101010101010101010101010101010101010101"
	testCollector = "0xfefefefefefefefefefefefefefefefefefefefe"
	testRecipient = "0x0202020202020202020202020202020202020202"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`DataDir = %q
Env = "test"
Admin = %q
FeeRateBps = 100
FeeCollector = %q

[[Assets]]
Symbol = "IDRX"
Name = "IDRX Stable"
Decimals = 2
`, filepath.Join(dir, "data"), testAdmin, testCollector)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(configPath, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func mustRunCLI(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	stdout, stderrOut, code := runCLI(t, configPath, args...)
	if code != 0 {
		t.Fatalf("command %v failed (%d): %s", args, code, stderrOut)
	}
	return stdout
}

func TestTransferLifecycle(t *testing.T) {
	configPath := writeTestConfig(t)
	mustRunCLI(t, configPath, "admin", "bootstrap")
	mustRunCLI(t, configPath, "mint", testAdmin, "IDRX", "100000")

	out := mustRunCLI(t, configPath, "transfer", "create",
		"--from", testAdmin, "--to", testRecipient,
		"--asset", "IDRX", "--amount", "1000")
	var created struct {
		ID        string `json:"id"`
		NetAmount string `json:"netAmount"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode create output: %v\n%s", err, out)
	}
	if created.NetAmount != "990" {
		t.Fatalf("net = %s, want 990 after the 1%% fee", created.NetAmount)
	}
	if created.Status != "pending" {
		t.Fatalf("status = %s, want pending", created.Status)
	}

	out = mustRunCLI(t, configPath, "transfer", "claim",
		"--id", created.ID, "--caller", testRecipient)
	var claimed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &claimed); err != nil {
		t.Fatalf("decode claim output: %v\n%s", err, out)
	}
	if claimed.Status != "claimed" {
		t.Fatalf("status = %s, want claimed", claimed.Status)
	}

	out = mustRunCLI(t, configPath, "balance", testRecipient, "IDRX")
	var balance struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal([]byte(out), &balance); err != nil {
		t.Fatalf("decode balance output: %v\n%s", err, out)
	}
	if balance.Balance != "990" {
		t.Fatalf("balance = %s, want 990", balance.Balance)
	}

	if _, stderrOut, code := runCLI(t, configPath, "transfer", "claim",
		"--id", created.ID, "--caller", testRecipient); code == 0 {
		t.Fatalf("second claim should fail, stderr: %s", stderrOut)
	}
}

func TestDropLifecycle(t *testing.T) {
	configPath := writeTestConfig(t)
	mustRunCLI(t, configPath, "admin", "bootstrap")
	mustRunCLI(t, configPath, "mint", testAdmin, "IDRX", "100000")

	out := mustRunCLI(t, configPath, "drop", "create",
		"--from", testAdmin, "--asset", "IDRX", "--amount", "1000",
		"--recipients", "3", "--message", "team lunch")
	var pool struct {
		ID                 string `json:"id"`
		TotalAmount        string `json:"totalAmount"`
		AmountPerRecipient string `json:"amountPerRecipient"`
	}
	if err := json.Unmarshal([]byte(out), &pool); err != nil {
		t.Fatalf("decode pool output: %v\n%s", err, out)
	}
	if pool.TotalAmount != "990" {
		t.Fatalf("total = %s, want 990 after the 1%% fee", pool.TotalAmount)
	}
	if pool.AmountPerRecipient != "330" {
		t.Fatalf("per recipient = %s, want 330", pool.AmountPerRecipient)
	}

	out = mustRunCLI(t, configPath, "drop", "claim",
		"--id", pool.ID, "--caller", testRecipient)
	var claim struct {
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal([]byte(out), &claim); err != nil {
		t.Fatalf("decode claim output: %v\n%s", err, out)
	}
	if claim.Amount != "330" {
		t.Fatalf("claim amount = %s, want 330", claim.Amount)
	}

	if _, stderrOut, code := runCLI(t, configPath, "drop", "claim",
		"--id", pool.ID, "--caller", testRecipient); code == 0 {
		t.Fatalf("second claim by the same address should fail, stderr: %s", stderrOut)
	}
}

func TestBootstrapIsOneShot(t *testing.T) {
	configPath := writeTestConfig(t)
	mustRunCLI(t, configPath, "admin", "bootstrap")
	if _, stderrOut, code := runCLI(t, configPath, "admin", "bootstrap"); code == 0 {
		t.Fatalf("second bootstrap should fail, stderr: %s", stderrOut)
	}
}

func TestUnknownCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, _, code := runCLI(t, configPath, "frobnicate"); code == 0 {
		t.Fatal("unknown command should fail")
	}
}
