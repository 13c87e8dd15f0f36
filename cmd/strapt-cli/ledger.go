package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"path/filepath"
	"strings"

	"straptledger/config"
	"straptledger/core/events"
	"straptledger/core/state"
	"straptledger/core/types"
	"straptledger/native/drop"
	"straptledger/native/registry"
	"straptledger/native/transfer"
	"straptledger/observability/logging"
	"straptledger/observability/metrics"
	"straptledger/storage"
)

// ledger bundles everything a subcommand needs: the opened database, the
// state manager and both engines wired against the registry.
type ledger struct {
	cfg       *config.Config
	db        *storage.LevelDB
	manager   *state.Manager
	registry  *registry.Registry
	transfers *transfer.Engine
	drops     *drop.Engine
}

// logEmitter forwards engine events to the structured logger so operators get
// an audit line per state transition.
type logEmitter struct{}

func (logEmitter) Emit(evt events.Event) {
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		slog.Info(evt.EventType())
		return
	}
	payload := carrier.Event()
	if payload == nil {
		return
	}
	attrs := make([]any, 0, len(payload.Attributes)*2)
	for key, value := range payload.Attributes {
		attrs = append(attrs, key, value)
	}
	slog.Info(payload.Type, attrs...)
}

func openLedger(configPath string) (*ledger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup("strapt-cli", cfg.Env, cfg.LogFile)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	manager := state.NewManager(db)
	reg := registry.New(manager)

	transfers := transfer.NewEngine()
	transfers.SetState(manager)
	transfers.SetRegistry(reg)
	transfers.SetEmitter(logEmitter{})
	transfers.SetMetrics(metrics.Ledger())
	transfers.SetExpiryWindows(cfg.DefaultExpirySeconds, cfg.MaxExpirySeconds)

	drops := drop.NewEngine()
	drops.SetState(manager)
	drops.SetRegistry(reg)
	drops.SetEmitter(logEmitter{})
	drops.SetMetrics(metrics.Ledger())
	drops.SetExpiryWindows(cfg.DefaultExpirySeconds, cfg.MaxExpirySeconds)

	return &ledger{
		cfg:       cfg,
		db:        db,
		manager:   manager,
		registry:  reg,
		transfers: transfers,
		drops:     drops,
	}, nil
}

func (l *ledger) Close() {
	if l != nil && l.db != nil {
		l.db.Close()
	}
}

func parseID(value string) ([32]byte, error) {
	var id [32]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, fmt.Errorf("invalid hex identifier %q", value)
	}
	if len(decoded) != len(id) {
		return id, fmt.Errorf("identifier must be %d bytes, got %d", len(id), len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func writeJSON(stdout io.Writer, payload any) {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(stdout, "%v\n", payload)
		return
	}
	fmt.Fprintln(stdout, string(encoded))
}

func hexID(id [32]byte) string { return "0x" + hex.EncodeToString(id[:]) }

func hexAddr(addr [20]byte) string { return "0x" + hex.EncodeToString(addr[:]) }

func printError(stderr io.Writer, msg string) int {
	fmt.Fprintf(stderr, "Error: %s\n", msg)
	return 1
}

// transferView is the JSON projection of a transfer record.
type transferView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Creator     string `json:"creator"`
	Recipient   string `json:"recipient,omitempty"`
	Asset       string `json:"asset"`
	GrossAmount string `json:"grossAmount"`
	NetAmount   string `json:"netAmount"`
	Expiry      int64  `json:"expiry"`
	HasPassword bool   `json:"hasPassword"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

func newTransferView(r *transfer.Record) transferView {
	view := transferView{
		ID:          hexID(r.ID),
		Kind:        r.Kind.String(),
		Creator:     hexAddr(r.Creator),
		Asset:       r.Asset,
		GrossAmount: r.GrossAmount.String(),
		NetAmount:   r.NetAmount.String(),
		Expiry:      r.Expiry,
		HasPassword: r.HasPassword,
		Status:      r.Status.String(),
		CreatedAt:   r.CreatedAt,
	}
	if r.HasRecipient() {
		view.Recipient = hexAddr(r.Recipient)
	}
	return view
}

// dropView is the JSON projection of a drop pool.
type dropView struct {
	ID                 string `json:"id"`
	Creator            string `json:"creator"`
	Asset              string `json:"asset"`
	GrossAmount        string `json:"grossAmount"`
	TotalAmount        string `json:"totalAmount"`
	RemainingAmount    string `json:"remainingAmount"`
	AmountPerRecipient string `json:"amountPerRecipient,omitempty"`
	TotalRecipients    uint32 `json:"totalRecipients"`
	ClaimedCount       uint32 `json:"claimedCount"`
	Mode               string `json:"mode"`
	Message            string `json:"message,omitempty"`
	Expiry             int64  `json:"expiry"`
	CreatedAt          int64  `json:"createdAt"`
	Active             bool   `json:"active"`
}

func newDropView(p *drop.Pool) dropView {
	view := dropView{
		ID:              hexID(p.ID),
		Creator:         hexAddr(p.Creator),
		Asset:           p.Asset,
		GrossAmount:     p.GrossAmount.String(),
		TotalAmount:     p.TotalAmount.String(),
		RemainingAmount: p.RemainingAmount.String(),
		TotalRecipients: p.TotalRecipients,
		ClaimedCount:    p.ClaimedCount,
		Mode:            p.Mode.String(),
		Message:         p.Message,
		Expiry:          p.Expiry,
		CreatedAt:       p.CreatedAt,
		Active:          p.Active,
	}
	if p.Mode == drop.ModeFixed {
		view.AmountPerRecipient = p.AmountPerRecipient.String()
	}
	return view
}
