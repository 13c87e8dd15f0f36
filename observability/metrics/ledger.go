package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics tracks escrow operation throughput by operation kind and
// asset.
type LedgerMetrics struct {
	transferOps *prometheus.CounterVec
	dropOps     *prometheus.CounterVec
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide ledger metrics registry.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			transferOps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "strapt_transfer_ops_total",
				Help: "Count of successful transfer operations by kind and asset.",
			}, []string{"op", "asset"}),
			dropOps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "strapt_drop_ops_total",
				Help: "Count of successful drop pool operations by kind and asset.",
			}, []string{"op", "asset"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.transferOps,
			ledgerRegistry.dropOps,
		)
	})
	return ledgerRegistry
}

// ObserveTransferOp records a successful transfer engine operation.
func (m *LedgerMetrics) ObserveTransferOp(op, asset string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	if asset == "" {
		asset = "unknown"
	}
	m.transferOps.WithLabelValues(op, asset).Inc()
}

// ObserveDropOp records a successful drop engine operation.
func (m *LedgerMetrics) ObserveDropOp(op, asset string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	if asset == "" {
		asset = "unknown"
	}
	m.dropOps.WithLabelValues(op, asset).Inc()
}
