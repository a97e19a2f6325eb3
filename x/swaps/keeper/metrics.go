package keeper

import (
	"math/big"
	"strconv"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/pmamm/pkg/fixed"
)

// SwapMetrics holds all Prometheus metrics for the swaps module
type SwapMetrics struct {
	// Swap metrics
	SwapsTotal *prometheus.CounterVec
	SwapVolume *prometheus.CounterVec

	// Liquidity metrics
	LiquidityOps *prometheus.CounterVec

	// Pool metrics
	PoolsCreated   *prometheus.CounterVec
	PoolsClosed    prometheus.Counter
	PoolsDestroyed prometheus.Counter

	// Invariant metrics
	RejectedInvariants *prometheus.CounterVec

	// Rikiddo metrics
	RikiddoFee *prometheus.GaugeVec
	RikiddoEma *prometheus.GaugeVec
}

var (
	swapMetricsOnce sync.Once
	swapMetrics     *SwapMetrics
)

// NewSwapMetrics creates and registers swaps metrics (singleton pattern)
func NewSwapMetrics() *SwapMetrics {
	swapMetricsOnce.Do(func() {
		swapMetrics = &SwapMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "swaps_total",
					Help:      "Total number of swaps by scoring rule, kind and status",
				},
				[]string{"scoring_rule", "kind", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "swap_volume_total",
					Help:      "Total amount sold into pools, in whole units",
				},
				[]string{"scoring_rule"},
			),
			LiquidityOps: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "liquidity_operations_total",
					Help:      "Total number of joins and exits by operation and status",
				},
				[]string{"operation", "status"},
			),
			PoolsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "pools_created_total",
					Help:      "Total number of pools created",
				},
				[]string{"scoring_rule"},
			),
			PoolsClosed: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "pools_closed_total",
					Help:      "Total number of pools closed",
				},
			),
			PoolsDestroyed: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "pools_destroyed_total",
					Help:      "Total number of pools destroyed",
				},
			),
			RejectedInvariants: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "rejected_invariants_total",
					Help:      "Trades rejected by a post-trade price check",
				},
				[]string{"scoring_rule", "check"},
			),
			RikiddoFee: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "rikiddo_fee",
					Help:      "Fee currently quoted by a Rikiddo pool",
				},
				[]string{"pool_id"},
			),
			RikiddoEma: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pmamm",
					Subsystem: "swaps",
					Name:      "rikiddo_ema_volume",
					Help:      "Moving average volume of a Rikiddo pool, in whole units",
				},
				[]string{"pool_id"},
			),
		}
	})
	return swapMetrics
}

func statusLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func poolLabel(poolID uint64) string {
	return strconv.FormatUint(poolID, 10)
}

// units converts a fixed-point value to a float for reporting only.
func units(p fixed.Precision, v math.Int) float64 {
	if v.IsNil() {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v.BigInt()), new(big.Float).SetInt(p.One().BigInt())).Float64()
	return f
}
