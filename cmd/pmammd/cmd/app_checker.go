package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/paw-chain/pmamm/app"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
)

// PoolStats summarizes the pool registry.
type PoolStats struct {
	Total          int
	Active         int
	Closed         int
	Rikiddo        int
	ArbitrageCache int
	NextPoolID     uint64
}

// AppChecker implements AppHealthChecker against a wired app.
type AppChecker struct {
	app     *app.App
	timeout time.Duration
}

// NewAppChecker creates a health checker reading from a.
func NewAppChecker(a *app.App) *AppChecker {
	return &AppChecker{app: a, timeout: 3 * time.Second}
}

// CheckStore reads the swaps parameters back from the store.
func (c *AppChecker) CheckStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	params, err := c.app.Swaps.GetParams(ctx)
	if err != nil {
		return fmt.Errorf("store unreadable: %w", err)
	}
	if err := params.Validate(c.app.Precision()); err != nil {
		return fmt.Errorf("stored params invalid: %w", err)
	}
	return nil
}

// CheckGenesis reports whether a genesis has been loaded.
func (c *AppChecker) CheckGenesis() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	loaded, err := c.app.GenesisLoaded(ctx)
	if err != nil {
		return err
	}
	if !loaded {
		return fmt.Errorf("genesis not loaded")
	}
	return nil
}

// PoolStats walks the pool registry.
func (c *AppChecker) PoolStats() (PoolStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var stats PoolStats
	err := c.app.Swaps.IteratePools(ctx, func(pool swapstypes.Pool) bool {
		stats.Total++
		if pool.IsActive() {
			stats.Active++
		} else {
			stats.Closed++
		}
		return false
	})
	if err != nil {
		return PoolStats{}, err
	}
	err = c.app.Rikiddo.IterateRikiddos(ctx, func(uint64, rikiddotypes.RikiddoSigmoidMV) bool {
		stats.Rikiddo++
		return false
	})
	if err != nil {
		return PoolStats{}, err
	}
	cached, err := c.app.Swaps.PoolsCachedForArbitrage(ctx)
	if err != nil {
		return PoolStats{}, err
	}
	stats.ArbitrageCache = len(cached)
	if stats.NextPoolID, err = c.app.Swaps.NextPoolID(ctx); err != nil {
		return PoolStats{}, err
	}
	return stats, nil
}
