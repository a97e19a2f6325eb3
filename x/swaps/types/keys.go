package types

import (
	"encoding/binary"
)

const (
	// ModuleName defines the module name
	ModuleName = "swaps"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

var (
	// PoolKeyPrefix is the prefix for pool store keys
	PoolKeyPrefix = []byte{0x01}

	// NextPoolIDKey is the key for the next pool ID counter
	NextPoolIDKey = []byte{0x02}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x03}

	// ArbitrageCacheKeyPrefix is the prefix for pools awaiting arbitrage
	ArbitrageCacheKeyPrefix = []byte{0x04}
)

// Uint64ToBigEndian encodes a pool id for use in keys and account derivation.
func Uint64ToBigEndian(id uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, id)
	return bz
}

// PoolKey returns the store key for a pool by ID
func PoolKey(poolID uint64) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), Uint64ToBigEndian(poolID)...)
}

// ArbitrageCacheKey returns the store key marking a pool for arbitrage
func ArbitrageCacheKey(poolID uint64) []byte {
	return append(append([]byte{}, ArbitrageCacheKeyPrefix...), Uint64ToBigEndian(poolID)...)
}
