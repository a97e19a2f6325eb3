package types

import (
	"encoding/binary"
)

const (
	// ModuleName defines the module name
	ModuleName = "rikiddo"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// RikiddoKeyPrefix is the prefix for the market maker state of each pool
var RikiddoKeyPrefix = []byte{0x01}

// RikiddoKey returns the store key of the market maker attached to a pool.
func RikiddoKey(poolID uint64) []byte {
	key := make([]byte, len(RikiddoKeyPrefix)+8)
	copy(key, RikiddoKeyPrefix)
	binary.BigEndian.PutUint64(key[len(RikiddoKeyPrefix):], poolID)
	return key
}
