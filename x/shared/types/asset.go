// Package types holds the primitives shared by the ledger, the market maker and the pool modules.
package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// AssetKind distinguishes the base currency from market outcome shares and pool shares.
type AssetKind uint8

const (
	AssetKindBase AssetKind = iota
	AssetKindCategoricalOutcome
	AssetKindScalarOutcome
	AssetKindPoolShare
)

// Scalar outcome positions, stored in Asset.Index.
const (
	ScalarLong  uint16 = 0
	ScalarShort uint16 = 1
)

// AssetKeyLen is the length of Asset.Bytes.
const AssetKeyLen = 1 + 8 + 2

// Asset identifies a fungible token known to the ledger.
//
// ID is the market id for outcome assets and the pool id for pool shares; Index is the
// outcome index (categorical) or position (scalar). Both are zero for the base asset.
type Asset struct {
	Kind  AssetKind
	ID    uint64
	Index uint16
}

// BaseAsset returns the base currency.
func BaseAsset() Asset { return Asset{Kind: AssetKindBase} }

// CategoricalOutcome returns the outcome share of a categorical market.
func CategoricalOutcome(marketID uint64, index uint16) Asset {
	return Asset{Kind: AssetKindCategoricalOutcome, ID: marketID, Index: index}
}

// ScalarOutcome returns the long or short share of a scalar market.
func ScalarOutcome(marketID uint64, position uint16) Asset {
	return Asset{Kind: AssetKindScalarOutcome, ID: marketID, Index: position}
}

// PoolShare returns the share token of a pool.
func PoolShare(poolID uint64) Asset {
	return Asset{Kind: AssetKindPoolShare, ID: poolID}
}

func (a Asset) IsBase() bool { return a.Kind == AssetKindBase }

// IsOutcome reports whether a is a categorical or scalar outcome share.
func (a Asset) IsOutcome() bool {
	return a.Kind == AssetKindCategoricalOutcome || a.Kind == AssetKindScalarOutcome
}

func (a Asset) IsPoolShare() bool { return a.Kind == AssetKindPoolShare }

// Validate checks that the fields are consistent with the kind.
func (a Asset) Validate() error {
	switch a.Kind {
	case AssetKindBase:
		if a.ID != 0 || a.Index != 0 {
			return fmt.Errorf("base asset carries id %d index %d", a.ID, a.Index)
		}
	case AssetKindCategoricalOutcome:
	case AssetKindScalarOutcome:
		if a.Index != ScalarLong && a.Index != ScalarShort {
			return fmt.Errorf("invalid scalar position %d", a.Index)
		}
	case AssetKindPoolShare:
		if a.Index != 0 {
			return fmt.Errorf("pool share carries index %d", a.Index)
		}
	default:
		return fmt.Errorf("unknown asset kind %d", a.Kind)
	}
	return nil
}

// Compare orders assets by kind, then id, then index.
func (a Asset) Compare(b Asset) int {
	switch {
	case a.Kind != b.Kind:
		return cmpUint(uint64(a.Kind), uint64(b.Kind))
	case a.ID != b.ID:
		return cmpUint(a.ID, b.ID)
	default:
		return cmpUint(uint64(a.Index), uint64(b.Index))
	}
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Bytes returns a fixed-length encoding that sorts like Compare.
func (a Asset) Bytes() []byte {
	bz := make([]byte, AssetKeyLen)
	bz[0] = byte(a.Kind)
	binary.BigEndian.PutUint64(bz[1:9], a.ID)
	binary.BigEndian.PutUint16(bz[9:], a.Index)
	return bz
}

// AssetFromBytes decodes the output of Bytes.
func AssetFromBytes(bz []byte) (Asset, error) {
	if len(bz) != AssetKeyLen {
		return Asset{}, fmt.Errorf("asset key must be %d bytes, got %d", AssetKeyLen, len(bz))
	}
	a := Asset{
		Kind:  AssetKind(bz[0]),
		ID:    binary.BigEndian.Uint64(bz[1:9]),
		Index: binary.BigEndian.Uint16(bz[9:]),
	}
	return a, a.Validate()
}

func (a Asset) String() string {
	switch a.Kind {
	case AssetKindBase:
		return "base"
	case AssetKindCategoricalOutcome:
		return fmt.Sprintf("cat/%d/%d", a.ID, a.Index)
	case AssetKindScalarOutcome:
		if a.Index == ScalarShort {
			return fmt.Sprintf("scalar/%d/short", a.ID)
		}
		return fmt.Sprintf("scalar/%d/long", a.ID)
	case AssetKindPoolShare:
		return fmt.Sprintf("pool/%d", a.ID)
	default:
		return fmt.Sprintf("unknown(%d)", a.Kind)
	}
}

// ParseAsset parses the String form of an asset.
func ParseAsset(s string) (Asset, error) {
	parts := strings.Split(s, "/")
	switch {
	case len(parts) == 1 && parts[0] == "base":
		return BaseAsset(), nil
	case len(parts) == 2 && parts[0] == "pool":
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return Asset{}, fmt.Errorf("invalid pool id in %q: %w", s, err)
		}
		return PoolShare(id), nil
	case len(parts) == 3 && parts[0] == "cat":
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return Asset{}, fmt.Errorf("invalid market id in %q: %w", s, err)
		}
		idx, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			return Asset{}, fmt.Errorf("invalid outcome index in %q: %w", s, err)
		}
		return CategoricalOutcome(id, uint16(idx)), nil
	case len(parts) == 3 && parts[0] == "scalar":
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return Asset{}, fmt.Errorf("invalid market id in %q: %w", s, err)
		}
		switch parts[2] {
		case "long":
			return ScalarOutcome(id, ScalarLong), nil
		case "short":
			return ScalarOutcome(id, ScalarShort), nil
		}
	}
	return Asset{}, fmt.Errorf("invalid asset %q", s)
}

func (a Asset) MarshalText() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
