package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pmamm/x/shared/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

func TestValidateAuthority(t *testing.T) {
	const gov = "gov"

	tests := []struct {
		name     string
		expected string
		actual   string
		wantErr  bool
	}{
		{name: "authority match", expected: gov, actual: gov},
		{name: "authority mismatch", expected: gov, actual: "trader", wantErr: true},
		{name: "empty actual authority", expected: gov, actual: "", wantErr: true},
		{name: "unset authority rejects everyone", expected: "", actual: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := keeper.ValidateAuthority(tt.expected, tt.actual)
			if tt.wantErr {
				require.ErrorIs(t, err, sharedtypes.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
		})
	}
}
