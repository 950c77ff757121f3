package dex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessFlagsString(t *testing.T) {
	tests := []struct {
		flags AccessFlags
		want  string
	}{
		{0, "0"},
		{AccPublic, "public"},
		{AccPublic | AccStatic | AccFinal, "public static final"},
		{AccPublic | AccConstructor, "public constructor"},
		{AccVolatile, "volatile|bridge"},
		{AccDeclaredSynchronized, "declared-synchronized"},
		// Undefined bits are kept visible.
		{AccPublic | 0x40000, "public 0x40000"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.flags.String())
	}
}

func TestTypeCodeString(t *testing.T) {
	require.Equal(t, "TYPE_HEADER_ITEM", TypeHeaderItem.String())
	require.Equal(t, "TYPE_MAP_LIST", TypeMapList.String())
	require.Equal(t, "TYPE_HIDDENAPI_CLASS_DATA_ITEM", TypeHiddenapiClassDataItem.String())
	require.Equal(t, "TYPE_0x0042", TypeCode(0x42).String())
}
