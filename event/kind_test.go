package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindClasses(t *testing.T) {
	cases := []struct {
		k                              uint16
		replaceable, addressable, eph bool
	}{
		{0, true, false, false},
		{3, true, false, false},
		{1, false, false, false},
		{10000, true, false, false},
		{19999, true, false, false},
		{20000, false, false, true},
		{29999, false, false, true},
		{30000, true, true, false},
		{39999, true, true, false},
		{40000, false, false, false},
		{5, false, false, false},
	}
	for _, c := range cases {
		require.Equal(t, c.replaceable, IsReplaceable(c.k), "kind %d replaceable", c.k)
		require.Equal(t, c.addressable, IsAddressable(c.k), "kind %d addressable", c.k)
		require.Equal(t, c.eph, IsEphemeral(c.k), "kind %d ephemeral", c.k)
	}
}

func TestIsDeletion(t *testing.T) {
	require.True(t, IsDeletion(5))
	require.False(t, IsDeletion(4))
}
