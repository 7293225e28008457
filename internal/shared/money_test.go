package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCentsMulQty(t *testing.T) {
	require.EqualValues(t, 15000, Cents(5000).MulQty(3))
	require.EqualValues(t, -6000, Cents(3000).MulQty(-2))
	require.EqualValues(t, 0, Cents(3000).MulQty(0))
}

func TestCentsAbs(t *testing.T) {
	require.EqualValues(t, 9000, Cents(-9000).Abs())
	require.EqualValues(t, 9000, Cents(9000).Abs())
}

func TestFormatIDR(t *testing.T) {
	require.Equal(t, "Rp 25.000", FormatIDR(25000))
	require.Equal(t, "Rp 1.250.000", FormatIDR(1250000))
	require.Equal(t, "Rp 0", FormatIDR(0))
}
