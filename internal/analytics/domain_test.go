package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAverageOrderValue(t *testing.T) {
	require.EqualValues(t, 9000, AverageOrderValue(27000, 3))
	require.EqualValues(t, 0, AverageOrderValue(0, 0), "no orders must not divide")
	require.EqualValues(t, 4500, AverageOrderValue(9001, 2))
}
