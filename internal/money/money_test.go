package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "$ 0,00", Format(0))
	require.Equal(t, "$ 123,45", Format(123.45))
	require.Equal(t, "$ 1.234,50", Format(1234.5))
	require.Equal(t, "$ 1.234.567,89", Format(1234567.891))
	require.Equal(t, "-$ 123,45", Format(-123.45))
}

func TestFormatNeverFails(t *testing.T) {
	zero := Format(0)
	require.Equal(t, zero, Format(math.NaN()))
	require.Equal(t, zero, Format(math.Inf(1)))
	require.Equal(t, zero, Format(math.Inf(-1)))
	require.Equal(t, zero, FormatPtr(nil))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 0.3, Round2(0.1+0.2))
	require.Equal(t, 10.57, Round2(10.565))
	require.Equal(t, 0.0, Round2(math.NaN()))
}

func TestAdd2NoDrift(t *testing.T) {
	// A hundred additions of a cent land exactly on a peso.
	var total float64
	for i := 0; i < 100; i++ {
		total = Add2(total, 0.01)
	}
	require.Equal(t, 1.0, total)
}

func TestSum2(t *testing.T) {
	require.Equal(t, 601.0, Sum2(200.4, 200.3, 200.3))
	require.Equal(t, 0.0, Sum2())
}
