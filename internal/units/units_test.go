package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimensionConversions(t *testing.T) {
	d := Dim(5, 6)
	require.InDelta(t, 5.5, d.TotalFeet(), 1e-12)
	require.InDelta(t, 66, d.TotalInches(), 1e-12)
	require.True(t, d.Positive())
	require.False(t, d.IsZero())
	require.True(t, Dim(0, 0).IsZero())
	require.False(t, Dim(0, 0).Positive())
}

func TestFromFeetRoundTrip(t *testing.T) {
	d := FromFeet(9.25)
	require.Equal(t, 9, d.Feet)
	require.InDelta(t, 3, d.Inches, 1e-9)
	require.InDelta(t, 9.25, d.TotalFeet(), 1e-9)
}

func TestFormatInches(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, `0"`},
		{0.75, `3/4"`},
		{3, `3"`},
		{3.5, `3 1/2"`},
		{12, `1'`},
		{36, `3'`},
		{63, `5'-3"`},
		{63.5, `5'-3 1/2"`},
		{-63, `5'-3"`},
		// remainder within 1/32 of a sixteenth snaps
		{3.0 + 1.0/16 + 0.01, `3 1/16"`},
		// remainder rounding up to a whole inch carries
		{11.99, `1'`},
		// remainder closer to zero than to 1/16 is dropped
		{3.02, `3"`},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatInches(tc.in), "FormatInches(%v)", tc.in)
	}
}

func TestFormatWorldDistance(t *testing.T) {
	require.Equal(t, `3'`, FormatWorldDistance(3))
	require.Equal(t, `2'-6"`, FormatWorldDistance(2.5))
	require.Equal(t, `1 1/2"`, FormatWorldDistance(0.125))
}
