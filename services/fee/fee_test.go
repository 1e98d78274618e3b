package fee

import (
	"testing"

	"parcel-delivery/models/booking"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCalculateBaseFeeUpToOneKg(t *testing.T) {
	cases := []struct {
		parcelType booking.ParcelType
		weight     string
		want       string
	}{
		{booking.ParcelTypeDocument, "0.1", "120"},
		{booking.ParcelTypeDocument, "1", "120"},
		{booking.ParcelTypePackage, "0.5", "150"},
		{booking.ParcelTypePackage, "1", "150"},
		{booking.ParcelTypeFragile, "1", "200"},
	}

	for _, tc := range cases {
		got, err := Calculate(tc.parcelType, decimal.RequireFromString(tc.weight))
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s %skg: got %s want %s", tc.parcelType, tc.weight, got, tc.want)
	}
}

func TestCalculateOverweightFee(t *testing.T) {
	cases := []struct {
		parcelType booking.ParcelType
		weight     string
		want       string
	}{
		// 120 + 1.5 * 120 * 0.1
		{booking.ParcelTypeDocument, "2.5", "138"},
		// 150 + 1 * 150 * 0.2
		{booking.ParcelTypePackage, "2", "180"},
		// 200 + 9 * 200 * 0.3
		{booking.ParcelTypeFragile, "10", "740"},
	}

	for _, tc := range cases {
		got, err := Calculate(tc.parcelType, decimal.RequireFromString(tc.weight))
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s %skg: got %s want %s", tc.parcelType, tc.weight, got, tc.want)
	}
}

func TestCalculateMatchesFormulaAcrossRange(t *testing.T) {
	rates := map[booking.ParcelType]string{
		booking.ParcelTypeDocument: "0.1",
		booking.ParcelTypePackage:  "0.2",
		booking.ParcelTypeFragile:  "0.3",
	}
	bases := map[booking.ParcelType]string{
		booking.ParcelTypeDocument: "120",
		booking.ParcelTypePackage:  "150",
		booking.ParcelTypeFragile:  "200",
	}

	step := decimal.RequireFromString("0.3")
	one := decimal.NewFromInt(1)
	max := decimal.NewFromInt(10)

	for pt, baseStr := range bases {
		base := decimal.RequireFromString(baseStr)
		rate := decimal.RequireFromString(rates[pt])

		for w := decimal.RequireFromString("0.1"); w.LessThanOrEqual(max); w = w.Add(step) {
			got, err := Calculate(pt, w)
			require.NoError(t, err)

			want := base
			if w.GreaterThan(one) {
				want = base.Add(w.Sub(one).Mul(base).Mul(rate)).Round(2)
			}
			require.True(t, got.Equal(want), "%s %skg: got %s want %s", pt, w, got, want)
		}
	}
}

func TestCalculateRejectsUnknownType(t *testing.T) {
	_, err := Calculate(booking.ParcelType("Livestock"), decimal.NewFromInt(1))
	require.Error(t, err)
}
