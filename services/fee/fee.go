package fee

import (
	"fmt"

	"parcel-delivery/models/booking"

	"github.com/shopspring/decimal"
)

// Fee tables are compile-time constants: base charge per parcel type, plus a
// per-type rate applied to the weight portion above one kilogram.
var (
	baseFees = map[booking.ParcelType]decimal.Decimal{
		booking.ParcelTypeDocument: decimal.NewFromInt(120),
		booking.ParcelTypePackage:  decimal.NewFromInt(150),
		booking.ParcelTypeFragile:  decimal.NewFromInt(200),
	}

	additionalFeeRates = map[booking.ParcelType]decimal.Decimal{
		booking.ParcelTypeDocument: decimal.NewFromFloat(0.1),
		booking.ParcelTypePackage:  decimal.NewFromFloat(0.2),
		booking.ParcelTypeFragile:  decimal.NewFromFloat(0.3),
	}

	oneKg = decimal.NewFromInt(1)
)

// Calculate computes the fee for a parcel. Pure: the result depends only on
// the inputs and must be recomputed whenever type or weight changes.
//
// weight <= 1kg: fee = base. Above that the overweight portion is charged at
// base * rate per kilogram.
func Calculate(parcelType booking.ParcelType, weightKg decimal.Decimal) (decimal.Decimal, error) {
	base, ok := baseFees[parcelType]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown parcel type: %s", parcelType)
	}

	if weightKg.LessThanOrEqual(oneKg) {
		return base, nil
	}

	additionalWeight := weightKg.Sub(oneKg)
	additionalFee := additionalWeight.Mul(base).Mul(additionalFeeRates[parcelType])

	return base.Add(additionalFee).Round(2), nil
}
