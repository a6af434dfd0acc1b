package inventory

import (
	"github.com/clinic/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// availabilityEpsilon absorbs the rounding introduced by the display/base
// unit round-trip (division followed by multiplication). Comparisons against
// available base stock tolerate this absolute difference.
var availabilityEpsilon = decimal.NewFromFloat(1e-6)

// StockView is a read-only snapshot of everything needed to evaluate one
// line item: the resolved unit conversion and the base-unit stock present at
// the item's source location. Built by the application layer, consumed by the
// aggregate.
type StockView struct {
	UnitResolved   bool            // false until the product unit lookup completed
	ConversionRate decimal.Decimal // display unit -> base unit, positive when resolved
	AvailableBase  decimal.Decimal // base units at (batch, from-location)
	LocationName   string          // denormalized for validation messages
}

// Availability is the result of evaluating a requested or approved quantity
// against a stock view.
type Availability struct {
	AvailableQuantity decimal.Decimal // in display units
	RequiredBase      decimal.Decimal // quantity converted to base units
	IsAvailable       bool
	OutOfStock        bool // base stock is exactly zero; caller must clamp to 0
}

// EvaluateAvailability converts a display-unit quantity to base units and
// decides whether the stock at hand can satisfy it.
//
// The displayable available quantity is rounded down so it never overstates
// what the stock can actually cover: requesting exactly the displayed
// availability always succeeds.
//
// An unresolved or non-positive conversion rate is a blocking state, not a
// silent 1:1 fallback.
func EvaluateAvailability(quantity, conversionRate, availableBase decimal.Decimal) (Availability, error) {
	if conversionRate.LessThanOrEqual(decimal.Zero) {
		return Availability{}, shared.ErrUnitUnresolved
	}

	availableQty := availableBase.Div(conversionRate).RoundDown(4)
	requiredBase := quantity.Mul(conversionRate)

	return Availability{
		AvailableQuantity: availableQty,
		RequiredBase:      requiredBase,
		IsAvailable:       requiredBase.LessThanOrEqual(availableBase.Add(availabilityEpsilon)),
		OutOfStock:        availableBase.IsZero(),
	}, nil
}

// EvaluateStockView evaluates a quantity against a stock view snapshot.
func EvaluateStockView(quantity decimal.Decimal, view StockView) (Availability, error) {
	if !view.UnitResolved {
		return Availability{}, shared.ErrUnitUnresolved
	}
	return EvaluateAvailability(quantity, view.ConversionRate, view.AvailableBase)
}
