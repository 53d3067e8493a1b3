package services

import (
	"github.com/NumanIbnMazid/restaurant-management/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// OrderCharges is the result of pricing an order snapshot.
type OrderCharges struct {
	FoodPrice     decimal.Decimal `json:"food_price"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// RunningTotal is the food price plus service charge, the base the tax
// percentage applies to.
func (c OrderCharges) RunningTotal() decimal.Decimal {
	return c.FoodPrice.Add(c.ServiceCharge)
}

// Rounded returns the charges at 2-decimal precision for presentation and
// snapshotting. Intermediate calculation keeps full precision; rounding
// happens only here.
func (c OrderCharges) Rounded() OrderCharges {
	return OrderCharges{
		FoodPrice:     c.FoodPrice.Round(2),
		ServiceCharge: c.ServiceCharge.Round(2),
		TaxAmount:     c.TaxAmount.Round(2),
		GrandTotal:    c.GrandTotal.Round(2),
	}
}

// CalculateOrderCharges prices an order's items against the restaurant's
// service charge and tax configuration. Only counted items participate:
// INITIALIZED (still in cart) and CANCELLED items are excluded.
//
// food_price  = sum(quantity * option price) + sum(quantity * sum(extra prices))
// service     = food_price * pct/100 when percentage-based, else the flat
//               amount added to the running total as-is
// tax         = (food_price + service) * tax_pct/100
// grand_total = food_price + service + tax
//
// Pure: no side effects, idempotent. Items must carry their food option and
// extras (the repository joins populate both).
func CalculateOrderCharges(restaurant *models.Restaurant, items []models.OrderedItem) OrderCharges {
	foodPrice := decimal.Zero
	for _, item := range items {
		if !item.Status.Counted() || item.DeletedAt != nil {
			continue
		}
		quantity := decimal.NewFromInt(int64(item.Quantity))
		line := decimal.Zero
		if item.FoodOption != nil {
			line = item.FoodOption.Price.Mul(quantity)
		}
		for _, extra := range item.Extras {
			line = line.Add(extra.Price.Mul(quantity))
		}
		foodPrice = foodPrice.Add(line)
	}

	var serviceCharge decimal.Decimal
	if restaurant.ServiceChargeIsPercentage {
		serviceCharge = foodPrice.Mul(restaurant.ServiceCharge).Div(oneHundred)
	} else {
		// Flat charge lands on the running total untouched; it is not
		// scaled by the food price.
		serviceCharge = restaurant.ServiceCharge
	}

	runningTotal := foodPrice.Add(serviceCharge)
	taxAmount := runningTotal.Mul(restaurant.TaxPercentage).Div(oneHundred)
	grandTotal := runningTotal.Add(taxAmount)

	return OrderCharges{
		FoodPrice:     foodPrice,
		ServiceCharge: serviceCharge,
		TaxAmount:     taxAmount,
		GrandTotal:    grandTotal,
	}
}

// UnitAmount computes the denormalized line amount stored on an ordered item
// at entry time: quantity x (option price + extra prices).
func UnitAmount(option *models.FoodOption, extras []models.FoodExtra, quantity int) decimal.Decimal {
	unit := option.Price
	for _, extra := range extras {
		unit = unit.Add(extra.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
