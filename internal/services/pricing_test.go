package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/NumanIbnMazid/restaurant-management/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func percentRestaurant(serviceCharge, taxPct string) *models.Restaurant {
	return &models.Restaurant{
		ID:                        1,
		ServiceChargeIsPercentage: true,
		ServiceCharge:             dec(serviceCharge),
		TaxPercentage:             dec(taxPct),
	}
}

func item(status models.ItemStatus, qty int, optionPrice string, extraPrices ...string) models.OrderedItem {
	it := models.OrderedItem{
		Quantity:   qty,
		Status:     status,
		FoodOption: &models.FoodOption{Price: dec(optionPrice)},
	}
	for _, p := range extraPrices {
		it.Extras = append(it.Extras, models.FoodExtra{Price: dec(p)})
	}
	return it
}

func TestCalculateOrderChargesPercentageServiceCharge(t *testing.T) {
	// 100.00 of food, 10% service charge, 5% tax on the running total.
	restaurant := percentRestaurant("10", "5")
	items := []models.OrderedItem{item(models.ItemStatusInTable, 2, "50")}

	charges := CalculateOrderCharges(restaurant, items)

	assert.True(t, charges.FoodPrice.Equal(dec("100")), "food price: %s", charges.FoodPrice)
	assert.True(t, charges.ServiceCharge.Equal(dec("10")), "service charge: %s", charges.ServiceCharge)
	assert.True(t, charges.RunningTotal().Equal(dec("110")), "running total: %s", charges.RunningTotal())
	assert.True(t, charges.TaxAmount.Equal(dec("5.5")), "tax: %s", charges.TaxAmount)
	assert.True(t, charges.GrandTotal.Equal(dec("115.5")), "grand total: %s", charges.GrandTotal)
}

func TestCalculateOrderChargesFlatServiceCharge(t *testing.T) {
	restaurant := &models.Restaurant{
		ServiceChargeIsPercentage: false,
		ServiceCharge:             dec("7.50"),
		TaxPercentage:             dec("10"),
	}
	items := []models.OrderedItem{item(models.ItemStatusInTable, 1, "42.50")}

	charges := CalculateOrderCharges(restaurant, items)

	assert.True(t, charges.ServiceCharge.Equal(dec("7.50")))
	assert.True(t, charges.RunningTotal().Equal(dec("50")))
	assert.True(t, charges.TaxAmount.Equal(dec("5")))
	assert.True(t, charges.GrandTotal.Equal(dec("55")))
}

func TestCalculateOrderChargesExtras(t *testing.T) {
	// Each unit carries its extras: qty 3 of a 10.00 option with 1.50 + 0.50
	// extras is 3 * 12.00.
	restaurant := percentRestaurant("0", "0")
	items := []models.OrderedItem{item(models.ItemStatusConfirmed, 3, "10", "1.50", "0.50")}

	charges := CalculateOrderCharges(restaurant, items)
	assert.True(t, charges.FoodPrice.Equal(dec("36")), "food price: %s", charges.FoodPrice)
	assert.True(t, charges.GrandTotal.Equal(dec("36")))
}

func TestCalculateOrderChargesCountedSetOnly(t *testing.T) {
	restaurant := percentRestaurant("10", "5")
	items := []models.OrderedItem{
		item(models.ItemStatusInTable, 1, "100"),
		item(models.ItemStatusInitialized, 1, "999"),
		item(models.ItemStatusCancelled, 1, "999"),
	}

	charges := CalculateOrderCharges(restaurant, items)
	assert.True(t, charges.FoodPrice.Equal(dec("100")),
		"cart and cancelled items must not be priced: %s", charges.FoodPrice)
	assert.True(t, charges.GrandTotal.Equal(dec("115.5")))
}

func TestCalculateOrderChargesEmptyOrder(t *testing.T) {
	restaurant := percentRestaurant("10", "5")

	charges := CalculateOrderCharges(restaurant, nil)
	assert.True(t, charges.FoodPrice.IsZero())
	assert.True(t, charges.ServiceCharge.IsZero())
	assert.True(t, charges.TaxAmount.IsZero())
	assert.True(t, charges.GrandTotal.IsZero())
}

func TestCalculateOrderChargesIdempotent(t *testing.T) {
	restaurant := percentRestaurant("12.5", "7.25")
	items := []models.OrderedItem{
		item(models.ItemStatusInTable, 2, "33.33", "0.99"),
		item(models.ItemStatusPlaced, 1, "18.75"),
	}

	first := CalculateOrderCharges(restaurant, items)
	second := CalculateOrderCharges(restaurant, items)
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
}

func TestRoundedKeepsFullPrecisionUntilPresentation(t *testing.T) {
	// 3 * 9.99 = 29.97, 10% service = 2.997, full precision mid-calculation.
	restaurant := percentRestaurant("10", "0")
	items := []models.OrderedItem{item(models.ItemStatusInTable, 3, "9.99")}

	charges := CalculateOrderCharges(restaurant, items)
	assert.True(t, charges.ServiceCharge.Equal(dec("2.997")), "unrounded: %s", charges.ServiceCharge)

	rounded := charges.Rounded()
	assert.True(t, rounded.ServiceCharge.Equal(dec("3.00")))
	assert.True(t, rounded.GrandTotal.Equal(dec("32.97")))
}

func TestUnitAmount(t *testing.T) {
	option := &models.FoodOption{Price: dec("10")}
	extras := []models.FoodExtra{{Price: dec("1.50")}, {Price: dec("0.25")}}

	assert.True(t, UnitAmount(option, extras, 4).Equal(dec("47")))
	assert.True(t, UnitAmount(option, nil, 2).Equal(dec("20")))
}
