// internal/domain/lineitem/aggregate_test.go
package lineitem

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggItem(variantRef, productRef, size string, price string, qty int) LineItem {
	return LineItem{
		VariantRef:  variantRef,
		ProductRef:  productRef,
		Size:        size,
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
		MaxQuantity: 10,
	}
}

func TestAggregateMergesDuplicateKeys(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		aggItem("r1", "shirt", "M", "12.00", 2),
		aggItem("r2", "mug", "", "4.50", 1),
		aggItem("r3", "shirt", "M", "11.50", 3),
	}

	merged := Aggregate(items)
	require.Len(t, merged, 2)

	shirt := merged[0]
	assert.Equal(t, "shirt", shirt.ProductRef)
	assert.Equal(t, 5, shirt.Quantity)
	assert.Equal(t, 20, shirt.MaxQuantity)
	assert.True(t, shirt.UnitPrice.Equal(decimal.RequireFromString("11.50")), "got %s", shirt.UnitPrice)
	assert.Equal(t, "r1|r3", shirt.VariantRef)

	// first-seen order across groups
	assert.Equal(t, "mug", merged[1].ProductRef)
}

func TestAggregateFirstNonEmptyDisplayFieldsWin(t *testing.T) {
	t.Parallel()

	a := aggItem("r1", "shirt", "M", "12.00", 1)
	b := aggItem("r2", "shirt", "M", "12.00", 1)
	b.ProductName = "Crew Neck Shirt"
	b.ProductImage = "https://cdn.example.com/shirt.jpg"

	merged := Aggregate([]LineItem{a, b})
	require.Len(t, merged, 1)
	assert.Equal(t, "Crew Neck Shirt", merged[0].ProductName)
	assert.Equal(t, "https://cdn.example.com/shirt.jpg", merged[0].ProductImage)
}

func TestAggregateDistinctVariantsStaySeparate(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		aggItem("r1", "shirt", "M", "12.00", 1),
		aggItem("r2", "shirt", "L", "12.00", 1),
	}

	merged := Aggregate(items)
	assert.Len(t, merged, 2)
}

func TestAggregateIsIdempotent(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		aggItem("r1", "shirt", "M", "12.00", 2),
		aggItem("r2", "shirt", "M", "11.50", 3),
		aggItem("r3", "mug", "", "4.50", 1),
	}

	once := Aggregate(items)
	twice := Aggregate(once)

	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].VariantRef, twice[i].VariantRef)
		assert.Equal(t, once[i].Quantity, twice[i].Quantity)
		assert.True(t, once[i].UnitPrice.Equal(twice[i].UnitPrice))
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		aggItem("r1", "shirt", "M", "12.00", 2),
		aggItem("r2", "shirt", "M", "11.50", 3),
	}

	_ = Aggregate(items)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "r1", items[0].VariantRef)
}
