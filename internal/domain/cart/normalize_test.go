package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cakeUUID  = "a3b8c9d0-1234-5678-9abc-def012345678"
	drinkUUID = "b4c9d0e1-2345-6789-abcd-ef0123456789"
)

func TestNormalize_StripsLegacyPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		rawID  string
		wantID string
	}{
		{"cake prefix", "cake-" + cakeUUID, cakeUUID},
		{"drink prefix", "drink-" + drinkUUID, drinkUUID},
		{"toppings prefix", "toppings-" + cakeUUID, cakeUUID},
		{"case variant prefix", "cakE-" + cakeUUID, cakeUUID},
		{"no prefix", cakeUUID, cakeUUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Normalize(context.Background(), []Line{
				{SourceID: tt.rawID, Name: "Tiramisu", Quantity: 1, Type: ProductCake},
			})
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantID, items[0].ProductID)
		})
	}
}

func TestNormalize_PrefersResolvedProductID(t *testing.T) {
	items, err := Normalize(context.Background(), []Line{
		{
			ProductID: cakeUUID,
			SourceID:  "cake-" + drinkUUID,
			Name:      "Tiramisu",
			Quantity:  2,
			Type:      ProductCake,
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cakeUUID, items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestNormalize_ShortIDFails(t *testing.T) {
	_, err := Normalize(context.Background(), []Line{
		{SourceID: "cake-123", Name: "Bánh bông lan", Quantity: 1, Type: ProductCake},
	})

	var ipErr *InvalidProductError
	require.ErrorAs(t, err, &ipErr)
	assert.Equal(t, "Bánh bông lan", ipErr.Name)
}

func TestNormalize_DropsEmptyToppings(t *testing.T) {
	items, err := Normalize(context.Background(), []Line{
		{
			SourceID: "drink-" + drinkUUID,
			Name:     "Trà sữa",
			Quantity: 1,
			Type:     ProductDrink,
			Toppings: []ToppingRef{
				{ID: "toppings-id-000000000000000000000001", Name: "Trân châu"},
				{},
				{Name: "nameless"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []string{"toppings-id-000000000000000000000001"}, items[0].ToppingIDs)
}

func TestNormalize_DeduplicatesByProductAndToppings(t *testing.T) {
	line := Line{
		SourceID: "cake-" + cakeUUID,
		Name:     "Tiramisu",
		Quantity: 1,
		Type:     ProductCake,
		Toppings: []ToppingRef{{ID: "t-111111111111111111111111111111"}, {ID: "t-222222222222222222222222222222"}},
	}
	// Same logical item with topping order swapped.
	swapped := line
	swapped.Toppings = []ToppingRef{{ID: "t-222222222222222222222222222222"}, {ID: "t-111111111111111111111111111111"}}

	items, err := Normalize(context.Background(), []Line{line, swapped})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNormalize_DifferentToppingsAreDistinct(t *testing.T) {
	base := Line{SourceID: "cake-" + cakeUUID, Name: "Tiramisu", Quantity: 1, Type: ProductCake}
	withTopping := base
	withTopping.Toppings = []ToppingRef{{ID: "t-111111111111111111111111111111"}}

	items, err := Normalize(context.Background(), []Line{base, withTopping})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNormalize_NoDuplicatePairsInOutput(t *testing.T) {
	lines := []Line{
		{SourceID: "cake-" + cakeUUID, Name: "a", Quantity: 1, Type: ProductCake},
		{SourceID: cakeUUID, Name: "a again", Quantity: 3, Type: ProductCake},
		{SourceID: "drink-" + drinkUUID, Name: "b", Quantity: 2, Type: ProductDrink},
		{SourceID: "drink-" + drinkUUID, Name: "b again", Quantity: 2, Type: ProductDrink},
	}

	items, err := Normalize(context.Background(), lines)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, it := range items {
		key := dedupeKey(it)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate pair %s", key)
		seen[key] = struct{}{}
	}
	assert.Len(t, items, 2)
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: decimal.NewFromInt(45000), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(30000), Quantity: 1},
	}
	assert.True(t, decimal.NewFromInt(120000).Equal(Subtotal(lines)))
}
