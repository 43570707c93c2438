package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"menupricing/internal/catalog"
	"menupricing/internal/classify"
	"menupricing/internal/descriptor"
	"menupricing/internal/offer"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func assertMoney(t *testing.T, label string, got decimal.Decimal, want float64) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %.2f", label, got, want)
	}
}

func TestResolve_SpecialPackQuantityScaling(t *testing.T) {
	item := &catalog.Item{ID: "pack-1", Category: "Pack Famille", Price: 900}

	q := NewResolver(nil).Resolve(Input{
		Item:              item,
		Category:          classify.Classify(item),
		Option:            &catalog.PricingOption{ID: "o1", Price: 100},
		Quantity:          1,
		SupplementsPrice:  d(20),
		DrinksPrice:       d(50),
		VariantQuantities: []int{2, 1},
	})

	assertMoney(t, "BasePrice", q.BasePrice, 100)
	assertMoney(t, "ExtraCharge", q.ExtraCharge, 0)
	assertMoney(t, "UnitPrice", q.UnitPrice, 120)
	assertMoney(t, "TotalPrice", q.TotalPrice, 410)
}

func TestResolve_SpecialPackFallsBackToItemPrice(t *testing.T) {
	item := &catalog.Item{ID: "pack-2", Category: "combo", Price: 750}

	q := NewResolver(nil).Resolve(Input{Item: item, Category: classify.SpecialPack})

	assertMoney(t, "BasePrice", q.BasePrice, 750)
	assertMoney(t, "TotalPrice", q.TotalPrice, 750)
	if !q.MissingOption {
		t.Error("expected MissingOption for a pack without option")
	}
}

func TestResolve_Regular(t *testing.T) {
	item := &catalog.Item{ID: "pizza", Category: "Pizzas", Price: 999}

	q := NewResolver(nil).Resolve(Input{
		Item:     item,
		Category: classify.Regular,
		Option:   &catalog.PricingOption{Price: 350},
		Quantity: 1,
	})

	assertMoney(t, "BasePrice", q.BasePrice, 0)
	assertMoney(t, "ExtraCharge", q.ExtraCharge, 350)
	assertMoney(t, "UnitPrice", q.UnitPrice, 350)
	assertMoney(t, "TotalPrice", q.TotalPrice, 350)
}

func TestResolve_LimitedOfferRegular(t *testing.T) {
	item := &catalog.Item{ID: "lto", Category: "Burgers", IsLimitedOffer: true, Price: 500}

	q := NewResolver(nil).Resolve(Input{
		Item:             item,
		Category:         classify.LimitedOfferRegular,
		Option:           &catalog.PricingOption{Price: 100},
		Quantity:         2,
		SupplementsPrice: d(30),
	})

	assertMoney(t, "UnitPrice", q.UnitPrice, 630)
	assertMoney(t, "TotalPrice", q.TotalPrice, 1260)
	if q.MissingOption {
		t.Error("size is optional for limited offers")
	}
}

func TestResolve_DrinksAddedOnce(t *testing.T) {
	q := NewResolver(nil).Resolve(Input{
		Item:        &catalog.Item{},
		Category:    classify.Regular,
		Option:      &catalog.PricingOption{Price: 200},
		Quantity:    3,
		DrinksPrice: d(80),
	})
	assertMoney(t, "TotalPrice", q.TotalPrice, 680)
}

func TestResolve_MissingOptionIsLoggedNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewResolver(zap.New(core))

	q := r.Resolve(Input{Item: &catalog.Item{ID: "x"}, Category: classify.Regular, Quantity: 2})

	assertMoney(t, "TotalPrice", q.TotalPrice, 0)
	if !q.MissingOption {
		t.Error("expected MissingOption")
	}
	if logs.FilterMessage("Missing pricing option").Len() != 1 {
		t.Errorf("expected one warning, got %d entries", logs.Len())
	}
}

func TestResolve_NonNegative(t *testing.T) {
	inputs := []Input{
		{Item: &catalog.Item{Price: -10}, Category: classify.LimitedOfferRegular, Option: &catalog.PricingOption{Price: -5}, Quantity: -4},
		{Item: nil, Category: classify.SpecialPack, SupplementsPrice: d(-30), DrinksPrice: d(-1), VariantQuantities: []int{-2}},
		{Category: classify.Regular, Option: &catalog.PricingOption{Price: -350}},
	}
	for i, in := range inputs {
		q := NewResolver(nil).Resolve(in)
		if q.UnitPrice.IsNegative() || q.TotalPrice.IsNegative() {
			t.Errorf("input %d: negative quote %s / %s", i, q.UnitPrice, q.TotalPrice)
		}
	}
}

func packItem() *catalog.Item {
	return &catalog.Item{
		ID:       "pack",
		Category: "Special Pack",
		Variants: []catalog.Variant{
			{ID: "burger", Name: "Burger", Description: "qty:2|supplements:Cheese:50,Egg:30|hidden_supplements:Egg"},
			{ID: "fries", Name: "Frites", Description: "qty:1"},
		},
		Supplements: []catalog.Supplement{
			{Name: "Sauce", Price: 10, IsAvailable: true, VariantIDs: []string{"fries"}},
			{Name: "Bacon", Price: 80, IsAvailable: true},
			{Name: "Truffle", Price: 500, IsAvailable: false},
		},
	}
}

func TestSupplementUnitPrice_Chain(t *testing.T) {
	item := packItem()
	burger := descriptor.Parse(item.Variants[0].Description)

	tests := []struct {
		variant string
		cfg     descriptor.Config
		name    string
		price   float64
		ok      bool
	}{
		{"burger", burger, "Cheese", 50, true},
		{"burger", burger, "Egg", 0, false},
		{"burger", burger, "Bacon", 80, true},
		{"burger", burger, "Sauce", 0, false},
		{"fries", descriptor.Parse(""), "Sauce", 10, true},
		{"fries", descriptor.Parse(""), "Truffle", 0, false},
	}
	for _, tt := range tests {
		price, ok := SupplementUnitPrice(item, tt.variant, tt.cfg, tt.name)
		if price != tt.price || ok != tt.ok {
			t.Errorf("SupplementUnitPrice(%s, %s) = %.2f, %v; want %.2f, %v", tt.variant, tt.name, price, ok, tt.price, tt.ok)
		}
	}
}

func TestPackSupplementCharge_GlobalsCountedOnce(t *testing.T) {
	item := packItem()
	globals := descriptor.ResolveOverrides(catalog.OfferDetails(`{"global_supplements": {"Ketchup": 15, "Mayo": 25}, "hidden_global_supplements": ["Mayo"]}`))

	selections := map[string]SlotSupplements{
		"burger":  {0: {"Cheese"}, 1: {"Cheese", "Egg"}, 7: {"Cheese"}},
		"fries":   {0: {"Sauce"}},
		"unknown": {0: {"Bacon"}},
	}

	got := PackSupplementCharge(item, selections, globals, []string{"Ketchup", "Mayo", "ketchup"})

	// 50 + 50 (burger slots 0 and 1) + 10 (fries) + 15 (Ketchup once)
	assertMoney(t, "PackSupplementCharge", got, 125)

	perVariant := SupplementCharge(item, item.Variants[0], selections["burger"], globals, []string{"Ketchup"}, true).
		Add(SupplementCharge(item, item.Variants[1], selections["fries"], globals, []string{"Ketchup"}, true))
	if perVariant.Equal(got) {
		t.Error("including globals on every variant should double count; guard not exercised")
	}
}

func TestVariantQuantities(t *testing.T) {
	got := VariantQuantities(packItem())
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("VariantQuantities = %v, want [2 1]", got)
	}
}

func TestDrinkCharge(t *testing.T) {
	prices := map[string]float64{"cola": 100, "fanta": 120, "water": 50}
	free := offer.FreeDrinks{DrinkIDs: []string{"cola", "fanta"}, Quantity: 2}

	tests := []struct {
		name string
		qty  map[string]int
		want float64
	}{
		{"all free", map[string]int{"cola": 2}, 0},
		{"free spills to second drink", map[string]int{"cola": 1, "fanta": 2}, 120},
		{"ineligible drink paid", map[string]int{"water": 2, "cola": 1}, 100},
		{"negative ignored", map[string]int{"water": -3}, 0},
	}
	for _, tt := range tests {
		assertMoney(t, tt.name, DrinkCharge(prices, tt.qty, free), tt.want)
	}

	assertMoney(t, "no entitlement", DrinkCharge(prices, map[string]int{"cola": 2}, offer.FreeDrinks{}), 200)
}
