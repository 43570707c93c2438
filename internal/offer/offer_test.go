package offer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"menupricing/internal/catalog"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func newTestResolver() *Resolver {
	return NewResolver(func() time.Time { return fixedNow })
}

func TestResolver_IsActive(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name string
		item *catalog.Item
		want bool
	}{
		{"ended one second ago", &catalog.Item{OfferEndAt: at(fixedNow.Add(-time.Second))}, false},
		{"ends in one hour", &catalog.Item{OfferEndAt: at(fixedNow.Add(time.Hour))}, true},
		{"started, no end", &catalog.Item{OfferStartAt: at(fixedNow.Add(-time.Hour))}, true},
		{"not started yet", &catalog.Item{OfferStartAt: at(fixedNow.Add(time.Minute))}, false},
		{"no bounds", &catalog.Item{}, true},
		{"nil item", nil, false},
	}

	for _, tt := range tests {
		if got := r.IsActive(tt.item); got != tt.want {
			t.Errorf("%s: IsActive() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolve_InactiveHasNoEffects(t *testing.T) {
	item := &catalog.Item{
		Price:         500,
		OfferEndAt:    at(fixedNow.Add(-time.Second)),
		OfferTypes:    []string{catalog.OfferTypeFreeDrinks},
		DrinkIDs:      []string{"cola"},
		DrinkQuantity: 1,
		OfferDetails:  catalog.OfferDetails(`{"original_price": 1000}`),
	}

	o := newTestResolver().Resolve(item, nil)
	if o.Active || o.DiscountPercent != nil || !o.FreeDrinks.IsEmpty() || o.Delivery != nil {
		t.Errorf("Resolve() = %+v, want inactive offer", o)
	}
	if o.Summary() != nil {
		t.Errorf("Summary() = %v, want nil", o.Summary())
	}
}

func TestResolve_DiscountPercent(t *testing.T) {
	tests := []struct {
		name    string
		details string
		price   float64
		want    *int
	}{
		{"from original price", `{"original_price": 600}`, 480, intPtr(20)},
		{"rounded", `{"original_price": 300}`, 199, intPtr(34)},
		{"original not greater falls back", `{"original_price": 400, "discount_percentage": 15}`, 480, intPtr(15)},
		{"explicit only", `{"discount_percentage": 12.6}`, 480, intPtr(13)},
		{"nothing", `{}`, 480, nil},
	}

	for _, tt := range tests {
		item := &catalog.Item{Price: tt.price, OfferDetails: catalog.OfferDetails(tt.details)}
		got := newTestResolver().Resolve(item, nil).DiscountPercent
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("%s: DiscountPercent = %d, want nil", tt.name, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("%s: DiscountPercent = %v, want %d", tt.name, got, *tt.want)
		}
	}
}

func TestResolve_OptionDetailsWin(t *testing.T) {
	item := &catalog.Item{
		Price:         500,
		OfferTypes:    []string{"free_drinks", "SPECIAL_DELIVERY"},
		DrinkIDs:      []string{"water"},
		DrinkQuantity: 1,
		OfferDetails:  catalog.OfferDetails(`{"original_price": 1000, "delivery_type": "free"}`),
	}
	option := &catalog.PricingOption{
		Price:        800,
		OfferDetails: catalog.OfferDetails(`{"original_price": 1000, "free_drink_ids": ["cola", "fanta"], "free_drinks_quantity": 2, "delivery_type": "percentage", "delivery_value": 50}`),
	}

	o := newTestResolver().Resolve(item, option)

	if o.DiscountPercent == nil || *o.DiscountPercent != 20 {
		t.Errorf("DiscountPercent = %v, want 20 from the option", o.DiscountPercent)
	}
	if strings.Join(o.FreeDrinks.DrinkIDs, ",") != "cola,fanta" || o.FreeDrinks.Quantity != 2 {
		t.Errorf("FreeDrinks = %+v, want option drinks", o.FreeDrinks)
	}
	if o.Delivery == nil || o.Delivery.Type != DeliveryPercentage || o.Delivery.Value != 50 {
		t.Errorf("Delivery = %+v, want percentage 50", o.Delivery)
	}

	want := []string{"20% REMISE", "2 BOISSONS GRATUITES", "LIVRAISON -50%"}
	if strings.Join(o.Summary(), "|") != strings.Join(want, "|") {
		t.Errorf("Summary() = %v, want %v", o.Summary(), want)
	}
}

func TestResolve_ItemFallbackAndOfferTypes(t *testing.T) {
	item := &catalog.Item{
		Price:         500,
		OfferTypes:    []string{catalog.OfferTypeFreeDrinks},
		DrinkIDs:      []string{"water"},
		DrinkQuantity: 1,
		OfferDetails:  catalog.OfferDetails(`{"delivery_type": "free"}`),
	}

	o := newTestResolver().Resolve(item, &catalog.PricingOption{Price: 100})

	if strings.Join(o.FreeDrinks.DrinkIDs, ",") != "water" || o.FreeDrinks.Quantity != 1 {
		t.Errorf("FreeDrinks = %+v, want item-level water x1", o.FreeDrinks)
	}
	if o.Delivery != nil {
		t.Errorf("Delivery = %+v, want nil without special_delivery offer type", o.Delivery)
	}
	if got := strings.Join(o.Summary(), "|"); got != "1 BOISSON GRATUITE" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestDeliveryDiscount_Apply(t *testing.T) {
	fee := decimal.NewFromInt(200)
	tests := []struct {
		d    DeliveryDiscount
		want int64
	}{
		{DeliveryDiscount{Type: DeliveryFree}, 0},
		{DeliveryDiscount{Type: DeliveryPercentage, Value: 25}, 150},
		{DeliveryDiscount{Type: DeliveryFixed, Value: 50}, 150},
		{DeliveryDiscount{Type: DeliveryFixed, Value: 500}, 0},
		{DeliveryDiscount{Type: "bogus", Value: 500}, 200},
	}
	for _, tt := range tests {
		if got := tt.d.Apply(fee); !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("Apply(%+v) = %s, want %d", tt.d, got, tt.want)
		}
	}
}

func intPtr(v int) *int { return &v }
