// Package offer resolves time-boxed promotional effects for catalog items.
package offer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"menupricing/internal/catalog"
)

type DeliveryType string

const (
	DeliveryFree       DeliveryType = "free"
	DeliveryPercentage DeliveryType = "percentage"
	DeliveryFixed      DeliveryType = "fixed"
)

type FreeDrinks struct {
	DrinkIDs []string `json:"drink_ids"`
	Quantity int      `json:"quantity"`
}

func (f FreeDrinks) IsEmpty() bool {
	return len(f.DrinkIDs) == 0 || f.Quantity <= 0
}

// Eligible reports whether drinkID can be taken as a free drink.
func (f FreeDrinks) Eligible(drinkID string) bool {
	for _, id := range f.DrinkIDs {
		if id == drinkID {
			return true
		}
	}
	return false
}

type DeliveryDiscount struct {
	Type  DeliveryType `json:"type"`
	Value float64      `json:"value"`
}

// Apply returns the delivery fee after the discount. The result is never negative.
func (d DeliveryDiscount) Apply(fee decimal.Decimal) decimal.Decimal {
	var out decimal.Decimal
	switch d.Type {
	case DeliveryFree:
		return decimal.Zero
	case DeliveryPercentage:
		pct := decimal.NewFromFloat(d.Value)
		out = fee.Sub(fee.Mul(pct).Div(decimal.NewFromInt(100)))
	case DeliveryFixed:
		out = fee.Sub(decimal.NewFromFloat(d.Value))
	default:
		out = fee
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Offer is the set of effects active for one item and pricing option.
type Offer struct {
	Active          bool              `json:"active"`
	DiscountPercent *int              `json:"discount_percent,omitempty"`
	FreeDrinks      FreeDrinks        `json:"free_drinks"`
	Delivery        *DeliveryDiscount `json:"delivery,omitempty"`
}

type Resolver struct {
	now func() time.Time
}

// NewResolver uses time.Now when now is nil.
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// IsActive checks the offer window. Absent bounds do not constrain their side.
func (r *Resolver) IsActive(item *catalog.Item) bool {
	if item == nil {
		return false
	}
	now := r.now()
	if item.OfferStartAt != nil && now.Before(*item.OfferStartAt) {
		return false
	}
	if item.OfferEndAt != nil && now.After(*item.OfferEndAt) {
		return false
	}
	return true
}

// Resolve returns the active effects for the item with the optional selected option.
// Option-level details take precedence over item-level ones.
func (r *Resolver) Resolve(item *catalog.Item, option *catalog.PricingOption) Offer {
	if !r.IsActive(item) {
		return Offer{}
	}

	chain := sourcesFor(item, option)
	o := Offer{
		Active:          true,
		DiscountPercent: discountPercent(chain),
	}
	if item.HasOfferType(catalog.OfferTypeFreeDrinks) {
		o.FreeDrinks = freeDrinks(item, option)
	}
	if item.HasOfferType(catalog.OfferTypeSpecialDelivery) {
		o.Delivery = deliveryDiscount(chain)
	}
	return o
}

type source struct {
	details   catalog.OfferDetails
	livePrice float64
}

func sourcesFor(item *catalog.Item, option *catalog.PricingOption) []source {
	var chain []source
	if option != nil {
		chain = append(chain, source{details: option.OfferDetails, livePrice: option.Price})
	}
	return append(chain, source{details: item.OfferDetails, livePrice: item.Price})
}

func discountPercent(chain []source) *int {
	for _, src := range chain {
		original := src.details.Get(catalog.KeyOriginalPrice)
		if !original.Exists() {
			continue
		}
		orig := decimal.NewFromFloat(original.Float())
		live := decimal.NewFromFloat(src.livePrice)
		if orig.LessThanOrEqual(live) || !orig.IsPositive() {
			continue
		}
		pct := int(orig.Sub(live).Div(orig).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
		return &pct
	}
	for _, src := range chain {
		explicit := src.details.Get(catalog.KeyDiscountPercentage)
		if explicit.Exists() && explicit.Type == gjson.Number {
			pct := int(decimal.NewFromFloat(explicit.Float()).Round(0).IntPart())
			return &pct
		}
	}
	return nil
}

func freeDrinks(item *catalog.Item, option *catalog.PricingOption) FreeDrinks {
	if option != nil {
		ids := option.OfferDetails.Get(catalog.KeyFreeDrinkIDs)
		if ids.IsArray() && len(ids.Array()) > 0 {
			f := FreeDrinks{Quantity: int(option.OfferDetails.Get(catalog.KeyFreeDrinksQuantity).Int())}
			for _, id := range ids.Array() {
				if s := strings.TrimSpace(id.String()); s != "" {
					f.DrinkIDs = append(f.DrinkIDs, s)
				}
			}
			return clampDrinks(f)
		}
	}
	if len(item.DrinkIDs) > 0 {
		return clampDrinks(FreeDrinks{
			DrinkIDs: append([]string(nil), item.DrinkIDs...),
			Quantity: item.DrinkQuantity,
		})
	}
	return FreeDrinks{}
}

func clampDrinks(f FreeDrinks) FreeDrinks {
	if f.Quantity < 0 {
		f.Quantity = 0
	}
	return f
}

func deliveryDiscount(chain []source) *DeliveryDiscount {
	for _, src := range chain {
		kind := src.details.Get(catalog.KeyDeliveryType)
		if !kind.Exists() {
			continue
		}
		d := DeliveryDiscount{Type: DeliveryType(strings.ToLower(strings.TrimSpace(kind.String())))}
		switch d.Type {
		case DeliveryFree:
		case DeliveryPercentage, DeliveryFixed:
			d.Value = src.details.Get(catalog.KeyDeliveryValue).Float()
			if d.Value < 0 {
				d.Value = 0
			}
		default:
			continue
		}
		return &d
	}
	return nil
}
