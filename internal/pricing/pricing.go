// Package pricing computes base, extra, unit and total prices for a configured line item.
//
// Formulas by category:
//
//	SpecialPack          base = option price (item price when none), extra = 0
//	                     total = (base + supplements) * max(1, sum of variant quantities) + drinks
//	LimitedOfferRegular  base = item live price, extra = option price (optional)
//	Regular              base = 0, extra = option price
//	                     unit = base + extra + supplements, total = unit * quantity + drinks
//
// The Regular rule (the option price is the whole price) is intentional and must not be normalized.
package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"menupricing/internal/catalog"
	"menupricing/internal/classify"
)

type Input struct {
	Item     *catalog.Item
	Category classify.Category
	Option   *catalog.PricingOption
	Quantity int

	SupplementsPrice decimal.Decimal
	DrinksPrice      decimal.Decimal

	// VariantQuantities holds the quantity of every bundled variant slot of a pack.
	VariantQuantities []int
}

type Quote struct {
	Category         classify.Category `json:"category"`
	Quantity         int               `json:"quantity"`
	BasePrice        decimal.Decimal   `json:"base_price"`
	ExtraCharge      decimal.Decimal   `json:"extra_charge"`
	SupplementsPrice decimal.Decimal   `json:"supplements_price"`
	DrinksPrice      decimal.Decimal   `json:"drinks_price"`
	UnitPrice        decimal.Decimal   `json:"unit_price"`
	TotalPrice       decimal.Decimal   `json:"total_price"`
	// MissingOption is set when the category requires a pricing option and none was given.
	MissingOption bool `json:"missing_option,omitempty"`
}

type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve never fails. Missing inputs degrade to zero and are reported through the logger.
func (r *Resolver) Resolve(in Input) Quote {
	q := Quote{
		Category:         in.Category,
		Quantity:         atLeastOne(in.Quantity),
		SupplementsPrice: nonNegative(in.SupplementsPrice),
		DrinksPrice:      nonNegative(in.DrinksPrice),
	}

	optionPrice := decimal.Zero
	if in.Option != nil {
		optionPrice = money(in.Option.Price)
	} else if in.Category.IsSizeRequired() {
		q.MissingOption = true
		r.logger.Warn("Missing pricing option",
			zap.String("item_id", itemID(in.Item)),
			zap.String("category", in.Category.String()))
	}

	switch in.Category {
	case classify.SpecialPack:
		q.BasePrice = optionPrice
		if in.Option == nil && in.Item != nil {
			q.BasePrice = money(in.Item.Price)
		}
		q.ExtraCharge = decimal.Zero
		q.UnitPrice = q.BasePrice.Add(q.SupplementsPrice)
		multiplier := decimal.NewFromInt(int64(atLeastOne(sum(in.VariantQuantities))))
		q.TotalPrice = q.UnitPrice.Mul(multiplier).Add(q.DrinksPrice)
		return q

	case classify.LimitedOfferRegular:
		if in.Item != nil {
			q.BasePrice = money(in.Item.Price)
		}
		q.ExtraCharge = optionPrice

	case classify.Regular:
		q.BasePrice = decimal.Zero
		q.ExtraCharge = optionPrice
	}

	q.UnitPrice = q.BasePrice.Add(q.ExtraCharge).Add(q.SupplementsPrice)
	q.TotalPrice = q.UnitPrice.Mul(decimal.NewFromInt(int64(q.Quantity))).Add(q.DrinksPrice)
	return q
}

func money(v float64) decimal.Decimal {
	return nonNegative(decimal.NewFromFloat(v))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	return total
}

func itemID(item *catalog.Item) string {
	if item == nil {
		return ""
	}
	return item.ID
}
