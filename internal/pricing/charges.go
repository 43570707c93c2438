package pricing

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"menupricing/internal/catalog"
	"menupricing/internal/descriptor"
	"menupricing/internal/offer"
)

// SlotSupplements maps a quantity slot index to the supplement names chosen for it.
type SlotSupplements map[int][]string

// SupplementUnitPrice resolves a supplement price for a variant. Lookup order: the variant
// description, then the item's available supplements applying to the variant. Hidden entries
// resolve to false.
func SupplementUnitPrice(item *catalog.Item, variantID string, cfg descriptor.Config, name string) (float64, bool) {
	if cfg.IsHidden(name) {
		return 0, false
	}
	if price, ok := cfg.SupplementPrice(name); ok {
		return price, true
	}
	for _, s := range item.ApplicableSupplements(variantID) {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return math.Max(s.Price, 0), true
		}
	}
	return 0, false
}

// GlobalSupplementUnitPrice resolves a pack-level supplement: offer-details overrides first,
// then the item's global supplements.
func GlobalSupplementUnitPrice(item *catalog.Item, globals descriptor.Overrides, name string) (float64, bool) {
	if globals.IsHidden(name) {
		return 0, false
	}
	if price, ok := globals.SupplementPrice(name); ok {
		return price, true
	}
	if item == nil {
		return 0, false
	}
	for _, s := range item.Supplements {
		if s.IsGlobal() && s.IsAvailable && strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return math.Max(s.Price, 0), true
		}
	}
	return 0, false
}

// SupplementCharge sums the supplements selected for one variant. Global supplements are
// added only when includeGlobal is set; a pack passes it for exactly one variant.
func SupplementCharge(
	item *catalog.Item,
	variant catalog.Variant,
	slots SlotSupplements,
	globals descriptor.Overrides,
	globalSelected []string,
	includeGlobal bool,
) decimal.Decimal {
	cfg := descriptor.Parse(variant.Description)
	total := decimal.Zero

	for slot, names := range slots {
		if slot < 0 || slot >= cfg.Quantity {
			continue
		}
		for _, name := range names {
			if price, ok := SupplementUnitPrice(item, variant.ID, cfg, name); ok {
				total = total.Add(decimal.NewFromFloat(price))
			}
		}
	}

	if includeGlobal {
		total = total.Add(GlobalSupplementCharge(item, globals, globalSelected))
	}
	return total
}

func GlobalSupplementCharge(item *catalog.Item, globals descriptor.Overrides, selected []string) decimal.Decimal {
	total := decimal.Zero
	for _, name := range dedupe(selected) {
		if price, ok := GlobalSupplementUnitPrice(item, globals, name); ok {
			total = total.Add(decimal.NewFromFloat(price))
		}
	}
	return total
}

// PackSupplementCharge aggregates every bundled variant of a pack, counting the global
// supplements once. Selections for variants that do not belong to the item are ignored.
func PackSupplementCharge(
	item *catalog.Item,
	selections map[string]SlotSupplements,
	globals descriptor.Overrides,
	globalSelected []string,
) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	if len(item.Variants) == 0 {
		return GlobalSupplementCharge(item, globals, globalSelected)
	}

	total := decimal.Zero
	for i, v := range item.Variants {
		total = total.Add(SupplementCharge(item, v, selections[v.ID], globals, globalSelected, i == 0))
	}
	return total
}

// VariantQuantities returns the decoded quantity of each variant, in catalog order.
func VariantQuantities(item *catalog.Item) []int {
	if item == nil {
		return nil
	}
	out := make([]int, 0, len(item.Variants))
	for _, v := range item.Variants {
		out = append(out, descriptor.Parse(v.Description).Quantity)
	}
	return out
}

// DrinkCharge charges the chosen drinks after consuming the free entitlement. Free units are
// taken from eligible drinks in the order the offer lists them. Unknown drinks cost nothing.
func DrinkCharge(prices map[string]float64, quantities map[string]int, free offer.FreeDrinks) decimal.Decimal {
	remaining := make(map[string]int, len(quantities))
	for id, qty := range quantities {
		if qty > 0 {
			remaining[id] = qty
		}
	}

	freeLeft := free.Quantity
	for _, id := range free.DrinkIDs {
		if freeLeft <= 0 {
			break
		}
		take := min(remaining[id], freeLeft)
		remaining[id] -= take
		freeLeft -= take
	}

	ids := make([]string, 0, len(remaining))
	for id := range remaining {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := decimal.Zero
	for _, id := range ids {
		qty := remaining[id]
		if qty <= 0 {
			continue
		}
		total = total.Add(money(prices[id]).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
