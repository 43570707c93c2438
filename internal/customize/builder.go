// Package customize assembles the customization record handed to the cart subsystem.
package customize

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"menupricing/internal/catalog"
	"menupricing/internal/classify"
	"menupricing/internal/descriptor"
	"menupricing/internal/offer"
	"menupricing/internal/pricing"
)

// Selection is the mutable state the popup collects. Maps are keyed by variant id, then slot.
type Selection struct {
	Quantity          int                                `json:"quantity"`
	OptionID          string                             `json:"option_id,omitempty"`
	VariantOptions    map[string]map[int]string          `json:"variant_options,omitempty"`
	Ingredients       map[string]map[int][]string        `json:"ingredients,omitempty"`
	Supplements       map[string]pricing.SlotSupplements `json:"supplements,omitempty"`
	GlobalSupplements []string                           `json:"global_supplements,omitempty"`
	DrinkQuantities   map[string]int                     `json:"drink_quantities,omitempty"`
}

type Input struct {
	Item      *catalog.Item
	Option    *catalog.PricingOption
	Selection Selection
	Globals   descriptor.Overrides
	Offer     offer.Offer
	Quote     *pricing.Quote
	// SessionID distinguishes repeated adds from the same popup session. Empty generates one.
	SessionID string
}

type Builder struct {
	newToken func() string
}

func NewBuilder() *Builder {
	return &Builder{newToken: uuid.NewString}
}

// Build is total: references to unknown variants or unresolvable supplements are dropped.
func (b *Builder) Build(in Input) Record {
	item := in.Item
	if item == nil {
		item = &catalog.Item{}
	}
	category := classify.Classify(item)
	sel := in.Selection

	rec := Record{
		MenuItemID:               item.ID,
		RestaurantID:             item.RestaurantID,
		DisplayName:              item.Name,
		Category:                 category.String(),
		MainItemQuantity:         max(sel.Quantity, 1),
		Variants:                 make([]VariantEntry, 0, len(item.Variants)),
		PackSupplementSelections: map[string]map[string][]string{},
		GlobalPackSupplements:    []string{},
		SupplementPrices:         map[string]map[string]float64{},
		GlobalSupplementPrices:   map[string]float64{},
		DrinkQuantities:          map[string]int{},
		IngredientPreferences:    map[string]map[string][]string{},
		PopupSessionID:           in.SessionID,
	}
	if rec.PopupSessionID == "" {
		rec.PopupSessionID = b.newToken()
	}
	if in.Option != nil {
		rec.PricingOptionID = in.Option.ID
	}

	names := make([]string, 0, len(item.Variants))
	for _, v := range item.Variants {
		cfg := descriptor.Parse(v.Description)
		names = append(names, v.Name)
		rec.Variants = append(rec.Variants, VariantEntry{
			ID:              v.ID,
			Name:            v.Name,
			Description:     v.Description,
			Quantity:        cfg.Quantity,
			SelectedOptions: variantOptions(cfg, sel.VariantOptions[v.ID]),
		})

		if slots, prices := supplementSlots(item, v, cfg, sel.Supplements[v.ID]); len(slots) > 0 {
			rec.PackSupplementSelections[v.Name] = slots
			rec.SupplementPrices[v.Name] = prices
		}
		if prefs := ingredientSlots(cfg, sel.Ingredients[v.ID]); len(prefs) > 0 {
			rec.IngredientPreferences[v.Name] = prefs
		}
	}

	if category == classify.SpecialPack {
		rec.DisplayName = FormatPackName(item.Name, names)
	}

	seen := map[string]struct{}{}
	for _, name := range sel.GlobalSupplements {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup || name == "" {
			continue
		}
		price, ok := pricing.GlobalSupplementUnitPrice(item, in.Globals, name)
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		rec.GlobalPackSupplements = append(rec.GlobalPackSupplements, name)
		rec.GlobalSupplementPrices[name] = price
	}

	for id, qty := range sel.DrinkQuantities {
		if qty > 0 {
			rec.DrinkQuantities[id] = qty
		}
	}

	if in.Offer.Active && !in.Offer.FreeDrinks.IsEmpty() {
		rec.FreeDrinks = offer.FreeDrinks{
			DrinkIDs: append([]string(nil), in.Offer.FreeDrinks.DrinkIDs...),
			Quantity: in.Offer.FreeDrinks.Quantity,
		}
	}

	if in.Quote != nil {
		rec.Pricing = &PriceSummary{
			UnitPrice:  in.Quote.UnitPrice.StringFixed(2),
			TotalPrice: in.Quote.TotalPrice.StringFixed(2),
		}
	}
	return rec
}

// variantOptions returns one entry per quantity slot. Slots outside the variant's quantity
// are dropped; unchosen slots get NotSelected when the variant declares options.
func variantOptions(cfg descriptor.Config, chosen map[int]string) []string {
	placeholder := ""
	if cfg.HasOptions() {
		placeholder = NotSelected
	}
	out := make([]string, cfg.Quantity)
	for i := range out {
		if opt, ok := chosen[i]; ok && strings.TrimSpace(opt) != "" {
			out[i] = opt
			continue
		}
		out[i] = placeholder
	}
	return out
}

func inRange(cfg descriptor.Config, slot int) bool {
	return slot >= 0 && slot < cfg.Quantity
}

// supplementSlots keeps the supplements pricing would charge and returns their unit prices.
func supplementSlots(
	item *catalog.Item,
	v catalog.Variant,
	cfg descriptor.Config,
	chosen pricing.SlotSupplements,
) (map[string][]string, map[string]float64) {
	out := map[string][]string{}
	prices := map[string]float64{}
	for slot, names := range chosen {
		if !inRange(cfg, slot) {
			continue
		}
		var kept []string
		for _, name := range names {
			price, ok := pricing.SupplementUnitPrice(item, v.ID, cfg, name)
			if !ok {
				continue
			}
			kept = append(kept, name)
			prices[name] = price
		}
		if len(kept) > 0 {
			out[strconv.Itoa(slot)] = kept
		}
	}
	return out, prices
}

func ingredientSlots(cfg descriptor.Config, prefs map[int][]string) map[string][]string {
	out := map[string][]string{}
	for slot, names := range prefs {
		if !inRange(cfg, slot) {
			continue
		}
		out[strconv.Itoa(slot)] = append([]string{}, names...)
	}
	return out
}
