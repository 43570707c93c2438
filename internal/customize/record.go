package customize

import (
	"menupricing/internal/offer"
)

// NotSelected marks a quantity slot whose variant declares options but none was chosen.
const NotSelected = "Not Selected"

type VariantEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Quantity        int      `json:"quantity"`
	SelectedOptions []string `json:"selected_options"`
}

type PriceSummary struct {
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

// Record is the configured line item handed to the cart. Slot indices are serialized as strings.
// SupplementPrices is keyed by variant name, then supplement name.
// A Record shares no memory with the Selection it was built from.
type Record struct {
	MenuItemID               string                         `json:"menu_item_id"`
	RestaurantID             string                         `json:"restaurant_id"`
	DisplayName              string                         `json:"display_name"`
	Category                 string                         `json:"category"`
	MainItemQuantity         int                            `json:"main_item_quantity"`
	PricingOptionID          string                         `json:"pricing_option_id,omitempty"`
	Variants                 []VariantEntry                 `json:"variants"`
	PackSupplementSelections map[string]map[string][]string `json:"pack_supplement_selections"`
	GlobalPackSupplements    []string                       `json:"global_pack_supplements"`
	SupplementPrices         map[string]map[string]float64  `json:"supplement_prices"`
	GlobalSupplementPrices   map[string]float64             `json:"global_supplement_prices"`
	DrinkQuantities          map[string]int                 `json:"drink_quantities"`
	IngredientPreferences    map[string]map[string][]string `json:"ingredient_preferences"`
	FreeDrinks               offer.FreeDrinks               `json:"free_drinks"`
	Pricing                  *PriceSummary                  `json:"pricing,omitempty"`
	PopupSessionID           string                         `json:"popup_session_id"`
}

// Incomplete reports whether any variant slot is still NotSelected.
func (r Record) Incomplete() bool {
	for _, v := range r.Variants {
		for _, opt := range v.SelectedOptions {
			if opt == NotSelected {
				return true
			}
		}
	}
	return false
}
