package catalog

import (
	"errors"
	"strings"
	"time"
)

var ErrItemNotFound = errors.New("catalog item not found")

// Item is a sellable catalog entry as loaded from the catalog source.
// Items are read-only for the duration of a resolution pass.
type Item struct {
	ID             string          `json:"id" db:"id"`
	RestaurantID   string          `json:"restaurant_id" db:"restaurant_id"`
	ParentID       string          `json:"parent_id,omitempty" db:"parent_id"`
	Name           string          `json:"name" db:"name"`
	Category       string          `json:"category" db:"category"`
	Price          float64         `json:"price" db:"price"`
	IsLimitedOffer bool            `json:"is_limited_offer" db:"is_limited_offer"`
	OfferStartAt   *time.Time      `json:"offer_start_at,omitempty" db:"offer_start_at"`
	OfferEndAt     *time.Time      `json:"offer_end_at,omitempty" db:"offer_end_at"`
	OfferTypes     []string        `json:"offer_types,omitempty" db:"-"`
	DrinkIDs       []string        `json:"drink_ids,omitempty" db:"-"`
	DrinkQuantity  int             `json:"drink_quantity" db:"drink_quantity"`
	OfferDetails   OfferDetails    `json:"offer_details,omitempty" db:"offer_details"`
	PricingOptions []PricingOption `json:"pricing_options,omitempty" db:"-"`
	Variants       []Variant       `json:"variants,omitempty" db:"-"`
	Supplements    []Supplement    `json:"supplements,omitempty" db:"-"`
}

// Variant is one bundled component or selectable size of an item.
// Description is encoded in the variant mini-language (see package descriptor).
type Variant struct {
	ID          string `json:"id" db:"id"`
	ItemID      string `json:"item_id" db:"item_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// PricingOption is a priced size or portion. An empty OwnerID makes it global to the item.
type PricingOption struct {
	ID           string       `json:"id" db:"id"`
	OwnerID      string       `json:"owner_id,omitempty" db:"owner_id"`
	Size         string       `json:"size" db:"size"`
	Price        float64      `json:"price" db:"price"`
	IsDefault    bool         `json:"is_default" db:"is_default"`
	OfferDetails OfferDetails `json:"offer_details,omitempty" db:"offer_details"`
}

// Supplement is an optional additive charge. An empty VariantIDs list applies it to every variant.
type Supplement struct {
	Name        string   `json:"name" db:"name"`
	Price       float64  `json:"price" db:"price"`
	IsAvailable bool     `json:"is_available" db:"is_available"`
	VariantIDs  []string `json:"variant_ids,omitempty" db:"-"`
}

// Offer types advertised by an item.
const (
	OfferTypeFreeDrinks      = "free_drinks"
	OfferTypeSpecialDelivery = "special_delivery"
	OfferTypeDiscount        = "discount"
)

func (s Supplement) AppliesTo(variantID string) bool {
	if len(s.VariantIDs) == 0 {
		return true
	}
	for _, id := range s.VariantIDs {
		if id == variantID {
			return true
		}
	}
	return false
}

func (s Supplement) IsGlobal() bool {
	return len(s.VariantIDs) == 0
}

// HasOfferType reports whether the item advertises the given offer type (case-insensitive).
func (i *Item) HasOfferType(offerType string) bool {
	if i == nil {
		return false
	}
	for _, t := range i.OfferTypes {
		if strings.EqualFold(strings.TrimSpace(t), offerType) {
			return true
		}
	}
	return false
}

// Variant returns the variant with the given id, if it belongs to the item.
func (i *Item) Variant(id string) (Variant, bool) {
	if i == nil {
		return Variant{}, false
	}
	for _, v := range i.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Option returns the pricing option with the given id.
func (i *Item) Option(id string) (*PricingOption, bool) {
	if i == nil || id == "" {
		return nil, false
	}
	for idx := range i.PricingOptions {
		if i.PricingOptions[idx].ID == id {
			return &i.PricingOptions[idx], true
		}
	}
	return nil, false
}

// OptionsFor returns the options owned by scopeID plus the global ones, in catalog order.
func (i *Item) OptionsFor(scopeID string) []PricingOption {
	if i == nil {
		return nil
	}
	var out []PricingOption
	for _, opt := range i.PricingOptions {
		if opt.OwnerID == "" || opt.OwnerID == scopeID || opt.OwnerID == i.ID {
			out = append(out, opt)
		}
	}
	return out
}

// DefaultOption picks the first IsDefault option in scope, falling back to the first option in scope.
// Several defaults in one scope are tolerated: the first one wins.
func (i *Item) DefaultOption(scopeID string) *PricingOption {
	options := i.OptionsFor(scopeID)
	if len(options) == 0 {
		return nil
	}
	for idx := range options {
		if options[idx].IsDefault {
			return &options[idx]
		}
	}
	return &options[0]
}

// ApplicableSupplements lists the available supplements that apply to the variant.
func (i *Item) ApplicableSupplements(variantID string) []Supplement {
	if i == nil {
		return nil
	}
	var out []Supplement
	for _, s := range i.Supplements {
		if s.IsAvailable && s.AppliesTo(variantID) {
			out = append(out, s)
		}
	}
	return out
}
