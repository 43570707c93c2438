// Package classify assigns a catalog item to exactly one behavioral category.
package classify

import (
	"strings"

	"menupricing/internal/catalog"
)

type Category int

const (
	Regular Category = iota
	LimitedOfferRegular
	SpecialPack
)

// packMarkers are matched case-insensitively against the item's category label.
var packMarkers = []string{"pack", "combo", "special"}

func (c Category) String() string {
	switch c {
	case SpecialPack:
		return "special_pack"
	case LimitedOfferRegular:
		return "limited_offer_regular"
	default:
		return "regular"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify is recomputed from the item on every call; nil items are Regular.
func Classify(item *catalog.Item) Category {
	if item == nil {
		return Regular
	}
	label := strings.ToLower(item.Category)
	for _, marker := range packMarkers {
		if strings.Contains(label, marker) {
			return SpecialPack
		}
	}
	if item.IsLimitedOffer {
		return LimitedOfferRegular
	}
	return Regular
}

// IsSizeRequired reports whether a pricing option must be chosen before adding to cart.
// For limited offers the size is an optional upsell.
func (c Category) IsSizeRequired() bool {
	switch c {
	case SpecialPack, Regular:
		return true
	default:
		return false
	}
}

func (c Category) ShowFreeDrinksAtPackLevel() bool {
	return c == SpecialPack
}

func (c Category) ShowFreeDrinksAtVariantLevel() bool {
	return c == LimitedOfferRegular
}
