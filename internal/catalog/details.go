package catalog

import (
	"database/sql/driver"
	"fmt"

	"github.com/tidwall/gjson"
)

// OfferDetails is the free-form JSON document attached to items and pricing options.
// Lookups never fail: a missing or malformed document behaves like an empty object.
type OfferDetails []byte

// Known keys.
const (
	KeyGlobalIngredients       = "global_ingredients"
	KeyGlobalSupplements       = "global_supplements"
	KeyHiddenGlobalSupplements = "hidden_global_supplements"
	KeyOriginalPrice           = "original_price"
	KeyDiscountPercentage      = "discount_percentage"
	KeyFreeDrinkIDs            = "free_drink_ids"
	KeyFreeDrinksQuantity      = "free_drinks_quantity"
	KeyDeliveryType            = "delivery_type"
	KeyDeliveryValue           = "delivery_value"
)

func (d OfferDetails) Get(path string) gjson.Result {
	if len(d) == 0 || !gjson.ValidBytes(d) {
		return gjson.Result{}
	}
	return gjson.GetBytes(d, path)
}

func (d OfferDetails) Has(path string) bool {
	r := d.Get(path)
	return r.Exists() && r.Type != gjson.Null
}

func (d OfferDetails) MarshalJSON() ([]byte, error) {
	if len(d) == 0 || !gjson.ValidBytes(d) {
		return []byte("null"), nil
	}
	return append([]byte(nil), d...), nil
}

func (d *OfferDetails) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], data...)
	return nil
}

// Scan copies a JSONB column value.
func (d *OfferDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append(OfferDetails(nil), v...)
	case string:
		*d = OfferDetails(v)
	default:
		return fmt.Errorf("catalog: cannot scan %T into OfferDetails", src)
	}
	return nil
}

func (d OfferDetails) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}
