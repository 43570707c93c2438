package descriptor

import (
	"strings"

	"github.com/tidwall/gjson"

	"menupricing/internal/catalog"
)

// Overrides are the pack-level ingredients and supplements declared in offer details.
type Overrides struct {
	Ingredients       []string          `json:"global_ingredients"`
	Supplements       []SupplementPrice `json:"global_supplements"`
	HiddenSupplements []string          `json:"hidden_global_supplements"`
}

// ResolveOverrides walks the chain in order and, per key, keeps the value of the first
// source that carries it. Callers pass the selected pricing option's details before the item's.
func ResolveOverrides(chain ...catalog.OfferDetails) Overrides {
	o := Overrides{
		Ingredients:       []string{},
		Supplements:       []SupplementPrice{},
		HiddenSupplements: []string{},
	}
	if src, ok := firstWith(chain, catalog.KeyGlobalIngredients); ok {
		o.Ingredients = stringList(src.Get(catalog.KeyGlobalIngredients))
	}
	if src, ok := firstWith(chain, catalog.KeyGlobalSupplements); ok {
		o.Supplements = supplementList(src.Get(catalog.KeyGlobalSupplements))
	}
	if src, ok := firstWith(chain, catalog.KeyHiddenGlobalSupplements); ok {
		o.HiddenSupplements = stringList(src.Get(catalog.KeyHiddenGlobalSupplements))
	}
	return o
}

func firstWith(chain []catalog.OfferDetails, key string) (catalog.OfferDetails, bool) {
	for _, src := range chain {
		if src.Has(key) {
			return src, true
		}
	}
	return nil, false
}

func stringList(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	r.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

// supplementList accepts the map form {"Cheese": 50} and the legacy array form ["Cheese"].
func supplementList(r gjson.Result) []SupplementPrice {
	out := []SupplementPrice{}
	switch {
	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			name := strings.TrimSpace(k.String())
			if name == "" {
				return true
			}
			out = append(out, SupplementPrice{Name: name, Price: ParsePrice(v.String())})
			return true
		})
	case r.IsArray():
		for _, name := range stringList(r) {
			out = append(out, SupplementPrice{Name: name})
		}
	}
	return out
}

func (o Overrides) IsHidden(name string) bool {
	return containsFold(o.HiddenSupplements, name)
}

// VisibleSupplements drops the hidden global supplements.
func (o Overrides) VisibleSupplements() []SupplementPrice {
	out := make([]SupplementPrice, 0, len(o.Supplements))
	for _, s := range o.Supplements {
		if !o.IsHidden(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

func (o Overrides) SupplementPrice(name string) (float64, bool) {
	for _, s := range o.Supplements {
		if strings.EqualFold(s.Name, name) {
			return s.Price, true
		}
	}
	return 0, false
}
