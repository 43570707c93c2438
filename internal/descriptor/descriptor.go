// Package descriptor decodes the variant description mini-language:
//
//	qty:<int>[|options:<csv>][|ingredients:<csv>][|hidden_supplements:<csv>][|supplements:<csv of name[:price]>]
//
// Segments may come in any order and unknown segments are ignored. Decoding never fails;
// malformed fields fall back to their defaults (qty 1, empty lists, price 0). A qty above
// MaxQuantity counts as malformed.
package descriptor

import (
	"math"
	"strconv"
	"strings"
)

const (
	keyQty               = "qty"
	keyOptions           = "options"
	keyIngredients       = "ingredients"
	keyHiddenSupplements = "hidden_supplements"
	keySupplements       = "supplements"

	segmentSep = "|"
	keySep     = ":"
	listSep    = ","
)

// MaxQuantity is the largest slot count a variant may declare.
const MaxQuantity = 99

// SupplementPrice is a named supplement with its unit price.
type SupplementPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Config is the structured form of a variant description.
type Config struct {
	Quantity          int               `json:"qty"`
	Options           []string          `json:"options"`
	Ingredients       []string          `json:"ingredients"`
	HiddenSupplements []string          `json:"hidden_supplements"`
	Supplements       []SupplementPrice `json:"supplements"`
}

func defaultConfig() Config {
	return Config{
		Quantity:          1,
		Options:           []string{},
		Ingredients:       []string{},
		HiddenSupplements: []string{},
		Supplements:       []SupplementPrice{},
	}
}

// Parse decodes a description. An empty string yields the defaults.
func Parse(description string) Config {
	cfg := defaultConfig()
	if strings.TrimSpace(description) == "" {
		return cfg
	}

	for _, segment := range strings.Split(description, segmentSep) {
		key, value, ok := strings.Cut(segment, keySep)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case keyQty:
			cfg.Quantity = parseQuantity(value)
		case keyOptions:
			cfg.Options = parseList(value)
		case keyIngredients:
			cfg.Ingredients = parseList(value)
		case keyHiddenSupplements:
			cfg.HiddenSupplements = parseList(value)
		case keySupplements:
			cfg.Supplements = parseSupplements(value)
		}
	}
	return cfg
}

func parseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 || qty > MaxQuantity {
		return 1
	}
	return qty
}

func parseList(raw string) []string {
	out := []string{}
	for _, entry := range strings.Split(raw, listSep) {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func parseSupplements(raw string) []SupplementPrice {
	out := []SupplementPrice{}
	for _, entry := range parseList(raw) {
		name, price := entry, 0.0
		// the price is after the last colon so names may carry one
		if idx := strings.LastIndex(entry, keySep); idx >= 0 {
			name = strings.TrimSpace(entry[:idx])
			price = ParsePrice(entry[idx+1:])
		}
		if name == "" {
			continue
		}
		out = append(out, SupplementPrice{Name: name, Price: price})
	}
	return out
}

// ParsePrice parses a non-negative finite price, returning 0 for anything else.
func ParsePrice(raw string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

// String encodes the config back into the mini-language with a canonical segment order.
func (c Config) String() string {
	qty := c.Quantity
	if qty < 1 {
		qty = 1
	}
	segments := []string{keyQty + keySep + strconv.Itoa(qty)}
	if len(c.Options) > 0 {
		segments = append(segments, keyOptions+keySep+strings.Join(c.Options, listSep))
	}
	if len(c.Ingredients) > 0 {
		segments = append(segments, keyIngredients+keySep+strings.Join(c.Ingredients, listSep))
	}
	if len(c.HiddenSupplements) > 0 {
		segments = append(segments, keyHiddenSupplements+keySep+strings.Join(c.HiddenSupplements, listSep))
	}
	if len(c.Supplements) > 0 {
		entries := make([]string, 0, len(c.Supplements))
		for _, s := range c.Supplements {
			entries = append(entries, s.Name+keySep+strconv.FormatFloat(s.Price, 'f', -1, 64))
		}
		segments = append(segments, keySupplements+keySep+strings.Join(entries, listSep))
	}
	return strings.Join(segments, segmentSep)
}

func (c Config) HasOptions() bool {
	return len(c.Options) > 0
}

func (c Config) IsHidden(name string) bool {
	return containsFold(c.HiddenSupplements, name)
}

// SupplementPrice looks up a supplement declared by the description.
func (c Config) SupplementPrice(name string) (float64, bool) {
	for _, s := range c.Supplements {
		if strings.EqualFold(s.Name, name) {
			return s.Price, true
		}
	}
	return 0, false
}

// VisibleSupplements returns the declared supplements that are not hidden.
func (c Config) VisibleSupplements() []SupplementPrice {
	out := make([]SupplementPrice, 0, len(c.Supplements))
	for _, s := range c.Supplements {
		if !c.IsHidden(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(list []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, entry := range list {
		if strings.EqualFold(entry, name) {
			return true
		}
	}
	return false
}
