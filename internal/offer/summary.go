package offer

import (
	"fmt"
	"strconv"
)

// Summary renders the display badges for an offer. It is presentation only.
func (o Offer) Summary() []string {
	if !o.Active {
		return nil
	}

	var out []string
	if o.DiscountPercent != nil && *o.DiscountPercent > 0 {
		out = append(out, fmt.Sprintf("%d%% REMISE", *o.DiscountPercent))
	}
	if !o.FreeDrinks.IsEmpty() {
		if o.FreeDrinks.Quantity == 1 {
			out = append(out, "1 BOISSON GRATUITE")
		} else {
			out = append(out, fmt.Sprintf("%d BOISSONS GRATUITES", o.FreeDrinks.Quantity))
		}
	}
	if o.Delivery != nil {
		switch o.Delivery.Type {
		case DeliveryFree:
			out = append(out, "LIVRAISON GRATUITE")
		case DeliveryPercentage:
			out = append(out, "LIVRAISON -"+formatNumber(o.Delivery.Value)+"%")
		case DeliveryFixed:
			out = append(out, "LIVRAISON -"+formatNumber(o.Delivery.Value))
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
