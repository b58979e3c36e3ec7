package storefront

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// FormatINR renders an amount in rupees with no fraction digits and Indian
// digit grouping, e.g. ₹1,23,456
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + groupIndian(rounded.String())
}

// FormatPrice is FormatINR for a catalog price
func FormatPrice(price float64) string {
	return FormatINR(decimal.NewFromFloat(price))
}

// groupIndian groups the last three digits, then every two digits before them
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

func priceLabel(p models.Product) string {
	label := FormatPrice(p.Price)
	if d := p.DiscountPercent(); d > 0 {
		label += fmt.Sprintf(" (was %s, %d%% off)", FormatPrice(*p.OriginalPrice), d)
	}
	return label
}

func ratingLabel(p models.Product) string {
	return fmt.Sprintf("%.1f (%d reviews)", p.RatingOrDefault(), p.ReviewsOrDefault())
}

func stockLabel(p models.Product) string {
	if !p.InStock() {
		return "Out of stock"
	}
	return fmt.Sprintf("In stock (%d available)", p.Stock)
}
