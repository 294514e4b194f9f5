package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// PromoPolicy is a resolved promo code row. Codes are stored uppercase;
// NormalizeCode must be applied before any lookup.
type PromoPolicy struct {
	Code          string              `db:"code"`
	Discount      decimal.Decimal     `db:"discount"`
	DiscountType  DiscountType        `db:"discount_type"`
	MaxDiscount   decimal.NullDecimal `db:"max_discount"`
	MinOrderValue decimal.NullDecimal `db:"min_order_value"`
	StartsAt      *time.Time          `db:"starts_at"`
	ExpiresAt     *time.Time          `db:"expires_at"`
	ProductsCSV   string              `db:"products_csv"`
	IsActive      bool                `db:"is_active"`
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AppliesTo reports product eligibility. An empty restriction set means the
// code is valid for every product.
func (p PromoPolicy) AppliesTo(productID string) bool {
	if strings.TrimSpace(p.ProductsCSV) == "" {
		return true
	}
	for _, id := range strings.Split(p.ProductsCSV, ",") {
		if strings.TrimSpace(id) == productID {
			return true
		}
	}
	return false
}
