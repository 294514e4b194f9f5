package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopreel/internal/domain"
)

type PromoRepo struct{ db *sqlx.DB }

func NewPromoRepo(db *sqlx.DB) *PromoRepo { return &PromoRepo{db: db} }

type promoRow struct {
	Code          string              `db:"code"`
	Discount      decimal.Decimal     `db:"discount"`
	DiscountType  string              `db:"discount_type"`
	MaxDiscount   decimal.NullDecimal `db:"max_discount"`
	MinOrderValue decimal.NullDecimal `db:"min_order_value"`
	StartsAt      sql.NullString      `db:"starts_at"`
	ExpiresAt     sql.NullString      `db:"expires_at"`
	ProductsCSV   string              `db:"products_csv"`
	IsActive      bool                `db:"is_active"`
}

// ByCode fetches a promo row by its normalized code. A missing row maps to
// (nil, nil): the evaluator owns the not-found reason.
func (r *PromoRepo) ByCode(code string) (*domain.PromoPolicy, error) {
	var row promoRow
	err := r.db.Get(&row, `
	  SELECT code, discount, discount_type, max_discount, min_order_value,
	         COALESCE(starts_at,'') AS starts_at, COALESCE(expires_at,'') AS expires_at,
	         products_csv, is_active
	  FROM promo_codes
	  WHERE code = ?
	`, domain.NormalizeCode(code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p := &domain.PromoPolicy{
		Code:          row.Code,
		Discount:      row.Discount,
		DiscountType:  domain.DiscountType(row.DiscountType),
		MaxDiscount:   row.MaxDiscount,
		MinOrderValue: row.MinOrderValue,
		ProductsCSV:   row.ProductsCSV,
		IsActive:      row.IsActive,
	}
	p.StartsAt = parseTimeCol(row.StartsAt.String)
	p.ExpiresAt = parseTimeCol(row.ExpiresAt.String)
	return p, nil
}

// parseTimeCol accepts the formats sqlite produces (CURRENT_TIMESTAMP and
// RFC3339 inserts). Empty or unparseable values mean "no bound".
func parseTimeCol(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
