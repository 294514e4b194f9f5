package services

import (
	"time"

	"github.com/shopspring/decimal"

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
	"shopreel/internal/repos"
)

type PromoService struct {
	Promos *repos.PromoRepo
}

func NewPromoService(promos *repos.PromoRepo) *PromoService {
	return &PromoService{Promos: promos}
}

// Resolve turns a code into a usable policy or a specific rejection reason.
// productID scopes eligibility checks; subtotal enforces the min-order
// floor. Callers pass "now" so the window checks stay testable.
func (s *PromoService) Resolve(code, productID string, subtotal decimal.Decimal, now time.Time) (*domain.PromoPolicy, error) {
	p, err := s.Promos.ByCode(code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.New(apperr.InvalidPromoCode, "promo code not found")
	}
	if !p.IsActive {
		return nil, apperr.New(apperr.InvalidPromoCode, "promo code is inactive")
	}
	if p.StartsAt != nil && p.StartsAt.After(now) {
		return nil, apperr.New(apperr.InvalidPromoCode, "promo code is not yet valid")
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return nil, apperr.New(apperr.InvalidPromoCode, "promo code has expired")
	}
	if productID != "" && !p.AppliesTo(productID) {
		return nil, apperr.New(apperr.InvalidPromoCode, "promo code is not applicable to this product")
	}
	if p.MinOrderValue.Valid && subtotal.LessThan(p.MinOrderValue.Decimal) {
		return nil, apperr.New(apperr.InvalidPromoCode, "order value below promo code minimum")
	}
	return p, nil
}

// ComputeDiscount applies the policy to a subtotal. A nil policy means no
// code was supplied: discount zero.
func ComputeDiscount(p *domain.PromoPolicy, subtotal decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	switch p.DiscountType {
	case domain.DiscountFixed:
		// Never discount past the subtotal; totals must not go negative.
		if p.Discount.GreaterThan(subtotal) {
			return subtotal
		}
		return p.Discount
	default: // percentage
		d := subtotal.Mul(p.Discount).Div(decimal.NewFromInt(100))
		if p.MaxDiscount.Valid && d.GreaterThan(p.MaxDiscount.Decimal) {
			d = p.MaxDiscount.Decimal
		}
		return d
	}
}
