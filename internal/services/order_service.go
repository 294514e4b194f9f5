package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
	applog "shopreel/internal/log"
	"shopreel/internal/repos"
	"shopreel/internal/validate"
)

type OrderService struct {
	Orders   *repos.OrderRepo
	Products *repos.ProductRepo
	Promo    *PromoService
	Payments *PaymentService
	Notify   *Notifier
}

func NewOrderService(orders *repos.OrderRepo, products *repos.ProductRepo, promo *PromoService, payments *PaymentService, notify *Notifier) *OrderService {
	return &OrderService{Orders: orders, Products: products, Promo: promo, Payments: payments, Notify: notify}
}

type PlaceOrderInput struct {
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Size      string                 `json:"size"`
	Color     string                 `json:"color"`
	Address   domain.AddressSnapshot `json:"address"`

	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PromoCode     string               `json:"promoCode"`
	ClientTotal   decimal.Decimal      `json:"total"`

	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewaySignature string `json:"gatewaySignature"`
}

func (in PlaceOrderInput) validate() map[string]string {
	errs := map[string]string{}
	if _, ok := validate.ID(in.ProductID); !ok {
		errs["productId"] = "Product ID is required"
	}
	if !validate.Quantity(in.Quantity) {
		errs["quantity"] = fmt.Sprintf("Quantity must be between %d and %d", validate.MinQuantity, validate.MaxQuantity)
	}
	for k, v := range validate.Address(in.Address) {
		errs[k] = v
	}
	if !in.PaymentMethod.Valid() {
		errs["paymentMethod"] = "Invalid payment method"
	}
	if in.ClientTotal.LessThanOrEqual(decimal.Zero) {
		errs["total"] = "Total must be a positive number"
	}
	if in.PromoCode != "" {
		if _, ok := validate.PromoCode(in.PromoCode); !ok {
			errs["promoCode"] = "Invalid promo code format"
		}
	}
	if in.PaymentMethod.Valid() && in.PaymentMethod.RequiresGateway() {
		if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.GatewaySignature == "" {
			errs["payment"] = "Payment verification details are required"
		}
	}
	return errs
}

// Place runs the full placement workflow. Steps are strictly sequential:
// each gates the next, and nothing is persisted until the stock decrement
// and order insert commit together.
func (s *OrderService) Place(buyerID string, in PlaceOrderInput) (domain.Order, error) {
	if errs := in.validate(); len(errs) > 0 {
		return domain.Order{}, apperr.Invalid(errs)
	}

	product, err := s.Products.Get(in.ProductID)
	if err != nil {
		return domain.Order{}, err
	}
	if product.Stock < in.Quantity {
		return domain.Order{}, apperr.New(apperr.InsufficientStock, "insufficient stock for %s", product.ID)
	}

	subtotal := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))

	var policy *domain.PromoPolicy
	code := ""
	if in.PromoCode != "" {
		code, _ = validate.PromoCode(in.PromoCode)
		policy, err = s.Promo.Resolve(code, product.ID, subtotal, time.Now())
		if err != nil {
			return domain.Order{}, err
		}
	}

	discount := ComputeDiscount(policy, subtotal)
	breakdown := ComputeBreakdown(product.Price, in.Quantity, discount)
	if !Reconcile(in.ClientTotal, breakdown.Total) {
		return domain.Order{}, apperr.New(apperr.TotalMismatch,
			"total mismatch: expected %s", breakdown.Total.StringFixed(2))
	}

	// Pricing must be settled before trusting a payment for that amount.
	if in.PaymentMethod.RequiresGateway() {
		if !s.Payments.Verify(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature) {
			return domain.Order{}, apperr.New(apperr.InvalidPaymentSignature, "payment signature verification failed")
		}
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		SellerID:        product.SellerID,
		ProductID:       product.ID,
		Quantity:        in.Quantity,
		Size:            in.Size,
		Color:           in.Color,
		AddressSnapshot: in.Address,
		PaymentMethod:   in.PaymentMethod,
		PromoCode:       code,
		Discount:        breakdown.Discount,
		Subtotal:        breakdown.Subtotal,
		Shipping:        breakdown.Shipping,
		Tax:             breakdown.Tax,
		Total:           breakdown.Total,
		Status:          domain.StatusPending,
	}
	if in.PaymentMethod.RequiresGateway() {
		o.GatewayOrderID = in.GatewayOrderID
		o.GatewayPaymentID = in.GatewayPaymentID
		o.GatewaySignature = in.GatewaySignature
	}

	// Stock decrement and order insert commit atomically; a concurrent
	// depletion rolls the whole placement back.
	err = s.Orders.WithTx(func(tx *sqlx.Tx) error {
		if err := s.Products.DecrementStockTx(tx, product.ID, in.Quantity); err != nil {
			return err
		}
		return s.Orders.InsertTx(tx, o)
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.runPostCommit(
		func() {
			s.Notify.Notify(o.SellerID, "New order received",
				fmt.Sprintf("You sold %d x %s (order #%s)", o.Quantity, product.Name, o.ID))
		},
		func() {
			s.Notify.Notify(o.BuyerID, "Order placed",
				fmt.Sprintf("Your order #%s for %s has been placed", o.ID, product.Name))
		},
	)

	return s.Orders.Get(o.ID)
}

// Cancel transitions a pending/processing order to cancelled, restores
// stock exactly once, and attempts a refund for gateway payments. Refund
// and notification failures never undo the cancellation.
func (s *OrderService) Cancel(buyerID, orderID string) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.BuyerID != buyerID {
		// Hide other buyers' orders rather than revealing they exist.
		return domain.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	if !o.Status.Cancellable() {
		return domain.Order{}, apperr.New(apperr.CannotCancel, "order in status %q cannot be cancelled", o.Status)
	}

	// Conditional flip: a concurrent cancel or ship loses or wins here,
	// never both. The loser sees zero rows and fails CannotCancel.
	ok, err := s.Orders.TransitionStatus(o.ID, o.Status, domain.StatusCancelled)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, apperr.New(apperr.CannotCancel, "order can no longer be cancelled")
	}

	s.compensateCancellation(o)

	return s.Orders.Get(o.ID)
}

// compensateCancellation runs the post-cancel compensations: stock restore
// (at most once per order, guaranteed by the conditional transition that
// gates the call), notifications, refund initiation.
func (s *OrderService) compensateCancellation(o domain.Order) {
	if err := s.Products.RestoreStock(o.ProductID, o.Quantity); err != nil {
		applog.Error(nil, "order.cancel.restock.fail", err, map[string]any{"order_id": o.ID})
	}

	s.runPostCommit(
		func() {
			s.Notify.Notify(o.BuyerID, "Order cancelled",
				fmt.Sprintf("Your order #%s has been cancelled", o.ID))
		},
		func() {
			s.Notify.Notify(o.SellerID, "Order cancelled",
				fmt.Sprintf("Order #%s was cancelled", o.ID))
		},
		func() { s.refundOnCancel(o) },
	)
}

// refundOnCancel is fail-open: a gateway failure is recorded for manual
// reconciliation and the order stays cancelled.
func (s *OrderService) refundOnCancel(o domain.Order) {
	if !o.PaymentMethod.RequiresGateway() || o.GatewayPaymentID == "" {
		return
	}
	h, err := s.Payments.Refund(o.GatewayPaymentID, o.Total)
	if err != nil {
		applog.Error(nil, "order.cancel.refund.fail", err, map[string]any{
			"order_id": o.ID, "payment_id": o.GatewayPaymentID,
		})
		_ = s.Orders.SetRefund(o.ID, "", "failed")
		return
	}
	if err := s.Orders.SetRefund(o.ID, h.RefundID, h.Status); err != nil {
		applog.Error(nil, "order.cancel.refund.record.fail", err, map[string]any{"order_id": o.ID})
	}
}

// UpdateStatus is the seller-side transition. The same central table
// governs it; an illegal move fails with no mutation.
func (s *OrderService) UpdateStatus(sellerID, orderID string, next domain.Status) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, apperr.Invalid(map[string]string{"status": "Unknown status"})
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.SellerID != sellerID {
		return domain.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	if !o.Status.CanTransitionTo(next) {
		return domain.Order{}, apperr.New(apperr.InvalidTransition,
			"invalid status transition from %s to %s", o.Status, next)
	}

	ok, err := s.Orders.TransitionStatus(o.ID, o.Status, next)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, apperr.New(apperr.InvalidTransition,
			"order status changed concurrently, re-fetch and retry")
	}

	if next == domain.StatusCancelled {
		// Seller-side cancellation owes the buyer the same compensations.
		s.compensateCancellation(o)
	} else {
		s.runPostCommit(func() {
			s.Notify.Notify(o.BuyerID, "Order status updated",
				fmt.Sprintf("Your order #%s status has been updated to %s", o.ID, next))
		})
	}

	return s.Orders.Get(o.ID)
}

// runPostCommit executes best-effort hooks after the authoritative write
// has committed. Each hook is isolated: one failing (or panicking) hook
// must not prevent the next.
func (s *OrderService) runPostCommit(hooks ...func()) {
	for _, h := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					applog.Error(nil, "order.hook.panic", fmt.Errorf("%v", r), nil)
				}
			}()
			h()
		}()
	}
}
