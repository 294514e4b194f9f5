package domain

import "github.com/shopspring/decimal"

// Status is the order lifecycle state. Transitions are validated in one
// place (CanTransitionTo); handlers and services never compare raw strings.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// transitions is the full state machine. shipped, delivered and cancelled
// are terminal for cancellation purposes; shipped can still move forward.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether a buyer may still cancel.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

type PaymentMethod string

const (
	PayCreditCard PaymentMethod = "credit_card"
	PayUPI        PaymentMethod = "upi"
	PayNetBanking PaymentMethod = "net_banking"
	PayWallet     PaymentMethod = "wallet"
	PayCOD        PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCreditCard, PayUPI, PayNetBanking, PayWallet, PayCOD:
		return true
	}
	return false
}

// RequiresGateway reports whether placement must carry a verified gateway
// signature. Cash on delivery is the only method that skips the gateway.
func (m PaymentMethod) RequiresGateway() bool { return m != PayCOD }

// AddressSnapshot is copied into the order row at placement time so later
// address-book edits never alter order history.
type AddressSnapshot struct {
	Street         string `db:"addr_street" json:"address"`
	City           string `db:"addr_city" json:"city"`
	State          string `db:"addr_state" json:"state"`
	ZipCode        string `db:"addr_zip" json:"zipCode"`
	AlternatePhone string `db:"addr_alt_phone" json:"alternatePhone,omitempty"`
}

type Order struct {
	ID       string `db:"id" json:"id"`
	BuyerID  string `db:"buyer_id" json:"buyerId"`
	SellerID string `db:"seller_id" json:"sellerId"`

	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Size      string `db:"size" json:"size,omitempty"`
	Color     string `db:"color" json:"color,omitempty"`

	AddressSnapshot `json:"address"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PromoCode     string        `db:"promo_code" json:"promoCode,omitempty"`

	Discount decimal.Decimal `db:"discount" json:"discount"`
	Subtotal decimal.Decimal `db:"subtotal" json:"subtotal"`
	Shipping decimal.Decimal `db:"shipping" json:"shipping"`
	Tax      decimal.Decimal `db:"tax" json:"tax"`
	Total    decimal.Decimal `db:"total" json:"total"`

	Status Status `db:"status" json:"status"`

	GatewayOrderID   string `db:"gw_order_id" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `db:"gw_payment_id" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string `db:"gw_signature" json:"-"`

	RefundID     string `db:"refund_id" json:"refundId,omitempty"`
	RefundStatus string `db:"refund_status" json:"refundStatus,omitempty"`

	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}
