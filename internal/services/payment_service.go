package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"shopreel/internal/apperr"
)

// VerifySignature checks the gateway's HMAC proof binding a gateway order
// id to a payment id: HMAC-SHA256(secret, orderID+"|"+paymentID), hex.
// Comparison is constant time.
func VerifySignature(gatewayOrderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(signature))
}

type RefundHandle struct {
	RefundID string `json:"id"`
	Status   string `json:"status"`
}

// RefundGateway is the payment provider's refund surface. Implementations
// must not be shared mutable singletons; they are injected into the order
// workflow.
type RefundGateway interface {
	InitiateRefund(paymentID string, amountMinorUnits int64) (RefundHandle, error)
}

// PaymentService bundles the signature secret with the refund gateway.
type PaymentService struct {
	Secret  string
	Gateway RefundGateway
}

func NewPaymentService(secret string, gw RefundGateway) *PaymentService {
	return &PaymentService{Secret: secret, Gateway: gw}
}

func (s *PaymentService) Verify(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(gatewayOrderID, paymentID, signature, s.Secret)
}

// Refund initiates a gateway refund for a total expressed in currency
// units; the gateway wants minor units (x100, half-up).
func (s *PaymentService) Refund(paymentID string, total decimal.Decimal) (RefundHandle, error) {
	minor := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	h, err := s.Gateway.InitiateRefund(paymentID, minor)
	if err != nil {
		return RefundHandle{}, apperr.Wrap(apperr.RefundFailed, err)
	}
	return h, nil
}

// HTTPGateway talks to the real payment provider's refund endpoint.
type HTTPGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) InitiateRefund(paymentID string, amountMinorUnits int64) (RefundHandle, error) {
	body, _ := json.Marshal(map[string]any{"amount": amountMinorUnits})
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/payments/%s/refund", g.BaseURL, paymentID), bytes.NewReader(body))
	if err != nil {
		return RefundHandle{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return RefundHandle{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RefundHandle{}, fmt.Errorf("gateway refund failed: status %d", resp.StatusCode)
	}
	var h RefundHandle
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return RefundHandle{}, err
	}
	return h, nil
}
