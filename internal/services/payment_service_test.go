package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopreel/internal/apperr"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	const secret = "test-secret"
	orderID, paymentID := "order_QULchgJmT4Eu5C", "pay_abc123"
	sig := sign(orderID, paymentID, secret)

	if !VerifySignature(orderID, paymentID, sig, secret) {
		t.Fatal("correct signature must verify")
	}

	// any single-character mutation fails verification
	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	if VerifySignature(orderID, paymentID, string(mutated), secret) {
		t.Fatal("mutated signature must not verify")
	}
	if VerifySignature("order_QULchgJmT4Eu5D", paymentID, sig, secret) {
		t.Fatal("mutated order id must not verify")
	}
	if VerifySignature(orderID, "pay_abc124", sig, secret) {
		t.Fatal("mutated payment id must not verify")
	}
	if VerifySignature(orderID, paymentID, sig, "other-secret") {
		t.Fatal("wrong secret must not verify")
	}
}

type fakeGateway struct {
	gotPaymentID string
	gotAmount    int64
	handle       RefundHandle
	err          error
}

func (g *fakeGateway) InitiateRefund(paymentID string, amountMinorUnits int64) (RefundHandle, error) {
	g.gotPaymentID = paymentID
	g.gotAmount = amountMinorUnits
	return g.handle, g.err
}

func TestPaymentService_RefundMinorUnits(t *testing.T) {
	gw := &fakeGateway{handle: RefundHandle{RefundID: "rfnd_1", Status: "processed"}}
	svc := NewPaymentService("s", gw)

	h, err := svc.Refund("pay_1", dec("186.49"))
	if err != nil {
		t.Fatal(err)
	}
	if gw.gotAmount != 18649 {
		t.Fatalf("want 18649 minor units, got %d", gw.gotAmount)
	}
	if h.RefundID != "rfnd_1" || h.Status != "processed" {
		t.Fatalf("bad handle: %+v", h)
	}
}

func TestPaymentService_RefundFailureKind(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway down")}
	svc := NewPaymentService("s", gw)

	_, err := svc.Refund("pay_1", dec("100"))
	if apperr.KindOf(err) != apperr.RefundFailed {
		t.Fatalf("want RefundFailed, got %v", apperr.KindOf(err))
	}
}

func TestHTTPGateway_Refund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_9/refund" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"rfnd_9","status":"processed"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "key")
	h, err := gw.InitiateRefund("pay_9", 10000)
	if err != nil {
		t.Fatal(err)
	}
	if h.RefundID != "rfnd_9" || h.Status != "processed" {
		t.Fatalf("bad handle: %+v", h)
	}
}
