package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
	"shopreel/internal/repos"
)

var errFake = errors.New("gateway down")

func orderDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// the in-memory DB lives on a single connection
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	fixtures := `
	INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u-buyer','buyer@test','Bina','x','BUYER'),
	  ('u-seller','seller@test','Sam','x','SELLER');
	INSERT INTO products(id,seller_id,name,description,price,stock) VALUES
	  ('tee-classic','u-seller','Classic Tee','Plain tee',200,25),
	  ('cap-one','u-seller','Cap','One cap',100,4);
	INSERT INTO promo_codes(code,discount,discount_type,is_active) VALUES
	  ('SAVE10',10,'percentage',1);
	`
	if _, err := db.Exec(fixtures); err != nil {
		t.Fatal(err)
	}
	return db
}

func newOrderService(db *sqlx.DB, gw RefundGateway) (*OrderService, *repos.ProductRepo, *repos.NotificationRepo) {
	prods := repos.NewProductRepo(db)
	notifs := repos.NewNotificationRepo(db)
	svc := NewOrderService(
		repos.NewOrderRepo(db),
		prods,
		NewPromoService(repos.NewPromoRepo(db)),
		NewPaymentService("test-secret", gw),
		NewNotifier(notifs, nil),
	)
	return svc, prods, notifs
}

func testAddress() domain.AddressSnapshot {
	return domain.AddressSnapshot{
		Street: "12 MG Road", City: "Pune", State: "MH", ZipCode: "411001",
	}
}

func codInput(productID string, qty int, clientTotal string) PlaceOrderInput {
	return PlaceOrderInput{
		ProductID:     productID,
		Quantity:      qty,
		Address:       testAddress(),
		PaymentMethod: domain.PayCOD,
		ClientTotal:   dec(clientTotal),
	}
}

func TestPlaceOrder_CODEndToEnd(t *testing.T) {
	db := orderDB(t)
	svc, prods, notifs := newOrderService(db, &fakeGateway{})

	// price=200 qty=3: subtotal=600, free shipping, tax=30, total=630
	o, err := svc.Place("u-buyer", codInput("tee-classic", 3, "630"))
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("want pending, got %s", o.Status)
	}
	if !o.Subtotal.Equal(dec("600")) || !o.Shipping.IsZero() || !o.Tax.Equal(dec("30")) || !o.Total.Equal(dec("630")) {
		t.Fatalf("bad breakdown: %+v", o)
	}
	if o.SellerID != "u-seller" {
		t.Fatalf("seller not derived from product: %s", o.SellerID)
	}

	stock, err := prods.Stock("tee-classic")
	if err != nil {
		t.Fatal(err)
	}
	if stock != 22 {
		t.Fatalf("want stock 22, got %d", stock)
	}

	// both sides notified
	sellerN, _ := notifs.ListByUser("u-seller", 10)
	buyerN, _ := notifs.ListByUser("u-buyer", 10)
	if len(sellerN) != 1 || len(buyerN) != 1 {
		t.Fatalf("want 1 notification each, got seller=%d buyer=%d", len(sellerN), len(buyerN))
	}
}

func TestPlaceOrder_PromoAndMismatch(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	// SAVE10 on 600: discount 60, total 570
	in := codInput("tee-classic", 3, "570")
	in.PromoCode = "SAVE10"
	o, err := svc.Place("u-buyer", in)
	if err != nil {
		t.Fatal(err)
	}
	if !o.Discount.Equal(dec("60")) || !o.Total.Equal(dec("570")) {
		t.Fatalf("bad promo pricing: discount=%s total=%s", o.Discount, o.Total)
	}

	// stale client total fails closed: no stock change
	before, _ := prods.Stock("tee-classic")
	in.ClientTotal = dec("600")
	_, err = svc.Place("u-buyer", in)
	if apperr.KindOf(err) != apperr.TotalMismatch {
		t.Fatalf("want TotalMismatch, got %v", err)
	}
	after, _ := prods.Stock("tee-classic")
	if before != after {
		t.Fatalf("stock mutated on rejected order: %d -> %d", before, after)
	}
}

func TestPlaceOrder_ValidationNoSideEffects(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	in := codInput("tee-classic", 11, "630") // over the 1..10 bound
	in.Address.City = ""
	in.PaymentMethod = "bitcoin"
	_, err := svc.Place("u-buyer", in)
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("want Validation, got %v", err)
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatal("expected *apperr.Error")
	}
	for _, field := range []string{"quantity", "city", "paymentMethod"} {
		if _, ok := e.Fields[field]; !ok {
			t.Errorf("missing per-field message for %q: %v", field, e.Fields)
		}
	}

	stock, _ := prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("stock mutated on validation failure: %d", stock)
	}
}

func TestPlaceOrder_GatewaySignature(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	in := codInput("tee-classic", 3, "630")
	in.PaymentMethod = domain.PayUPI
	in.GatewayOrderID = "order_9"
	in.GatewayPaymentID = "pay_9"
	in.GatewaySignature = "not-a-valid-signature"

	_, err := svc.Place("u-buyer", in)
	if apperr.KindOf(err) != apperr.InvalidPaymentSignature {
		t.Fatalf("want InvalidPaymentSignature, got %v", err)
	}
	stock, _ := prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("order persisted for unverifiable payment: stock %d", stock)
	}

	in.GatewaySignature = sign("order_9", "pay_9", "test-secret")
	o, err := svc.Place("u-buyer", in)
	if err != nil {
		t.Fatal(err)
	}
	if o.GatewayOrderID != "order_9" || o.GatewayPaymentID != "pay_9" {
		t.Fatalf("gateway ids not persisted: %+v", o)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	db := orderDB(t)
	svc, _, _ := newOrderService(db, &fakeGateway{})

	_, err := svc.Place("u-buyer", codInput("cap-one", 5, "575")) // stock is 4
	if apperr.KindOf(err) != apperr.InsufficientStock {
		t.Fatalf("want InsufficientStock, got %v", err)
	}
}

func TestPlaceOrder_ConcurrentStockNeverNegative(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	// 10 concurrent single-unit placements against stock 4:
	// exactly 4 succeed, the rest fail InsufficientStock.
	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// price=100 qty=1: subtotal=100, shipping=50, tax=5, total=155
			_, err := svc.Place("u-buyer", codInput("cap-one", 1, "155"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, outOfStock := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperr.KindOf(err) == apperr.InsufficientStock:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 4 || outOfStock != 6 {
		t.Fatalf("want 4 successes / 6 stock failures, got %d / %d", succeeded, outOfStock)
	}
	stock, _ := prods.Stock("cap-one")
	if stock != 0 {
		t.Fatalf("final stock must be 0, got %d", stock)
	}
}

func TestCancel_RestocksExactlyOnce(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	o, err := svc.Place("u-buyer", codInput("tee-classic", 3, "630"))
	if err != nil {
		t.Fatal(err)
	}

	cancelled, err := svc.Cancel("u-buyer", o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("want cancelled, got %s", cancelled.Status)
	}
	stock, _ := prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("stock not restored: %d", stock)
	}

	// second cancel fails and must not restock again
	_, err = svc.Cancel("u-buyer", o.ID)
	if apperr.KindOf(err) != apperr.CannotCancel {
		t.Fatalf("want CannotCancel, got %v", err)
	}
	stock, _ = prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("stock restored twice: %d", stock)
	}
}

func TestCancel_OwnershipAndRefund(t *testing.T) {
	db := orderDB(t)
	gw := &fakeGateway{handle: RefundHandle{RefundID: "rfnd_7", Status: "processed"}}
	svc, _, _ := newOrderService(db, gw)

	in := codInput("tee-classic", 3, "630")
	in.PaymentMethod = domain.PayCreditCard
	in.GatewayOrderID = "order_7"
	in.GatewayPaymentID = "pay_7"
	in.GatewaySignature = sign("order_7", "pay_7", "test-secret")
	o, err := svc.Place("u-buyer", in)
	if err != nil {
		t.Fatal(err)
	}

	// other buyers cannot cancel (or learn the order exists)
	if _, err := svc.Cancel("u-other", o.ID); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("want NotFound for foreign buyer, got %v", err)
	}

	cancelled, err := svc.Cancel("u-buyer", o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gw.gotPaymentID != "pay_7" || gw.gotAmount != 63000 {
		t.Fatalf("refund not initiated correctly: %s %d", gw.gotPaymentID, gw.gotAmount)
	}
	if cancelled.RefundID != "rfnd_7" || cancelled.RefundStatus != "processed" {
		t.Fatalf("refund not recorded: %+v", cancelled)
	}
}

func TestCancel_RefundFailureStillCancels(t *testing.T) {
	db := orderDB(t)
	gw := &fakeGateway{err: errFake}
	svc, prods, _ := newOrderService(db, gw)

	in := codInput("tee-classic", 3, "630")
	in.PaymentMethod = domain.PayWallet
	in.GatewayOrderID = "order_8"
	in.GatewayPaymentID = "pay_8"
	in.GatewaySignature = sign("order_8", "pay_8", "test-secret")
	o, err := svc.Place("u-buyer", in)
	if err != nil {
		t.Fatal(err)
	}

	cancelled, err := svc.Cancel("u-buyer", o.ID)
	if err != nil {
		t.Fatal(err)
	}
	// refund failure is fail-open: cancellation and restock stand
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("want cancelled despite refund failure, got %s", cancelled.Status)
	}
	if cancelled.RefundStatus != "failed" {
		t.Fatalf("want refund_status failed, got %q", cancelled.RefundStatus)
	}
	stock, _ := prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("stock not restored: %d", stock)
	}
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	db := orderDB(t)
	svc, _, notifs := newOrderService(db, &fakeGateway{})

	o, err := svc.Place("u-buyer", codInput("tee-classic", 3, "630"))
	if err != nil {
		t.Fatal(err)
	}

	// wrong seller cannot touch the order
	if _, err := svc.UpdateStatus("u-other", o.ID, domain.StatusProcessing); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("want NotFound for foreign seller, got %v", err)
	}

	// pending cannot skip to shipped
	if _, err := svc.UpdateStatus("u-seller", o.ID, domain.StatusShipped); apperr.KindOf(err) != apperr.InvalidTransition {
		t.Fatalf("want InvalidTransition, got %v", err)
	}

	for _, next := range []domain.Status{domain.StatusProcessing, domain.StatusShipped, domain.StatusDelivered} {
		if _, err := svc.UpdateStatus("u-seller", o.ID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	// delivered is terminal
	if _, err := svc.UpdateStatus("u-seller", o.ID, domain.StatusCancelled); apperr.KindOf(err) != apperr.InvalidTransition {
		t.Fatalf("want InvalidTransition out of delivered, got %v", err)
	}

	// buyer was notified for each successful transition (plus placement)
	buyerN, _ := notifs.ListByUser("u-buyer", 20)
	if len(buyerN) != 4 {
		t.Fatalf("want 4 buyer notifications, got %d", len(buyerN))
	}
}

func TestCancel_AfterShipFails(t *testing.T) {
	db := orderDB(t)
	svc, _, _ := newOrderService(db, &fakeGateway{})

	o, err := svc.Place("u-buyer", codInput("tee-classic", 3, "630"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus("u-seller", o.ID, domain.StatusProcessing); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus("u-seller", o.ID, domain.StatusShipped); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Cancel("u-buyer", o.ID); apperr.KindOf(err) != apperr.CannotCancel {
		t.Fatalf("want CannotCancel after ship, got %v", err)
	}
}

func TestUpdateStatus_SellerCancelRestocks(t *testing.T) {
	db := orderDB(t)
	svc, prods, _ := newOrderService(db, &fakeGateway{})

	o, err := svc.Place("u-buyer", codInput("tee-classic", 3, "630"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus("u-seller", o.ID, domain.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	stock, _ := prods.Stock("tee-classic")
	if stock != 25 {
		t.Fatalf("seller cancellation must restore stock: %d", stock)
	}
}
