package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, buyer_id, seller_id, product_id, quantity, size, color,
  addr_street, addr_city, addr_state, addr_zip, addr_alt_phone,
  payment_method, promo_code, discount, subtotal, shipping, tax, total,
  status, gw_order_id, gw_payment_id, gw_signature, refund_id, refund_status,
  created_at, updated_at`

// WithTx runs fn inside a transaction, rolling back on error. The order
// workflow uses it to commit stock decrement and order insert together.
func (r *OrderRepo) WithTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) InsertTx(tx *sqlx.Tx, o domain.Order) error {
	_, err := tx.Exec(`
	  INSERT INTO orders
	    (id, buyer_id, seller_id, product_id, quantity, size, color,
	     addr_street, addr_city, addr_state, addr_zip, addr_alt_phone,
	     payment_method, promo_code, discount, subtotal, shipping, tax, total,
	     status, gw_order_id, gw_payment_id, gw_signature,
	     created_at, updated_at)
	  VALUES (?,?,?,?,?,?,?, ?,?,?,?,?, ?,?,?,?,?,?,?, ?,?,?,?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, o.ID, o.BuyerID, o.SellerID, o.ProductID, o.Quantity, o.Size, o.Color,
		o.Street, o.City, o.State, o.ZipCode, o.AlternatePhone,
		o.PaymentMethod, o.PromoCode,
		o.Discount.String(), o.Subtotal.String(), o.Shipping.String(), o.Tax.String(), o.Total.String(),
		o.Status, o.GatewayOrderID, o.GatewayPaymentID, o.GatewaySignature)
	return err
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, apperr.New(apperr.NotFound, "order not found")
	}
	return o, err
}

func (r *OrderRepo) ListByBuyer(buyerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  WHERE buyer_id = ?
	  ORDER BY datetime(created_at) DESC
	`, buyerID)
	return out, err
}

// ListBySeller pages a seller's orders, optionally filtered by status.
func (r *OrderRepo) ListBySeller(sellerID string, status domain.Status, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT ` + orderCols + ` FROM orders WHERE seller_id = ?`
	args := []any{sellerID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY datetime(created_at) DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Order
	err := r.db.Select(&out, q, args...)
	return out, err
}

// TransitionStatus flips status only if the row is still in the expected
// state, so concurrent transitions can't both win. Zero rows affected
// means the order moved underneath the caller.
func (r *OrderRepo) TransitionStatus(id string, from, to domain.Status) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = ?
	`, to, id, from)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *OrderRepo) SetRefund(id, refundID, refundStatus string) error {
	_, err := r.db.Exec(`
	  UPDATE orders SET refund_id = ?, refund_status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, refundID, refundStatus, id)
	return err
}
