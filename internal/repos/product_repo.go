package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, seller_id, name, COALESCE(description,'') AS description,
	         price, stock, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.New(apperr.NotFound, "product not found")
	}
	return p, err
}

// DecrementStock subtracts qty in a single conditional UPDATE so two
// concurrent placements can never both pass a read-then-write check.
// Zero rows affected means insufficient stock.
func (r *ProductRepo) DecrementStock(id string, qty int) error {
	return decrementStock(r.db, id, qty)
}

// DecrementStockTx is the same conditional UPDATE inside the order
// placement transaction, so stock mutation and order insert commit together.
func (r *ProductRepo) DecrementStockTx(tx *sqlx.Tx, id string, qty int) error {
	return decrementStock(tx, id, qty)
}

func decrementStock(e sqlx.Execer, id string, qty int) error {
	res, err := e.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.New(apperr.InsufficientStock, "insufficient stock for %s", id)
	}
	return nil
}

// RestoreStock adds qty back. Not idempotent: the order workflow invokes it
// at most once per cancellation.
func (r *ProductRepo) RestoreStock(id string, qty int) error {
	_, err := r.db.Exec(`
		UPDATE products
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	return err
}

func (r *ProductRepo) Stock(id string) (int, error) {
	var stock int
	err := r.db.Get(&stock, `SELECT stock FROM products WHERE id = ?`, id)
	return stock, err
}
