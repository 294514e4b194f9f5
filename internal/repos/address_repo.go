package repos

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopreel/internal/apperr"
	"shopreel/internal/domain"
)

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

func (r *AddressRepo) ListByUser(userID string) ([]domain.Address, error) {
	var out []domain.Address
	err := r.db.Select(&out, `
	  SELECT id, user_id, street, city, state, zip_code, alternate_phone, is_default, created_at
	  FROM addresses
	  WHERE user_id = ?
	  ORDER BY is_default DESC, datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *AddressRepo) Get(id, userID string) (domain.Address, error) {
	var a domain.Address
	err := r.db.Get(&a, `
	  SELECT id, user_id, street, city, state, zip_code, alternate_phone, is_default, created_at
	  FROM addresses
	  WHERE id = ? AND user_id = ?
	`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, apperr.New(apperr.NotFound, "address not found")
	}
	return a, err
}

// Create inserts an address; marking it default clears the previous default
// in the same transaction.
func (r *AddressRepo) Create(a domain.Address) (string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if _, err := tx.Exec(`UPDATE addresses SET is_default = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return "", err
		}
	}
	id := uuid.NewString()
	if _, err := tx.Exec(`
	  INSERT INTO addresses(id, user_id, street, city, state, zip_code, alternate_phone, is_default, created_at)
	  VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, id, a.UserID, a.Street, a.City, a.State, a.ZipCode, a.AlternatePhone, a.IsDefault); err != nil {
		return "", err
	}
	return id, tx.Commit()
}

// Delete removes an address and, if it was the default, promotes another
// remaining address (original behavior of the address book).
func (r *AddressRepo) Delete(id, userID string) error {
	a, err := r.Get(id, userID)
	if err != nil {
		return err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM addresses WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return err
	}
	if a.IsDefault {
		_, _ = tx.Exec(`
		  UPDATE addresses SET is_default = 1
		  WHERE id = (SELECT id FROM addresses WHERE user_id = ? ORDER BY datetime(created_at) ASC LIMIT 1)
		`, userID)
	}
	return tx.Commit()
}
