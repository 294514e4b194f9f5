package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopreel/internal/domain"
)

type NotificationRepo struct{ db *sqlx.DB }

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(userID, title, body string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
	  INSERT INTO notifications(id, user_id, title, body, is_read, created_at)
	  VALUES(?,?,?,?,0,CURRENT_TIMESTAMP)
	`, id, userID, title, body)
	return id, err
}

// ListByUser returns unread first, newest first within each group.
func (r *NotificationRepo) ListByUser(userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Notification
	err := r.db.Select(&out, `
	  SELECT id, user_id, title, body, is_read, created_at
	  FROM notifications
	  WHERE user_id = ?
	  ORDER BY is_read ASC, datetime(created_at) DESC
	  LIMIT ?
	`, userID, limit)
	return out, err
}

func (r *NotificationRepo) UnreadCount(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID)
	return n, err
}

// MarkRead flips one notification owned by userID; returns false when the
// row doesn't exist or belongs to someone else.
func (r *NotificationRepo) MarkRead(id, userID string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *NotificationRepo) MarkAllRead(userID string) error {
	_, err := r.db.Exec(`UPDATE notifications SET is_read = 1 WHERE user_id = ?`, userID)
	return err
}

func (r *NotificationRepo) Delete(id, userID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
