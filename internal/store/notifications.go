package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Notification is a scheduled payload as persisted.
type Notification struct {
	ID          string
	FactletID   string
	Title       string
	Body        string
	FireAt      time.Time
	DeliveredAt *time.Time
	OpenedAt    *time.Time
}

const notificationCols = "id, factlet_id, title, body, fire_at, delivered_at, opened_at"

// ReplacePending clears every undelivered notification and inserts ns in one
// transaction, so a reader never sees two batches mixed.
func (s *Store) ReplacePending(ns []Notification) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM notifications WHERE delivered_at IS NULL"); err != nil {
		return fmt.Errorf("clearing pending: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notifications (id, factlet_id, title, body, fire_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range ns {
		if _, err := stmt.Exec(n.ID, n.FactletID, n.Title, n.Body, n.FireAt.Unix()); err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

// ClearPending removes every undelivered notification.
func (s *Store) ClearPending() error {
	if _, err := s.writeDB.Exec("DELETE FROM notifications WHERE delivered_at IS NULL"); err != nil {
		return fmt.Errorf("clearing pending: %w", err)
	}
	return nil
}

// Pending returns undelivered notifications, earliest first.
func (s *Store) Pending() ([]Notification, error) {
	return s.queryNotifications("SELECT " + notificationCols + " FROM notifications WHERE delivered_at IS NULL ORDER BY fire_at, id")
}

// DuePending returns undelivered notifications whose fire time has passed.
func (s *Store) DuePending(now time.Time) ([]Notification, error) {
	return s.queryNotifications("SELECT "+notificationCols+" FROM notifications WHERE delivered_at IS NULL AND fire_at <= ? ORDER BY fire_at, id", now.Unix())
}

func (s *Store) Notification(id string) (Notification, bool, error) {
	ns, err := s.queryNotifications("SELECT "+notificationCols+" FROM notifications WHERE id = ?", id)
	if err != nil || len(ns) == 0 {
		return Notification{}, false, err
	}
	return ns[0], true, nil
}

// NotificationByPrefix resolves an abbreviated id. It fails unless exactly
// one notification matches.
func (s *Store) NotificationByPrefix(prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("empty notification id")
	}
	ns, err := s.queryNotifications("SELECT "+notificationCols+" FROM notifications WHERE id LIKE ? ORDER BY fire_at LIMIT 2", prefix+"%")
	if err != nil {
		return "", err
	}
	switch len(ns) {
	case 0:
		return "", fmt.Errorf("no notification matches %q", prefix)
	case 1:
		return ns[0].ID, nil
	default:
		return "", fmt.Errorf("notification id %q is ambiguous", prefix)
	}
}

func (s *Store) MarkDelivered(id string, at time.Time) error {
	if _, err := s.writeDB.Exec("UPDATE notifications SET delivered_at = ? WHERE id = ?", at.Unix(), id); err != nil {
		return fmt.Errorf("marking %s delivered: %w", id, err)
	}
	return nil
}

// MarkOpened records that the user acted on a notification. It reports true
// only for the first open.
func (s *Store) MarkOpened(id string, at time.Time) (bool, error) {
	res, err := s.writeDB.Exec("UPDATE notifications SET opened_at = ? WHERE id = ? AND opened_at IS NULL", at.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("marking %s opened: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PruneDelivered removes delivered notifications older than before.
func (s *Store) PruneDelivered(before time.Time) (int64, error) {
	res, err := s.writeDB.Exec("DELETE FROM notifications WHERE delivered_at IS NOT NULL AND delivered_at < ?", before.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning notifications: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryNotifications(query string, args ...any) ([]Notification, error) {
	rows, err := s.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n                 Notification
			fireAt            int64
			delivered, opened sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.FactletID, &n.Title, &n.Body, &fireAt, &delivered, &opened); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.FireAt = time.Unix(fireAt, 0)
		n.DeliveredAt = unixPtr(delivered)
		n.OpenedAt = unixPtr(opened)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
