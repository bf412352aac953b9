package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"socialhub/models"
)

// CreateNotification persists a notification addressed to recipientID.
// Self-notifications are suppressed here rather than at every call site;
// a nil notification with a nil error means the write was skipped.
func CreateNotification(recipientID, senderID int64, kind, text string, relatedPostID *int64) (*models.Notification, error) {
	if recipientID == senderID {
		return nil, nil
	}

	result, err := DB.Exec(
		`INSERT INTO notifications (recipient_id, sender_id, kind, text, related_post_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		recipientID, senderID, kind, text, relatedPostID, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return GetNotificationByID(id)
}

// GetNotificationByID retrieves a notification by its ID
func GetNotificationByID(id int64) (*models.Notification, error) {
	n := &models.Notification{}
	err := DB.QueryRow(
		`SELECT id, recipient_id, sender_id, kind, text, read, related_post_id, related_comment_id, created_at
		FROM notifications WHERE id = ?`,
		id,
	).Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Kind, &n.Text, &n.Read,
		&n.RelatedPostID, &n.RelatedCommentID, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// NotificationsFor returns the user's most recent notifications with the
// sender summary joined in. A non-positive limit falls back to 50.
func NotificationsFor(userID int64, limit int) ([]models.NotificationWithSender, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(
		`SELECT n.id, n.recipient_id, n.sender_id, n.kind, n.text, n.read,
		        n.related_post_id, n.related_comment_id, n.created_at,
		        u.id, u.name, u.email, u.profile_picture, u.created_at
		FROM notifications n
		JOIN users u ON n.sender_id = u.id
		WHERE n.recipient_id = ?
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var notifications []models.NotificationWithSender
	for rows.Next() {
		var n models.NotificationWithSender
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.SenderID, &n.Kind, &n.Text, &n.Read,
			&n.RelatedPostID, &n.RelatedCommentID, &n.CreatedAt,
			&n.Sender.ID, &n.Sender.Name, &n.Sender.Email, &n.Sender.ProfilePicture, &n.Sender.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadNotificationCount returns the number of unread notifications for a user
func UnreadNotificationCount(userID int64) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND read = 0",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// MarkNotificationRead flips one notification to read. The update filter is
// scoped to the owner, so a missing or foreign notification is silently
// left untouched.
func MarkNotificationRead(id, userID int64) error {
	_, err := DB.Exec(
		"UPDATE notifications SET read = 1 WHERE id = ? AND recipient_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead flips every notification owned by the user to read
func MarkAllNotificationsRead(userID int64) error {
	_, err := DB.Exec(
		"UPDATE notifications SET read = 1 WHERE recipient_id = ?", userID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
