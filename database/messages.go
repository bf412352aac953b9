package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialhub/models"
)

// SendMessage persists a new unread message. Content is trimmed; an empty
// result is a validation error.
func SendMessage(senderID, recipientID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	result, err := DB.Exec(
		"INSERT INTO messages (sender_id, recipient_id, content, created_at) VALUES (?, ?, ?, ?)",
		senderID, recipientID, content, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return GetMessageByID(id)
}

// GetMessageByID retrieves a message by its ID
func GetMessageByID(id int64) (*models.Message, error) {
	msg := &models.Message{}
	err := DB.QueryRow(
		"SELECT id, sender_id, recipient_id, content, read, created_at FROM messages WHERE id = ?",
		id,
	).Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.Read, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

// MessagesBetween retrieves the full thread between two users in
// chronological order, with sender display fields joined in.
func MessagesBetween(userID, peerID int64) ([]models.MessageWithSender, error) {
	rows, err := DB.Query(
		`SELECT m.id, m.sender_id, m.recipient_id, m.content, m.read, m.created_at,
		        u.name, u.profile_picture
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = ? AND m.recipient_id = ?) OR (m.sender_id = ? AND m.recipient_id = ?)
		ORDER BY m.created_at, m.id`,
		userID, peerID, peerID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var messages []models.MessageWithSender
	for rows.Next() {
		var msg models.MessageWithSender
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.Read, &msg.CreatedAt,
			&msg.SenderName, &msg.SenderPicture,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkMessagesRead flips every unread message from sender to recipient in
// one conditional update. Re-running it when nothing matches is a no-op,
// so concurrent reads of the same thread are safe without locking.
func MarkMessagesRead(senderID, recipientID int64) error {
	_, err := DB.Exec(
		"UPDATE messages SET read = 1 WHERE sender_id = ? AND recipient_id = ? AND read = 0",
		senderID, recipientID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteMessage removes a message. Only the sender may delete it.
func DeleteMessage(id, requesterID int64) error {
	var senderID int64
	err := DB.QueryRow("SELECT sender_id FROM messages WHERE id = ?", id).Scan(&senderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	if senderID != requesterID {
		return fmt.Errorf("%w: only the sender can delete a message", ErrForbidden)
	}

	if _, err := DB.Exec("DELETE FROM messages WHERE id = ?", id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Conversations derives the per-user conversation list: every peer the
// user has exchanged messages with, most recent activity first. The last
// message and the unread count are two independent reductions over the
// same partition; the count covers all currently-unread incoming messages
// from the peer, not just those past some cutoff.
func Conversations(userID int64) ([]models.Conversation, error) {
	rows, err := DB.Query(
		`SELECT CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END AS peer_id
		FROM messages m
		WHERE m.sender_id = ? OR m.recipient_id = ?
		ORDER BY m.created_at DESC, m.id DESC`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var peerIDs []int64
	seen := make(map[int64]bool)
	for rows.Next() {
		var peerID int64
		if err := rows.Scan(&peerID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if seen[peerID] {
			continue
		}
		seen[peerID] = true
		peerIDs = append(peerIDs, peerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var conversations []models.Conversation
	for _, peerID := range peerIDs {
		peer, err := GetUserByID(peerID)
		if err != nil {
			continue
		}

		var last models.Message
		err = DB.QueryRow(
			`SELECT id, sender_id, recipient_id, content, read, created_at
			FROM messages
			WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
			ORDER BY created_at DESC, id DESC LIMIT 1`,
			userID, peerID, peerID, userID,
		).Scan(&last.ID, &last.SenderID, &last.RecipientID, &last.Content, &last.Read, &last.CreatedAt)

		var unread int
		if err2 := DB.QueryRow(
			"SELECT COUNT(*) FROM messages WHERE sender_id = ? AND recipient_id = ? AND read = 0",
			peerID, userID,
		).Scan(&unread); err2 != nil {
			return nil, fmt.Errorf("db error: %w", err2)
		}

		conv := models.Conversation{
			Peer:        peer.ToResponse(),
			UnreadCount: unread,
		}
		if err == nil {
			conv.LastMessage = &last
		}
		conversations = append(conversations, conv)
	}

	return conversations, nil
}
