package models

import "time"

// Notification kinds. "like" from the legacy data model is folded into
// "reaction"; the constant set matches what clients render.
const (
	KindReaction = "reaction"
	KindComment  = "comment"
	KindFollow   = "follow"
	KindMessage  = "message"
	KindShare    = "share"
)

// Notification is a durable cross-feature notification addressed to one user
type Notification struct {
	ID               int64     `json:"id"`
	RecipientID      int64     `json:"recipientId"`
	SenderID         int64     `json:"senderId"`
	Kind             string    `json:"type"`
	Text             string    `json:"message"`
	Read             bool      `json:"read"`
	RelatedPostID    *int64    `json:"relatedPostId,omitempty"`
	RelatedCommentID *int64    `json:"relatedCommentId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NotificationWithSender carries the denormalized sender summary that
// feeds both the REST list and the live push payload.
type NotificationWithSender struct {
	Notification
	Sender UserResponse `json:"sender"`
}
