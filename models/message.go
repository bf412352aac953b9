package models

import "time"

// Message represents a direct message between two users
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MessageWithSender includes sender info for display
type MessageWithSender struct {
	Message
	SenderName    string `json:"senderName"`
	SenderPicture string `json:"senderPicture"`
}

// Conversation summarizes a thread with one peer: the most recent
// message plus the number of unread incoming messages from that peer.
type Conversation struct {
	Peer        UserResponse `json:"peer"`
	LastMessage *Message     `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
}

// WebSocketMessage is the envelope for everything sent over the live channel
type WebSocketMessage struct {
	Type    string      `json:"type"` // "join", "notification", "message", "typing", "userOnline", "userOffline"
	Payload interface{} `json:"payload"`
}
