// Package client is the Go consumer of the SocialHub API: a thin REST
// client plus a Syncer that keeps a local view of conversations and
// notifications converged with the server between live pushes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"socialhub/models"
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the REST API with a bearer token
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New builds a client for the given base URL (e.g. "http://localhost:8080")
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Conversations fetches the caller's conversation list
func (c *Client) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var out []models.Conversation
	err := c.do(ctx, http.MethodGet, "/api/messages/conversations", nil, &out)
	return out, err
}

// Messages fetches the thread with a peer; the server marks incoming
// messages from that peer as read as a side effect
func (c *Client) Messages(ctx context.Context, peerID int64) ([]models.MessageWithSender, error) {
	var out []models.MessageWithSender
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/messages/%d", peerID), nil, &out)
	return out, err
}

// SendMessage persists a new message
func (c *Client) SendMessage(ctx context.Context, recipientID int64, content string) (*models.Message, error) {
	body := map[string]interface{}{"recipientId": recipientID, "content": content}
	var out models.Message
	if err := c.do(ctx, http.MethodPost, "/api/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage deletes a message the caller sent
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/messages/%d", id), nil, nil)
}

// Notifications fetches the caller's most recent notifications
func (c *Client) Notifications(ctx context.Context) ([]models.NotificationWithSender, error) {
	var out []models.NotificationWithSender
	err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &out)
	return out, err
}

// UnreadCount fetches the caller's unread notification count
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &out)
	return out.Count, err
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil)
}

// MarkAllNotificationsRead marks every notification as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/mark-all-read", nil, nil)
}
