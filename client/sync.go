package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"socialhub/models"
)

// Syncer reconciles a local view of conversations, the open thread, and
// notifications with the server. Pushed events are applied immediately;
// polling on fixed intervals guarantees convergence even when a push was
// dropped while the user was offline. Local mutations are optimistic: on
// failure the affected state is reloaded from the server rather than
// merged back.
type Syncer struct {
	api   *Client
	wsURL string

	ThreadInterval       time.Duration
	ConversationInterval time.Duration
	NotificationInterval time.Duration

	mu            sync.RWMutex
	conversations []models.Conversation
	notifications []models.NotificationWithSender
	unread        int
	activePeer    int64
	thread        []models.MessageWithSender
}

// NewSyncer builds a syncer. wsURL is the live channel endpoint
// (e.g. "ws://localhost:8080/ws").
func NewSyncer(api *Client, wsURL string) *Syncer {
	return &Syncer{
		api:                  api,
		wsURL:                wsURL,
		ThreadInterval:       3 * time.Second,
		ConversationInterval: 10 * time.Second,
		NotificationInterval: 30 * time.Second,
	}
}

// Run polls and consumes live events until the context is cancelled
func (s *Syncer) Run(ctx context.Context) {
	go s.consumeLive(ctx)

	threadTick := time.NewTicker(s.ThreadInterval)
	convTick := time.NewTicker(s.ConversationInterval)
	notifTick := time.NewTicker(s.NotificationInterval)
	defer threadTick.Stop()
	defer convTick.Stop()
	defer notifTick.Stop()

	s.RefreshConversations(ctx)
	s.RefreshNotifications(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-threadTick.C:
			s.refreshThread(ctx)
		case <-convTick.C:
			s.RefreshConversations(ctx)
		case <-notifTick.C:
			s.RefreshNotifications(ctx)
		}
	}
}

// Conversations returns the current local conversation list
func (s *Syncer) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Notifications returns the current local notification list
func (s *Syncer) Notifications() []models.NotificationWithSender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NotificationWithSender, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Unread returns the local unread notification counter
func (s *Syncer) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Thread returns the messages of the currently open thread
func (s *Syncer) Thread() []models.MessageWithSender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MessageWithSender, len(s.thread))
	copy(out, s.thread)
	return out
}

// OpenThread fetches and tracks the thread with a peer
func (s *Syncer) OpenThread(ctx context.Context, peerID int64) error {
	messages, err := s.api.Messages(ctx, peerID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.activePeer = peerID
	s.thread = messages
	s.mu.Unlock()
	return nil
}

// Send applies the message to the open thread optimistically, then
// persists it. On failure the thread is reloaded from the server and the
// error is surfaced; there is no rollback merge.
func (s *Syncer) Send(ctx context.Context, recipientID int64, content string) error {
	optimistic := models.MessageWithSender{
		Message: models.Message{
			SenderID:    0, // filled in by the server copy
			RecipientID: recipientID,
			Content:     content,
			CreatedAt:   time.Now(),
		},
	}

	s.mu.Lock()
	tracking := s.activePeer == recipientID
	if tracking {
		s.thread = append(s.thread, optimistic)
	}
	s.mu.Unlock()

	msg, err := s.api.SendMessage(ctx, recipientID, content)
	if err != nil {
		if tracking {
			if messages, rerr := s.api.Messages(ctx, recipientID); rerr == nil {
				s.mu.Lock()
				if s.activePeer == recipientID {
					s.thread = messages
				}
				s.mu.Unlock()
			}
		}
		return err
	}

	if tracking {
		s.mu.Lock()
		if s.activePeer == recipientID && len(s.thread) > 0 {
			s.thread[len(s.thread)-1] = models.MessageWithSender{Message: *msg}
		}
		s.mu.Unlock()
	}
	return nil
}

// MarkNotificationRead flips a notification locally, then persists. On
// failure the notification state is reloaded.
func (s *Syncer) MarkNotificationRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
		}
	}
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.RefreshNotifications(ctx)
		return err
	}
	return nil
}

// RefreshConversations re-fetches the conversation list
func (s *Syncer) RefreshConversations(ctx context.Context) {
	conversations, err := s.api.Conversations(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("refresh conversations")
		return
	}
	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()
}

// RefreshNotifications re-fetches notifications and the unread count
func (s *Syncer) RefreshNotifications(ctx context.Context) {
	notifications, err := s.api.Notifications(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("refresh notifications")
		return
	}
	count, err := s.api.UnreadCount(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("refresh unread count")
		return
	}
	s.mu.Lock()
	s.notifications = notifications
	s.unread = count
	s.mu.Unlock()
}

func (s *Syncer) refreshThread(ctx context.Context) {
	s.mu.RLock()
	peer := s.activePeer
	s.mu.RUnlock()
	if peer == 0 {
		return
	}
	messages, err := s.api.Messages(ctx, peer)
	if err != nil {
		log.Debug().Err(err).Msg("refresh thread")
		return
	}
	s.mu.Lock()
	if s.activePeer == peer {
		s.thread = messages
	}
	s.mu.Unlock()
}

// consumeLive dials the live channel, joins, and applies pushed events.
// The connection is best-effort: on any failure it redials after a short
// delay, and polling covers whatever was missed in between.
func (s *Syncer) consumeLive(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.runLive(ctx); err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Msg("live channel closed")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (s *Syncer) runLive(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	join := models.WebSocketMessage{
		Type:    "join",
		Payload: map[string]string{"token": s.api.Token},
	}
	if err := conn.WriteJSON(join); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.handleEvent(raw)
	}
}

// handleEvent applies one pushed event to local state. A pushed
// notification is prepended and counted immediately instead of waiting
// for the next poll; everything else nudges the relevant refresh.
func (s *Syncer) handleEvent(raw []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "notification":
		var n models.NotificationWithSender
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			return
		}
		s.mu.Lock()
		s.notifications = append([]models.NotificationWithSender{n}, s.notifications...)
		s.unread++
		s.mu.Unlock()

	case "message":
		var m models.MessageWithSender
		if err := json.Unmarshal(msg.Payload, &m); err != nil {
			return
		}
		s.mu.Lock()
		if s.activePeer == m.SenderID {
			s.thread = append(s.thread, m)
		}
		s.mu.Unlock()

	case "userOnline", "userOffline":
		var userID int64
		if err := json.Unmarshal(msg.Payload, &userID); err != nil {
			return
		}
		online := msg.Type == "userOnline"
		s.mu.Lock()
		for i := range s.conversations {
			if s.conversations[i].Peer.ID == userID {
				s.conversations[i].Peer.Online = online
			}
		}
		s.mu.Unlock()
	}
}
