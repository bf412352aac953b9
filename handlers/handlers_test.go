package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"socialhub/config"
	"socialhub/database"
	"socialhub/middleware"
	"socialhub/models"
	"socialhub/realtime"
)

type testEnv struct {
	server *httptest.Server
	hub    *realtime.Hub
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, database.Initialize(":memory:"))
	t.Cleanup(func() { database.DB.Close() })

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenValidity: time.Hour,
	}
	hub := realtime.NewHub()
	server := httptest.NewServer(New(hub, cfg).Routes())
	t.Cleanup(server.Close)

	return &testEnv{server: server, hub: hub, cfg: cfg}
}

// seedUser creates a user directly and returns its id and a valid token
func (e *testEnv) seedUser(t *testing.T, name string) (int64, string) {
	t.Helper()
	user, err := database.CreateUser(name, name+"@example.com", "hash")
	require.NoError(t, err)
	token, err := middleware.GenerateToken(user.ID, []byte(e.cfg.JWTSecret), e.cfg.TokenValidity)
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Token string              `json:"token"`
		User  models.UserResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.Token)
	require.Equal(t, "alice", created.User.Name)

	resp, data = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loggedIn struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(data, &loggedIn))

	resp, data = env.request(t, http.MethodGet, "/api/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.UserResponse
	require.NoError(t, json.Unmarshal(data, &me))
	require.Equal(t, created.User.ID, me.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.request(t, http.MethodGet, "/api/messages/conversations", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessageFlow(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.seedUser(t, "alice")
	bobID, bobToken := env.seedUser(t, "bob")

	// Alice sends "hi" then "there"
	for _, content := range []string{"hi", "there"} {
		resp, _ := env.request(t, http.MethodPost, "/api/messages", aliceToken, map[string]interface{}{
			"recipientId": bobID, "content": content,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// Bob's conversation list shows 2 unread from alice
	resp, data := env.request(t, http.MethodGet, "/api/messages/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var conversations []models.Conversation
	require.NoError(t, json.Unmarshal(data, &conversations))
	require.Len(t, conversations, 1)
	require.Equal(t, alice, conversations[0].Peer.ID)
	require.Equal(t, 2, conversations[0].UnreadCount)
	require.Equal(t, "there", conversations[0].LastMessage.Content)

	// Bob reads the thread
	resp, data = env.request(t, http.MethodGet, fmt.Sprintf("/api/messages/%d", alice), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []models.MessageWithSender
	require.NoError(t, json.Unmarshal(data, &messages))
	require.Len(t, messages, 2)
	require.Equal(t, "hi", messages[0].Content)
	require.Equal(t, "there", messages[1].Content)

	// Unread count converged to zero
	resp, data = env.request(t, http.MethodGet, "/api/messages/conversations", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &conversations))
	require.Equal(t, 0, conversations[0].UnreadCount)
}

func TestSendMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.seedUser(t, "alice")
	bobID, _ := env.seedUser(t, "bob")

	resp, _ := env.request(t, http.MethodPost, "/api/messages", aliceToken, map[string]interface{}{
		"recipientId": bobID, "content": "   ",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/messages", aliceToken, map[string]interface{}{
		"recipientId": 99999, "content": "hello",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteMessageAuthorization(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.seedUser(t, "alice")
	bobID, bobToken := env.seedUser(t, "bob")

	msg, err := database.SendMessage(bobID, aliceID, "from bob")
	require.NoError(t, err)

	// Alice is the recipient, not the sender
	resp, _ := env.request(t, http.MethodDelete, fmt.Sprintf("/api/messages/%d", msg.ID), aliceToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.request(t, http.MethodDelete, "/api/messages/99999", bobToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, http.MethodDelete, fmt.Sprintf("/api/messages/%d", msg.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.seedUser(t, "alice")
	bobID, _ := env.seedUser(t, "bob")

	n, err := database.CreateNotification(aliceID, bobID, models.KindFollow, "started following you", nil)
	require.NoError(t, err)

	resp, data := env.request(t, http.MethodGet, "/api/notifications", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var notifications []models.NotificationWithSender
	require.NoError(t, json.Unmarshal(data, &notifications))
	require.Len(t, notifications, 1)
	require.Equal(t, "bob", notifications[0].Sender.Name)

	resp, data = env.request(t, http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var count struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &count))
	require.Equal(t, 1, count.Count)

	resp, _ = env.request(t, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", n.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data = env.request(t, http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &count))
	require.Zero(t, count.Count)

	resp, _ = env.request(t, http.MethodPut, "/api/notifications/mark-all-read", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReactionCreatesOneNotification(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.seedUser(t, "alice")
	bobID, bobToken := env.seedUser(t, "bob")

	post, err := database.CreatePost(bobID, "bob's post", "content")
	require.NoError(t, err)

	resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/react", post.ID), aliceToken,
		map[string]string{"reactionType": "love"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	notifications, err := database.NotificationsFor(bobID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.KindReaction, notifications[0].Kind)
	require.Equal(t, aliceID, notifications[0].SenderID)
	require.NotNil(t, notifications[0].RelatedPostID)
	require.Equal(t, post.ID, *notifications[0].RelatedPostID)

	// Bob reacting to his own post creates nothing
	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/react", post.ID), bobToken,
		map[string]string{"reactionType": "like"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	notifications, err = database.NotificationsFor(bobID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
}

func TestReactionValidation(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.seedUser(t, "alice")
	bobID, _ := env.seedUser(t, "bob")

	post, err := database.CreatePost(bobID, "bob's post", "content")
	require.NoError(t, err)

	resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/react", post.ID), aliceToken,
		map[string]string{"reactionType": "meh"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/posts/99999/react", aliceToken,
		map[string]string{"reactionType": "like"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFollowFlow(t *testing.T) {
	env := newTestEnv(t)
	aliceID, aliceToken := env.seedUser(t, "alice")
	bobID, _ := env.seedUser(t, "bob")

	resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", aliceID), aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	notifications, err := database.NotificationsFor(bobID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.KindFollow, notifications[0].Kind)

	resp, data := env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile struct {
		Followers   int  `json:"followers"`
		IsFollowing bool `json:"isFollowing"`
	}
	require.NoError(t, json.Unmarshal(data, &profile))
	require.Equal(t, 1, profile.Followers)
	require.True(t, profile.IsFollowing)

	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/users/%d/unfollow", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSharePostNotifiesAuthor(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.seedUser(t, "alice")
	bobID, _ := env.seedUser(t, "bob")

	post, err := database.CreatePost(bobID, "bob's post", "content")
	require.NoError(t, err)

	resp, data := env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/share", post.ID), aliceToken,
		map[string]string{"content": "look at this"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var shared models.Post
	require.NoError(t, json.Unmarshal(data, &shared))
	require.True(t, shared.IsShared)

	notifications, err := database.NotificationsFor(bobID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.KindShare, notifications[0].Kind)
}
