package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"socialhub/database"
	"socialhub/middleware"
	"socialhub/models"
)

type sendMessageRequest struct {
	RecipientID int64  `json:"recipientId"`
	Content     string `json:"content"`
}

// GetConversations returns all conversations for the current user
func (a *API) GetConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := database.Conversations(middleware.UserID(r))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	for i := range conversations {
		conversations[i].Peer.Online = a.hub.IsOnline(conversations[i].Peer.ID)
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	respondJSON(w, http.StatusOK, conversations)
}

// GetMessages returns the thread with a peer. Reading the thread marks
// every incoming message from that peer as read.
func (a *API) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	peerID, _ := strconv.ParseInt(mux.Vars(r)["peerId"], 10, 64)

	messages, err := database.MessagesBetween(userID, peerID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if err := database.MarkMessagesRead(peerID, userID); err != nil {
		respondStoreError(w, err)
		return
	}

	if messages == nil {
		messages = []models.MessageWithSender{}
	}
	respondJSON(w, http.StatusOK, messages)
}

// SendMessage creates a new message and pushes it to the recipient if
// they are connected
func (a *API) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := database.GetUserByID(req.RecipientID); err != nil {
		respondStoreError(w, err)
		return
	}

	message, err := database.SendMessage(userID, req.RecipientID, req.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if sender, err := database.GetUserByID(userID); err == nil {
		a.hub.PushToUser(req.RecipientID, "message", models.MessageWithSender{
			Message:       *message,
			SenderName:    sender.Name,
			SenderPicture: sender.ProfilePicture,
		})
	}

	respondJSON(w, http.StatusCreated, message)
}

// DeleteMessage removes a message; only the sender may do this
func (a *API) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := database.DeleteMessage(id, middleware.UserID(r)); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
