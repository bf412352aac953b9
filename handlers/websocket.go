package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"socialhub/middleware"
	"socialhub/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type joinPayload struct {
	Token string `json:"token"`
}

type typingPayload struct {
	RecipientID int64 `json:"recipientId"`
	Typing      bool  `json:"typing"`
}

// ServeWS upgrades the connection and runs the per-connection state
// machine: the socket starts unbound and must send a join message carrying
// a bearer token before it is announced to the presence registry.
func (a *API) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	client := realtime.NewClient(conn)
	go client.WritePump()

	defer func() {
		a.hub.Withdraw(client)
		client.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("conn", client.ID).Msg("websocket read")
			}
			return
		}

		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "join":
			var p joinPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				continue
			}
			userID, err := middleware.ParseToken(p.Token, a.secret)
			if err != nil {
				log.Warn().Str("conn", client.ID).Msg("join with invalid token")
				return
			}
			a.hub.Announce(userID, client)

		case "typing":
			if client.UserID() == 0 {
				continue
			}
			var p typingPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				continue
			}
			a.hub.PushToUser(p.RecipientID, "typing", map[string]interface{}{
				"userId": client.UserID(),
				"typing": p.Typing,
			})
		}
	}
}
