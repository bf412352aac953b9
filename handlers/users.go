package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"socialhub/database"
	"socialhub/middleware"
	"socialhub/models"
)

// GetUser returns a user profile with follow info and live presence
func (a *API) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	targetID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	target, err := database.GetUserByID(targetID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	followers, err := database.FollowerCount(targetID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	following, err := database.IsFollowing(userID, targetID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	resp := target.ToResponse()
	resp.Online = a.hub.IsOnline(targetID)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":        resp,
		"followers":   followers,
		"isFollowing": following,
	})
}

// SearchUsers finds users by name for the people picker
func (a *API) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := database.SearchUsers(r.URL.Query().Get("q"), middleware.UserID(r))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	for i := range users {
		users[i].Online = a.hub.IsOnline(users[i].ID)
	}
	if users == nil {
		users = []models.UserResponse{}
	}
	respondJSON(w, http.StatusOK, users)
}

// FollowUser records a follow and notifies the followed user
func (a *API) FollowUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	targetID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	if targetID == userID {
		respondError(w, http.StatusBadRequest, "Cannot follow yourself")
		return
	}

	if _, err := database.GetUserByID(targetID); err != nil {
		respondStoreError(w, err)
		return
	}

	if err := database.Follow(userID, targetID); err != nil {
		respondStoreError(w, err)
		return
	}

	a.notify(targetID, userID, models.KindFollow, "started following you", nil)

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UnfollowUser removes a follow relation
func (a *API) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	targetID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	if err := database.Unfollow(userID, targetID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
