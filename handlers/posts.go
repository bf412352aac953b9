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

var reactionEmojis = map[string]string{
	"like":  "👍",
	"love":  "❤️",
	"laugh": "😂",
	"wow":   "😮",
	"sad":   "😢",
	"angry": "😡",
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type reactRequest struct {
	ReactionType string `json:"reactionType"`
}

type shareRequest struct {
	Content string `json:"content"`
}

// CreatePost creates a new post
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := database.CreatePost(middleware.UserID(r), req.Title, req.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// GetPost returns a post with its derived reaction counts
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	post, err := database.GetPost(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// ReactToPost records the caller's reaction and notifies the post author
func (a *API) ReactToPost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	postID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var req reactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := database.React(postID, userID, req.ReactionType)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.notify(post.AuthorID, userID, models.KindReaction,
		"reacted "+reactionEmojis[req.ReactionType]+" to your post", &post.ID)

	view, err := database.GetPost(postID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SharePost clones a post under the caller and notifies the original author
func (a *API) SharePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	postID, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	original, err := database.GetPost(postID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	shared, err := database.SharePost(postID, userID, req.Content)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	a.notify(original.AuthorID, userID, models.KindShare, "shared your post", &original.ID)

	respondJSON(w, http.StatusCreated, shared)
}
