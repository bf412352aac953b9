package models

import "time"

// ReactionKinds lists the accepted reaction types, in display order
var ReactionKinds = []string{"like", "love", "laugh", "wow", "sad", "angry"}

// ValidReaction reports whether kind is an accepted reaction type
func ValidReaction(kind string) bool {
	for _, k := range ReactionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Post is the minimal post record reactions and shares hang off
type Post struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"authorId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	IsShared       bool      `json:"isShared"`
	OriginalPostID *int64    `json:"originalPostId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PostWithReactions is the read view of a post. Reaction counts are
// derived from the canonical per-user reaction relation; LikeCount is
// the legacy-shaped compatibility value, never stored separately.
type PostWithReactions struct {
	Post
	Reactions     map[string]int `json:"reactions"`
	ReactionCount int            `json:"reactionCount"`
	LikeCount     int            `json:"likeCount"`
	ShareCount    int            `json:"shareCount"`
}
