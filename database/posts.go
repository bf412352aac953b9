package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialhub/models"
)

// CreatePost inserts a new post. Title and content are required.
func CreatePost(authorID int64, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	result, err := DB.Exec(
		"INSERT INTO posts (author_id, title, content, created_at) VALUES (?, ?, ?, ?)",
		authorID, title, content, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return getPost(id)
}

func getPost(id int64) (*models.Post, error) {
	p := &models.Post{}
	err := DB.QueryRow(
		"SELECT id, author_id, title, content, is_shared, original_post_id, created_at FROM posts WHERE id = ?",
		id,
	).Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.IsShared, &p.OriginalPostID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// GetPost loads a post together with its derived reaction counts
func GetPost(id int64) (*models.PostWithReactions, error) {
	p, err := getPost(id)
	if err != nil {
		return nil, err
	}

	view := &models.PostWithReactions{Post: *p, Reactions: make(map[string]int)}
	for _, kind := range models.ReactionKinds {
		view.Reactions[kind] = 0
	}

	rows, err := DB.Query(
		"SELECT kind, COUNT(*) FROM post_reactions WHERE post_id = ? GROUP BY kind", id,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		view.Reactions[kind] = count
		view.ReactionCount += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Legacy clients expect a flat like count; it is derived from the
	// canonical relation, never stored alongside it.
	view.LikeCount = view.Reactions["like"]

	if err := DB.QueryRow(
		"SELECT COUNT(*) FROM post_shares WHERE post_id = ?", id,
	).Scan(&view.ShareCount); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return view, nil
}

// React records userID's reaction to a post. A user holds at most one
// reaction per post; reacting again replaces the previous kind. Returns
// the post so callers can address the author.
func React(postID, userID int64, kind string) (*models.Post, error) {
	if !models.ValidReaction(kind) {
		return nil, fmt.Errorf("%w: invalid reaction type", ErrValidation)
	}

	post, err := getPost(postID)
	if err != nil {
		return nil, err
	}

	_, err = DB.Exec(
		`INSERT INTO post_reactions (post_id, user_id, kind, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(post_id, user_id) DO UPDATE SET kind = excluded.kind, created_at = excluded.created_at`,
		postID, userID, kind, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// SharePost clones a post under the sharing user and records the share on
// the original. Returns the new shared post.
func SharePost(postID, userID int64, comment string) (*models.Post, error) {
	original, err := getPost(postID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(comment)
	if content == "" {
		content = "Check out this post!"
	}

	result, err := DB.Exec(
		`INSERT INTO posts (author_id, title, content, is_shared, original_post_id, created_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		userID, "Shared: "+original.Title, content, original.ID, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if _, err := DB.Exec(
		"INSERT INTO post_shares (post_id, user_id) VALUES (?, ?)",
		original.ID, userID,
	); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return getPost(id)
}
