package database

import "fmt"

// Follow records that follower now follows followee. Re-following is a no-op.
func Follow(followerID, followeeID int64) error {
	_, err := DB.Exec(
		"INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)",
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Unfollow removes a follow relation if present
func Unfollow(followerID, followeeID int64) error {
	_, err := DB.Exec(
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?",
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsFollowing reports whether follower currently follows followee
func IsFollowing(followerID, followeeID int64) (bool, error) {
	var n int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?",
		followerID, followeeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// FollowerCount returns how many users follow the given user
func FollowerCount(userID int64) (int, error) {
	var n int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM follows WHERE followee_id = ?", userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
