package database

import (
	"database/sql"
	"errors"
	"fmt"

	"socialhub/models"
)

// CreateUser inserts a new user into the database
func CreateUser(name, email, password string) (*models.User, error) {
	result, err := DB.Exec(
		"INSERT INTO users (name, email, password) VALUES (?, ?, ?)",
		name, email, password,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return GetUserByID(id)
}

// GetUserByID retrieves a user by their ID
func GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	err := DB.QueryRow(
		"SELECT id, name, email, password, profile_picture, bio, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.ProfilePicture, &user.Bio, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email
func GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := DB.QueryRow(
		"SELECT id, name, email, password, profile_picture, bio, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.ProfilePicture, &user.Bio, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// SearchUsers searches for users by name, excluding the caller
func SearchUsers(query string, currentUserID int64) ([]models.UserResponse, error) {
	rows, err := DB.Query(
		`SELECT id, name, email, profile_picture, created_at FROM users
		WHERE name LIKE ? AND id != ? LIMIT 20`,
		"%"+query+"%", currentUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		var user models.UserResponse
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.ProfilePicture, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
