package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/investrack/backend/internal/models"
)

// CreateUser inserts a new user. Runs inside the provided transaction so the
// caller can create the user's cash account in the same atomic unit.
func CreateUser(ctx context.Context, tx pgx.Tx, username, email, fullName, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: passwordHash,
	}

	query := `INSERT INTO users (username, email, full_name, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`

	err := Querier(tx).QueryRow(ctx, query, username, email, fullName, passwordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating user %s: %w", username, err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by their username.
// Returns nil, nil when the user does not exist.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, email, full_name, password_hash, created_at
			  FROM users WHERE username = $1`

	err := DB.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting user %s: %w", username, err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, email, full_name, password_hash, created_at
			  FROM users WHERE id = $1`

	err := DB.QueryRow(ctx, query, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting user by id %s: %w", userID, err)
	}

	return user, nil
}
