package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/user/investrack/backend/internal/auth"
	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
)

// SignupRequest defines the expected JSON body for signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// LoginRequest defines the expected JSON body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse defines the JSON response for successful auth
type AuthResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	IssuedAt time.Time    `json:"issued_at"`
}

// Signup handles user registration. The user row and their zero-balance cash
// account are created in one transaction.
func Signup(c *fiber.Ctx) error {
	req := new(SignupRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	existingUser, err := database.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to check username")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error checking username"})
	}
	if existingUser != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already taken"})
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to hash password")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process password"})
	}

	tx, err := database.DB.Begin(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to begin signup transaction")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error starting transaction"})
	}
	defer tx.Rollback(c.Context())

	newUser, err := database.CreateUser(c.Context(), tx, req.Username, strings.TrimSpace(req.Email), strings.TrimSpace(req.FullName), hashedPassword)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to create user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}
	if _, err := database.CreateAccount(c.Context(), tx, newUser.ID); err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to create cash account")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create cash account"})
	}
	if err := tx.Commit(c.Context()); err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to commit signup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error finalizing signup"})
	}

	token, err := auth.GenerateJWT(newUser.ID, newUser.Username)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to generate token after signup")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "User created, but failed to generate token"})
	}

	newUser.Password = ""
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:    token,
		User:     newUser,
		IssuedAt: time.Now(),
	})
}

// Login handles user authentication.
func Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	user, err := database.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to look up user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error finding user"})
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	token, err := auth.GenerateJWT(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to generate token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	user.Password = ""
	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Token:    token,
		User:     user,
		IssuedAt: time.Now(),
	})
}
