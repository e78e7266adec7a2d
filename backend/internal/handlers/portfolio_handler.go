package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/portfolio"
)

// GetPortfolio returns the authenticated user's cash balance and valued
// positions. Positions whose symbol has dropped out of market data are
// valued at cost.
func GetPortfolio(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	account, err := database.GetAccount(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch account")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve cash balance"})
	}
	if account == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No cash account for this user"})
	}

	holdings, err := database.GetUserHoldings(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch holdings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve holdings"})
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes, err := database.GetQuotesBySymbols(c.Context(), symbols)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch quotes for holdings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve market prices"})
	}

	return c.Status(fiber.StatusOK).JSON(portfolio.BuildSnapshot(account.Balance, holdings, quotes))
}
