package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
	"github.com/user/investrack/backend/internal/reconciler"
)

// ListMarket returns all listings, optionally filtered by asset type
// (?type=stock|mutual_fund|bond).
func ListMarket(c *fiber.Ctx) error {
	assetType := c.Query("type")
	if assetType != "" && !models.ValidAssetType(assetType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid type, must be stock, mutual_fund or bond"})
	}

	quotes, err := database.ListQuotes(c.Context(), assetType)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list market data")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve market data"})
	}
	return c.Status(fiber.StatusOK).JSON(quotes)
}

// GetMarketItem returns one listing by symbol.
func GetMarketItem(c *fiber.Ctx) error {
	symbol := reconciler.NormalizeSymbol(c.Params("symbol"))
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Symbol is required"})
	}

	quote, err := database.GetQuote(c.Context(), symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch quote")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve quote"})
	}
	if quote == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Symbol not found"})
	}
	return c.Status(fiber.StatusOK).JSON(quote)
}
