package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
	"github.com/user/investrack/backend/internal/reconciler"
)

// WatchlistAddRequest defines the expected JSON body for pinning a symbol.
type WatchlistAddRequest struct {
	Symbol string `json:"symbol"`
}

// GetWatchlist returns the quotes for every symbol the user has pinned.
func GetWatchlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	symbols, err := database.GetWatchlistSymbols(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch watchlist")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve watchlist"})
	}

	quotesBySymbol, err := database.GetQuotesBySymbols(c.Context(), symbols)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch watchlist quotes")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve watchlist quotes"})
	}

	// Preserve pin order; skip symbols that were delisted since pinning.
	quotes := make([]*models.Quote, 0, len(symbols))
	for _, s := range symbols {
		if q, ok := quotesBySymbol[s]; ok {
			quotes = append(quotes, q)
		}
	}
	return c.Status(fiber.StatusOK).JSON(quotes)
}

// AddToWatchlist pins a symbol to the user's watchlist.
func AddToWatchlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	req := new(WatchlistAddRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	symbol := reconciler.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Symbol is required"})
	}

	if err := database.AddWatchlistItem(c.Context(), userID, symbol); err != nil {
		if strings.Contains(err.Error(), "not listed") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Symbol not found"})
		}
		log.Error().Err(err).Stringer("user_id", userID).Str("symbol", symbol).Msg("Failed to add watchlist item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update watchlist"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"symbol": symbol})
}

// RemoveFromWatchlist unpins a symbol from the user's watchlist.
func RemoveFromWatchlist(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	symbol := reconciler.NormalizeSymbol(c.Params("symbol"))
	if symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Symbol is required"})
	}

	if err := database.RemoveWatchlistItem(c.Context(), userID, symbol); err != nil {
		if strings.Contains(err.Error(), "not on the watchlist") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Symbol is not on the watchlist"})
		}
		log.Error().Err(err).Stringer("user_id", userID).Str("symbol", symbol).Msg("Failed to remove watchlist item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update watchlist"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Removed from watchlist"})
}
