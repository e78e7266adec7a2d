package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
	"github.com/user/investrack/backend/internal/reconciler"
)

// TradeRequest defines the expected JSON body for buy and sell.
type TradeRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DepositRequest defines the expected JSON body for deposits.
type DepositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

// TradeResponse carries the committed trade plus the post-commit snapshot.
type TradeResponse struct {
	Trade    *models.TradeRecord `json:"trade"`
	Balance  decimal.Decimal     `json:"balance"`
	Holding  *models.Holding     `json:"holding,omitempty"`
	Holdings []*models.Holding   `json:"holdings"`
}

// Buy executes a market buy for the authenticated user.
func Buy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	req := new(TradeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	result, err := trades.Buy(c.Context(), userID, req.Symbol, req.Quantity)
	if err != nil {
		return tradeError(c, err)
	}
	return tradeResponse(c, userID, result)
}

// Sell executes a market sell for the authenticated user.
func Sell(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	req := new(TradeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	result, err := trades.Sell(c.Context(), userID, req.Symbol, req.Quantity)
	if err != nil {
		return tradeError(c, err)
	}
	return tradeResponse(c, userID, result)
}

// Deposit credits simulated funds to the authenticated user's account.
func Deposit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	req := new(DepositRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	result, err := trades.Deposit(c.Context(), userID, req.Amount, req.PaymentMethod)
	if err != nil {
		return tradeError(c, err)
	}
	return tradeResponse(c, userID, result)
}

// GetTrades retrieves the authenticated user's trade history, newest first.
func GetTrades(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID in token"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	records, err := database.GetUserTrades(c.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch trades")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve trade history"})
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

// tradeResponse attaches the user's full holdings list to a reconciler
// result. The holdings read happens after the commit, so it reflects it.
func tradeResponse(c *fiber.Ctx, userID uuid.UUID, result *reconciler.Result) error {
	holdings, err := database.GetUserHoldings(c.Context(), userID)
	if err != nil {
		// The trade committed; failing the whole request over a snapshot
		// read would misreport it. Return what we have.
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch holdings after trade")
		holdings = nil
	}
	return c.Status(fiber.StatusOK).JSON(TradeResponse{
		Trade:    result.Trade,
		Balance:  result.Balance,
		Holding:  result.Holding,
		Holdings: holdings,
	})
}

// tradeError maps the reconciler taxonomy onto HTTP statuses with the
// human-readable reason.
func tradeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reconciler.ErrInvalidQuantity),
		errors.Is(err, reconciler.ErrInvalidAmount),
		errors.Is(err, reconciler.ErrBelowMinimumInvestment),
		errors.Is(err, reconciler.ErrInsufficientFunds),
		errors.Is(err, reconciler.ErrInsufficientHoldings):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconciler.ErrSymbolNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, reconciler.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another transaction on this account is in progress, please retry"})
	case errors.Is(err, reconciler.ErrRecordingFailed):
		log.Error().Err(err).Msg("Trade recording failed, transaction aborted")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Trade could not be recorded; no changes were applied"})
	default:
		log.Error().Err(err).Msg("Trade failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process transaction"})
	}
}
