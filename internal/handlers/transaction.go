package handlers

import (
	"errors"
	"time"

	"vaultpay/internal/services/ledger"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	ledgerService ledger.Service
}

func NewTransactionHandler(ledgerService ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	entry, err := h.ledgerService.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			return utils.NotFound(c, "Transaction not found")
		}
		return utils.InternalError(c, "Failed to get transaction")
	}
	return utils.Success(c, fiber.Map{"transaction": entry})
}

func (h *TransactionHandler) ListWalletTransactions(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.ledgerService.ListByWallet(c.Context(), walletID, limit, offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list transactions")
	}
	return utils.Success(c, fiber.Map{
		"transactions": entries,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *TransactionHandler) GetStatement(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	end := time.Now()
	start := end.AddDate(0, -1, 0)
	if v := c.Query("start"); v != "" {
		start, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.BadRequest(c, "Invalid start time, expected RFC3339")
		}
	}
	if v := c.Query("end"); v != "" {
		end, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.BadRequest(c, "Invalid end time, expected RFC3339")
		}
	}

	stmt, err := h.ledgerService.Statement(c.Context(), walletID, start, end)
	if err != nil {
		return utils.InternalError(c, "Failed to build statement")
	}
	return utils.Success(c, fiber.Map{"statement": stmt})
}
