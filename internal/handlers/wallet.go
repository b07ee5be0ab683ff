package handlers

import (
	"errors"
	"strconv"

	"vaultpay/internal/models"
	"vaultpay/internal/services/wallet"
	"vaultpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// extractUserClaims is a helper to reduce duplication across handlers.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func parseWalletID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Invalid request format")
	}

	w, err := h.walletService.CreateWallet(c.Context(), claims.UserID, input.Currency)
	if err != nil {
		if errors.Is(err, wallet.ErrDuplicateWallet) {
			return utils.Conflict(c, "Wallet already exists for user")
		}
		return utils.InternalError(c, "Failed to create wallet")
	}

	return utils.Created(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	w, err := h.walletService.GetWallet(c.Context(), walletID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetMyWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWalletByUser(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	return utils.Success(c, fiber.Map{"wallet": w})
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	w, err := h.walletService.GetWallet(c.Context(), walletID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	currency := c.Query("currency", w.DefaultCurrency)
	return utils.Success(c, fiber.Map{
		"wallet_id": w.ID,
		"currency":  currency,
		"balance":   w.AvailableBalance(currency),
	})
}

func (h *WalletHandler) SetLimits(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	var input struct {
		DailyTransferLimit   *decimal.Decimal `json:"daily_transfer_limit"`
		DailyWithdrawalLimit *decimal.Decimal `json:"daily_withdrawal_limit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	if input.DailyTransferLimit != nil {
		if err := h.walletService.SetDailyTransferLimit(c.Context(), walletID, *input.DailyTransferLimit); err != nil {
			return h.limitError(c, err)
		}
	}
	if input.DailyWithdrawalLimit != nil {
		if err := h.walletService.SetDailyWithdrawalLimit(c.Context(), walletID, *input.DailyWithdrawalLimit); err != nil {
			return h.limitError(c, err)
		}
	}

	return utils.Success(c, fiber.Map{"message": "Limits updated"})
}

func (h *WalletHandler) limitError(c *fiber.Ctx, err error) error {
	if errors.Is(err, wallet.ErrWalletNotFound) {
		return utils.NotFound(c, "Wallet not found")
	}
	return utils.InternalError(c, "Failed to update limits")
}

func (h *WalletHandler) Deactivate(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return utils.BadRequest(c, "Invalid request format")
	}

	if err := h.walletService.Deactivate(c.Context(), walletID, input.Reason); err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to deactivate wallet")
	}
	return utils.Success(c, fiber.Map{"message": "Wallet deactivated"})
}

func (h *WalletHandler) Activate(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	if err := h.walletService.Activate(c.Context(), walletID); err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to activate wallet")
	}
	return utils.Success(c, fiber.Map{"message": "Wallet activated"})
}
