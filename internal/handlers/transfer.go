package handlers

import (
	"errors"

	"vaultpay/internal/locks"
	"vaultpay/internal/models"
	"vaultpay/internal/services/transfer"
	"vaultpay/internal/utils"
	"vaultpay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type TransferHandler struct {
	transferService transfer.Service
}

func NewTransferHandler(transferService transfer.Service) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	var req transfer.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if key := c.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	t, err := h.transferService.Transfer(c.Context(), req)
	if err != nil {
		return transferError(c, err)
	}
	return utils.Created(c, fiber.Map{"transfer": t})
}

func (h *TransferHandler) CreateExternalTransfer(c *fiber.Ctx) error {
	var req transfer.ExternalTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if key := c.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	t, err := h.transferService.TransferToExternal(c.Context(), req)
	if err != nil {
		return transferError(c, err)
	}
	return utils.Created(c, fiber.Map{"transfer": t})
}

func (h *TransferHandler) Deposit(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	var req transfer.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	req.WalletID = walletID
	if key := c.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	entry, err := h.transferService.Deposit(c.Context(), req)
	if err != nil {
		return transferError(c, err)
	}
	return utils.Created(c, fiber.Map{"transaction": entry})
}

func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	t, err := h.transferService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return utils.Success(c, fiber.Map{"transfer": t})
}

func (h *TransferHandler) CancelTransfer(c *fiber.Ctx) error {
	t, err := h.transferService.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return utils.Success(c, fiber.Map{"transfer": t})
}

func (h *TransferHandler) ResolveTransfer(c *fiber.Ctx) error {
	var input struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	t, err := h.transferService.Resolve(c.Context(), c.Params("id"), input.Approve, input.Reason)
	if err != nil {
		return transferError(c, err)
	}
	return utils.Success(c, fiber.Map{"transfer": t})
}

func (h *TransferHandler) ListWalletTransfers(c *fiber.Ctx) error {
	walletID, err := parseWalletID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid wallet id")
	}

	transfers, err := h.transferService.ListByWallet(c.Context(), walletID)
	if err != nil {
		return utils.InternalError(c, "Failed to list transfers")
	}
	return utils.Success(c, fiber.Map{"transfers": transfers})
}

func (h *TransferHandler) ListPendingReview(c *fiber.Ctx) error {
	transfers, err := h.transferService.ListPendingReview(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to list transfers")
	}
	return utils.Success(c, fiber.Map{"transfers": transfers})
}

// transferError maps orchestrator errors to HTTP responses.
func transferError(c *fiber.Ctx, err error) error {
	var validationErr *validation.Error
	var fraudErr *transfer.FraudBlockedError

	switch {
	case errors.As(err, &validationErr):
		return utils.UnprocessableEntity(c, validationErr.Message)
	case errors.As(err, &fraudErr):
		return utils.Forbidden(c, fraudErr.Error())
	case errors.Is(err, transfer.ErrTransferNotFound):
		return utils.NotFound(c, "Transfer not found")
	case errors.Is(err, transfer.ErrSelfTransfer),
		errors.Is(err, transfer.ErrMissingRecipient),
		errors.Is(err, models.ErrInvalidAmount):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrWalletInactive):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, transfer.ErrNotCancellable),
		errors.Is(err, transfer.ErrNotReviewable):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, locks.ErrLockContention):
		return utils.Respond(c, fiber.StatusServiceUnavailable, fiber.Map{"error": err.Error()})
	default:
		return utils.InternalError(c, err.Error())
	}
}
