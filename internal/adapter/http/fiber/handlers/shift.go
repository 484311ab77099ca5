package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type ShiftHandler struct {
	shifts         ports.ShiftService
	reconciliation ports.ReconciliationService
	log            *zap.Logger
}

func NewShiftHandler(shifts ports.ShiftService, reconciliation ports.ReconciliationService, log *zap.Logger) *ShiftHandler {
	return &ShiftHandler{
		shifts:         shifts,
		reconciliation: reconciliation,
		log:            log,
	}
}

type CloseShiftRequest struct {
	MeterIndexEnd decimal.Decimal `json:"meter_index_end"`
}

func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	var req CloseShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	shift, err := h.shifts.Close(c.UserContext(), c.Params("id"), req.MeterIndexEnd)
	if err != nil {
		return err
	}
	return c.JSON(shift)
}

func (h *ShiftHandler) Validate(c *fiber.Ctx) error {
	shift, err := h.shifts.Validate(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(shift)
}

type CloseRegisterRequest struct {
	Declared                     []ports.DeclaredAmount `json:"declared"`
	VarianceNote                 string                 `json:"variance_note"`
	CreateDebtOnNegativeVariance bool                   `json:"create_debt_on_negative_variance"`
}

func (h *ShiftHandler) CloseRegister(c *fiber.Ctx) error {
	var req CloseRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	res, err := h.reconciliation.Close(c.UserContext(), &ports.CloseRequest{
		ShiftID:                      c.Params("id"),
		ClosedBy:                     middleware.UserID(c),
		Declared:                     req.Declared,
		VarianceNote:                 req.VarianceNote,
		CreateDebtOnNegativeVariance: req.CreateDebtOnNegativeVariance,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ShiftHandler) GetRegister(c *fiber.Ctx) error {
	register, err := h.reconciliation.GetByShift(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(register)
}
