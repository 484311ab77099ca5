package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type TankHandler struct {
	service ports.InventoryService
	log     *zap.Logger
}

func NewTankHandler(service ports.InventoryService, log *zap.Logger) *TankHandler {
	return &TankHandler{
		service: service,
		log:     log,
	}
}

func (h *TankHandler) Get(c *fiber.Ctx) error {
	tank, err := h.service.GetTank(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tank)
}

func (h *TankHandler) ListByStation(c *fiber.Ctx) error {
	tanks, err := h.service.ListTanks(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tanks)
}

type DeliveryRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	SupplierRef string          `json:"supplier_ref"`
	DeliveredAt time.Time       `json:"delivered_at"`
}

func (h *TankHandler) ReceiveDelivery(c *fiber.Ctx) error {
	var req DeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	res, err := h.service.ReceiveDelivery(c.UserContext(), &ports.DeliveryRequest{
		TankID:      c.Params("id"),
		Quantity:    req.Quantity,
		SupplierRef: req.SupplierRef,
		DeliveredAt: req.DeliveredAt,
		CreatedBy:   middleware.UserID(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

type AdjustRequest struct {
	Level  decimal.Decimal `json:"level"`
	Reason string          `json:"reason"`
}

func (h *TankHandler) Adjust(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if req.Reason == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "reason is required")
	}

	tank, err := h.service.AdjustLevel(c.UserContext(), c.Params("id"), req.Level, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(tank)
}

type PatchRequest struct {
	Version int64 `json:"version"`
	domain.TankPatch
}

// Patch applies a version-guarded update. A stale version answers 409 and the
// client re-reads before retrying.
func (h *TankHandler) Patch(c *fiber.Ctx) error {
	var req PatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	tank, err := h.service.CompareAndSwapLevel(c.UserContext(), c.Params("id"), req.Version, req.TankPatch)
	if err != nil {
		return err
	}
	return c.JSON(tank)
}

func (h *TankHandler) RecordSale(c *fiber.Ctx) error {
	var req ports.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	res, err := h.service.RecordSale(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
