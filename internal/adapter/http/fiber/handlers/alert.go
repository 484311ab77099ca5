package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

// Sweeper runs one locked sweep on demand.
type Sweeper interface {
	SweepOnce(ctx context.Context) (*ports.RunResult, bool, error)
}

type AlertHandler struct {
	service ports.AlertService
	sweeper Sweeper
	log     *zap.Logger
}

func NewAlertHandler(service ports.AlertService, sweeper Sweeper, log *zap.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		sweeper: sweeper,
		log:     log,
	}
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := domain.AlertFilter{
		StationID: c.Query("station_id"),
		Type:      domain.AlertType(c.Query("type")),
		Limit:     c.QueryInt("limit", 50),
		Offset:    c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, domain.AlertStatus(strings.TrimSpace(s)))
		}
	}

	alerts, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(alerts)
}

func (h *AlertHandler) Get(c *fiber.Ctx) error {
	alert, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req ports.CreateAlertInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	alert, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(alert)
}

func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	alert, err := h.service.Acknowledge(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	alert, err := h.service.Resolve(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

func (h *AlertHandler) Ignore(c *fiber.Ctx) error {
	alert, err := h.service.Ignore(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

func (h *AlertHandler) Count(c *fiber.Ctx) error {
	stationID := c.Query("station_id")
	if stationID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "station_id is required")
	}

	count, err := h.service.CountActive(c.UserContext(), stationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"station_id": stationID, "active": count})
}

// Sweep triggers RunAllChecks. 202 means another replica holds the sweep lock.
func (h *AlertHandler) Sweep(c *fiber.Ctx) error {
	res, ran, err := h.sweeper.SweepOnce(c.UserContext())
	if err != nil {
		return err
	}
	if !ran {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "sweep already running"})
	}
	h.log.Info("Manual alert sweep",
		zap.String("user_id", middleware.UserID(c)),
		zap.Int64("alerts_created", res.AlertsCreated),
	)
	return c.JSON(res)
}
