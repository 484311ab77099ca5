package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers bundles the operator API.
type Handlers struct {
	Tanks  *TankHandler
	Alerts *AlertHandler
	Shifts *ShiftHandler
}

// Register mounts every operator route on r. Authentication is applied by the
// caller on r.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/tanks/:id", h.Tanks.Get)
	r.Patch("/tanks/:id", h.Tanks.Patch)
	r.Post("/tanks/:id/deliveries", h.Tanks.ReceiveDelivery)
	r.Post("/tanks/:id/adjust", h.Tanks.Adjust)
	r.Get("/stations/:id/tanks", h.Tanks.ListByStation)
	r.Post("/sales", h.Tanks.RecordSale)

	r.Get("/alerts", h.Alerts.List)
	r.Post("/alerts", h.Alerts.Create)
	r.Get("/alerts/count", h.Alerts.Count)
	r.Post("/alerts/sweep", h.Alerts.Sweep)
	r.Get("/alerts/:id", h.Alerts.Get)
	r.Post("/alerts/:id/acknowledge", h.Alerts.Acknowledge)
	r.Post("/alerts/:id/resolve", h.Alerts.Resolve)
	r.Post("/alerts/:id/ignore", h.Alerts.Ignore)

	r.Post("/shifts/:id/close", h.Shifts.Close)
	r.Post("/shifts/:id/validate", h.Shifts.Validate)
	r.Post("/shifts/:id/cash-register", h.Shifts.CloseRegister)
	r.Get("/shifts/:id/cash-register", h.Shifts.GetRegister)
}
