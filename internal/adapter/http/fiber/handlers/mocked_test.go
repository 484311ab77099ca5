package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/mocks"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

func newMockedApp(inv *mocks.MockInventoryService, alerts *mocks.MockAlertService, shifts *mocks.MockShiftService, recon *mocks.MockReconciliationService) *fiber.App {
	log := zap.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	h := &Handlers{
		Tanks:  NewTankHandler(inv, log),
		Alerts: NewAlertHandler(alerts, nil, log),
		Shifts: NewShiftHandler(shifts, recon, log),
	}
	h.Register(app.Group("/api/v1", middleware.AuthRequired(testJWT, log)))
	return app
}

func TestHandlers_ForwardActorAndParameters(t *testing.T) {
	// Arrange
	var validatedID, validatedBy string
	var closeReq *ports.CloseRequest
	var listFilter domain.AlertFilter
	var closedIndex decimal.Decimal

	shifts := &mocks.MockShiftService{
		ValidateFunc: func(ctx context.Context, id, userID string) (*domain.Shift, error) {
			validatedID, validatedBy = id, userID
			return &domain.Shift{ID: id, Status: domain.ShiftStatusValidated}, nil
		},
		CloseFunc: func(ctx context.Context, id string, meterIndexEnd decimal.Decimal) (*domain.Shift, error) {
			closedIndex = meterIndexEnd
			return &domain.Shift{ID: id, Status: domain.ShiftStatusClosed}, nil
		},
	}
	recon := &mocks.MockReconciliationService{
		CloseFunc: func(ctx context.Context, req *ports.CloseRequest) (*ports.CloseResult, error) {
			closeReq = req
			return &ports.CloseResult{}, nil
		},
	}
	alerts := &mocks.MockAlertService{
		ListFunc: func(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
			listFilter = filter
			return nil, nil
		},
	}
	app := newMockedApp(&mocks.MockInventoryService{}, alerts, shifts, recon)

	// Act
	validateResp, _ := do(t, app, http.MethodPost, "/api/v1/shifts/shift-9/validate", "")
	closeResp, _ := do(t, app, http.MethodPost, "/api/v1/shifts/shift-9/close", `{"meter_index_end":"1234.5"}`)
	registerResp, _ := do(t, app, http.MethodPost, "/api/v1/shifts/shift-9/cash-register",
		`{"declared":[{"payment_method_id":"cash","amount":"100"}],"create_debt_on_negative_variance":true}`)
	listResp, _ := do(t, app, http.MethodGet, "/api/v1/alerts?station_id=station-1&status=ACTIVE,%20ACKNOWLEDGED&limit=10", "")

	// Assert
	if validateResp.StatusCode != fiber.StatusOK || validatedID != "shift-9" || validatedBy != "manager-1" {
		t.Errorf("validate: status %d, got (%q, %q)", validateResp.StatusCode, validatedID, validatedBy)
	}
	if closeResp.StatusCode != fiber.StatusOK || !closedIndex.Equal(decimal.RequireFromString("1234.5")) {
		t.Errorf("close: status %d, index %s", closeResp.StatusCode, closedIndex)
	}
	if registerResp.StatusCode != fiber.StatusCreated || closeReq == nil {
		t.Fatalf("register: status %d", registerResp.StatusCode)
	}
	if closeReq.ShiftID != "shift-9" || closeReq.ClosedBy != "manager-1" || !closeReq.CreateDebtOnNegativeVariance {
		t.Errorf("register: unexpected request %+v", closeReq)
	}
	if listResp.StatusCode != fiber.StatusOK {
		t.Fatalf("list: status %d", listResp.StatusCode)
	}
	if listFilter.StationID != "station-1" || listFilter.Limit != 10 || len(listFilter.Statuses) != 2 ||
		listFilter.Statuses[1] != domain.AlertStatusAcknowledged {
		t.Errorf("list: unexpected filter %+v", listFilter)
	}
}

func TestHandlers_UnexpectedErrorIs500(t *testing.T) {
	inv := &mocks.MockInventoryService{
		GetTankFunc: func(ctx context.Context, id string) (*domain.Tank, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	recon := &mocks.MockReconciliationService{}
	app := newMockedApp(inv, &mocks.MockAlertService{}, &mocks.MockShiftService{}, recon)

	resp, _ := do(t, app, http.MethodGet, "/api/v1/tanks/tank-1", "")
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}

	// The mock reconciliation reports no register by default.
	resp, _ = do(t, app, http.MethodGet, "/api/v1/shifts/shift-1/cash-register", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
