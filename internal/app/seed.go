package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/adapter/storage/memory"
	"github.com/seu-repo/sigec-posto/internal/domain"
)

// DemoStationID is the station created by SeedDemo.
const DemoStationID = "station-demo"

// SeedDemo fills an in-memory store with one station's reference data so a
// local run has something to operate on.
func SeedDemo(store *memory.Store, now time.Time) {
	store.PutUser(domain.User{ID: "manager-demo", Name: "Gerant", Role: domain.UserRoleManager, StationID: DemoStationID, Status: "Active"})
	store.PutUser(domain.User{ID: "attendant-demo", Name: "Pompiste", Role: domain.UserRoleAttendant, StationID: DemoStationID, Status: "Active"})

	store.PutTank(domain.Tank{
		ID: "tank-gasoil", StationID: DemoStationID, Name: "Gasoil", FuelType: "DIESEL",
		CurrentLevel: decimal.NewFromInt(12000), Capacity: decimal.NewFromInt(30000),
		LowThreshold: decimal.NewFromInt(5000), Active: true, CreatedAt: now, UpdatedAt: now,
	})
	store.PutTank(domain.Tank{
		ID: "tank-super", StationID: DemoStationID, Name: "Super", FuelType: "GASOLINE",
		CurrentLevel: decimal.NewFromInt(2500), Capacity: decimal.NewFromInt(20000),
		LowThreshold: decimal.NewFromInt(3000), Active: true, CreatedAt: now, UpdatedAt: now,
	})

	store.PutPaymentMethod(domain.PaymentMethod{ID: "pm-cash", Code: "CASH", Name: "Especes", Active: true})
	store.PutPaymentMethod(domain.PaymentMethod{ID: "pm-card", Code: "CARD", Name: "Carte", Active: true})
	store.PutPaymentMethod(domain.PaymentMethod{ID: "pm-mobile", Code: "MOBILE", Name: "Mobile money", Active: true})

	store.PutShift(domain.Shift{
		ID: "shift-demo", StationID: DemoStationID, AttendantID: "attendant-demo", NozzleID: "nozzle-1",
		TankID: "tank-gasoil", Status: domain.ShiftStatusOpen, StartedAt: now,
		MeterIndexStart: decimal.NewFromInt(150000), CreatedAt: now, UpdatedAt: now,
	})

	store.PutClient(domain.Client{
		ID: "client-transport", StationID: DemoStationID, Name: "Transports Diallo",
		CreditLimit: decimal.NewFromInt(1000000), CurrentBalance: decimal.NewFromInt(850000),
		Active: true, CreatedAt: now, UpdatedAt: now,
	})
	store.PutMaintenance(domain.MaintenanceSchedule{
		ID: "maint-pump-1", StationID: DemoStationID, Equipment: "Pompe 1",
		ScheduledAt: now.Add(36 * time.Hour), CreatedAt: now,
	})
}
