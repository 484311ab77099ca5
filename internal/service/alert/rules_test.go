package alert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLowStock(t *testing.T) {
	th := domain.DefaultAlertThresholds()

	tests := []struct {
		name      string
		level     string
		threshold string
		want      domain.AlertPriority
	}{
		{"full tank", "10000", "2000", ""},
		{"just above threshold", "2000.001", "2000", ""},
		{"exactly at threshold", "2000", "2000", domain.AlertPriorityHigh},
		{"eleven percent", "1100", "2000", domain.AlertPriorityHigh},
		{"ten percent is critical", "1000", "2000", domain.AlertPriorityCritical},
		{"empty", "0", "2000", domain.AlertPriorityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tank := &domain.Tank{ID: "t1", CurrentLevel: d(tt.level), Capacity: d("10000"), LowThreshold: d(tt.threshold)}
			got := LowStock(tank, th)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no alert, got %+v", got)
				}
				if !LowStockCleared(tank) {
					t.Error("expected condition to be cleared")
				}
				return
			}
			if got == nil {
				t.Fatal("expected alert, got nil")
			}
			if got.Priority != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Priority)
			}
		})
	}
}

func TestShiftDuration(t *testing.T) {
	th := domain.DefaultAlertThresholds()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status domain.ShiftStatus
		open   time.Duration
		want   domain.AlertPriority
	}{
		{"short shift", domain.ShiftStatusOpen, 8 * time.Hour, ""},
		{"exactly max", domain.ShiftStatusOpen, 12 * time.Hour, ""},
		{"over max", domain.ShiftStatusOpen, 13 * time.Hour, domain.AlertPriorityMedium},
		{"over block", domain.ShiftStatusOpen, 17 * time.Hour, domain.AlertPriorityHigh},
		{"closed shift never alerts", domain.ShiftStatusClosed, 30 * time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := &domain.Shift{ID: "s1", Status: tt.status, StartedAt: now.Add(-tt.open)}
			got := ShiftDuration(shift, th, now)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no alert, got %+v", got)
				}
				return
			}
			if got == nil || got.Priority != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, got)
			}
		})
	}
}

func TestCashVariance(t *testing.T) {
	th := domain.DefaultAlertThresholds()

	tests := []struct {
		name     string
		expected string
		variance string
		want     domain.AlertPriority
	}{
		{"balanced", "100000", "0", ""},
		{"under tolerance", "100000", "-999", ""},
		{"at one percent", "100000", "-1000", domain.AlertPriorityMedium},
		{"positive variance counts", "100000", "2000", domain.AlertPriorityMedium},
		{"five percent is high", "100000", "-5000", domain.AlertPriorityHigh},
		{"absolute threshold on a large register", "1000000", "5000", domain.AlertPriorityMedium},
		{"block threshold", "10000000", "-50000", domain.AlertPriorityHigh},
		{"zero expected uses absolute rule only", "0", "4999", ""},
		{"zero expected over absolute", "0", "6000", domain.AlertPriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variance := d(tt.variance)
			reg := &domain.CashRegister{
				ShiftID:       "s1",
				ExpectedTotal: d(tt.expected),
				ActualTotal:   d(tt.expected).Add(variance),
				Variance:      variance,
			}
			got := CashVariance(reg, th)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no alert, got %+v", got)
				}
				return
			}
			if got == nil || got.Priority != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, got)
			}
		})
	}
}

func TestIndexVariance(t *testing.T) {
	th := domain.DefaultAlertThresholds()

	tests := []struct {
		name  string
		start string
		end   string
		sold  string
		want  domain.AlertPriority
	}{
		{"match", "1000", "2000", "1000", ""},
		{"percent crossed but under five units", "0", "200", "197", ""},
		{"units crossed but under one percent", "0", "10000", "9990", ""},
		{"both crossed", "0", "1000", "990", domain.AlertPriorityMedium},
		{"three percent is high", "0", "1000", "970", domain.AlertPriorityHigh},
		{"fifty units is high", "0", "5000", "4950", domain.AlertPriorityHigh},
		{"meter zero uses sold as base", "500", "500", "40", domain.AlertPriorityHigh},
		{"nothing dispensed", "500", "500", "0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := d(tt.end)
			shift := &domain.Shift{ID: "s1", MeterIndexStart: d(tt.start), MeterIndexEnd: &end}
			got := IndexVariance(shift, d(tt.sold), th)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no alert, got %+v", got)
				}
				return
			}
			if got == nil || got.Priority != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, got)
			}
		})
	}

	t.Run("open shift without end index", func(t *testing.T) {
		shift := &domain.Shift{ID: "s1", MeterIndexStart: d("100")}
		if got := IndexVariance(shift, d("50"), th); got != nil {
			t.Fatalf("expected no alert, got %+v", got)
		}
	})
}

func TestCreditLimitHysteresis(t *testing.T) {
	th := domain.DefaultAlertThresholds()

	tests := []struct {
		name    string
		balance string
		raise   domain.AlertPriority
		cleared bool
	}{
		{"well below", "5000", "", true},
		{"just under lower edge", "6999.99", "", true},
		{"lower edge of band", "7000", "", false},
		{"inside band", "7500", "", false},
		{"just under warning", "7999.99", "", false},
		{"warning edge", "8000", domain.AlertPriorityMedium, false},
		{"at limit", "10000", domain.AlertPriorityHigh, false},
		{"over limit", "12000", domain.AlertPriorityHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &domain.Client{ID: "c1", Name: "Transports Kaba", CreditLimit: d("10000"), CurrentBalance: d(tt.balance)}

			got := CreditLimit(client, th)
			if tt.raise == "" && got != nil {
				t.Errorf("expected no alert, got %+v", got)
			}
			if tt.raise != "" && (got == nil || got.Priority != tt.raise) {
				t.Errorf("expected %s, got %+v", tt.raise, got)
			}
			if cleared := CreditCleared(client, th); cleared != tt.cleared {
				t.Errorf("expected cleared=%v, got %v", tt.cleared, cleared)
			}
		})
	}
}

func TestCreditLimit_ConfigurableMargin(t *testing.T) {
	th := domain.DefaultAlertThresholds()
	th.CreditHysteresis = d("25")
	client := &domain.Client{ID: "c1", CreditLimit: d("100"), CurrentBalance: d("60")}

	if CreditCleared(client, th) {
		t.Error("60% is inside an 80-25 band and must not clear")
	}
	client.CurrentBalance = d("54.99")
	if !CreditCleared(client, th) {
		t.Error("54.99% is below 55% and must clear")
	}
}

func TestCreditLimit_NoLimitSkipped(t *testing.T) {
	th := domain.DefaultAlertThresholds()
	client := &domain.Client{ID: "c1", CreditLimit: decimal.Zero, CurrentBalance: d("500")}

	if CreditLimit(client, th) != nil {
		t.Error("client without a limit must not alert")
	}
	if CreditCleared(client, th) {
		t.Error("client without a limit must not auto-resolve")
	}
}

func TestMaintenance(t *testing.T) {
	th := domain.DefaultAlertThresholds()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)

	tests := []struct {
		name      string
		scheduled time.Time
		completed *time.Time
		want      domain.AlertPriority
	}{
		{"far future", now.Add(10 * 24 * time.Hour), nil, ""},
		{"inside lookahead", now.Add(5 * 24 * time.Hour), nil, domain.AlertPriorityLow},
		{"two days out", now.Add(48 * time.Hour), nil, domain.AlertPriorityMedium},
		{"tomorrow", now.Add(20 * time.Hour), nil, domain.AlertPriorityMedium},
		{"overdue", now.Add(-time.Hour), nil, domain.AlertPriorityHigh},
		{"completed", now.Add(-time.Hour), &done, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &domain.MaintenanceSchedule{ID: "m1", Equipment: "pump 3", ScheduledAt: tt.scheduled, CompletedAt: tt.completed}
			got := Maintenance(m, th, now)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no alert, got %+v", got)
				}
				return
			}
			if got == nil || got.Priority != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, got)
			}
		})
	}
}
