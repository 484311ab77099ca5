package alert

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-posto/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Decision is what a rule asks the engine to raise.
type Decision struct {
	Priority domain.AlertPriority
	Title    string
	Message  string
}

// LowStock fires when the level is at or below the tank's low threshold.
func LowStock(t *domain.Tank, th *domain.AlertThresholds) *Decision {
	if t.CurrentLevel.GreaterThan(t.LowThreshold) {
		return nil
	}

	pct := t.FillPercent()
	priority := domain.AlertPriorityHigh
	if pct.LessThanOrEqual(th.LowStockPercent.Div(decimal.NewFromInt(2))) {
		priority = domain.AlertPriorityCritical
	}

	return &Decision{
		Priority: priority,
		Title:    fmt.Sprintf("Low stock: %s", tankLabel(t)),
		Message: fmt.Sprintf("Tank %s holds %s of %s (%s%%), threshold %s",
			tankLabel(t), t.CurrentLevel.String(), t.Capacity.String(),
			pct.StringFixed(1), t.LowThreshold.String()),
	}
}

// LowStockCleared reports whether LOW_STOCK alerts for t may be resolved.
func LowStockCleared(t *domain.Tank) bool {
	return t.CurrentLevel.GreaterThan(t.LowThreshold)
}

// ShiftDuration fires for OPEN shifts started more than ShiftMaxHours ago.
func ShiftDuration(s *domain.Shift, th *domain.AlertThresholds, now time.Time) *Decision {
	if s.Status != domain.ShiftStatusOpen {
		return nil
	}
	hours := s.OpenHours(now)
	if hours <= th.ShiftMaxHours {
		return nil
	}

	priority := domain.AlertPriorityMedium
	if hours > th.ShiftBlockHours {
		priority = domain.AlertPriorityHigh
	}

	return &Decision{
		Priority: priority,
		Title:    "Shift open too long",
		Message: fmt.Sprintf("Shift %s (attendant %s) has been open for %.1f hours, limit %.0f",
			s.ID, s.AttendantID, hours, th.ShiftMaxHours),
	}
}

// CashVariance fires when the register variance crosses either the relative
// tolerance or the absolute threshold. With an expected total of zero only
// the absolute rule applies.
func CashVariance(r *domain.CashRegister, th *domain.AlertThresholds) *Decision {
	abs := r.Variance.Abs()
	if abs.IsZero() {
		return nil
	}

	var pct decimal.Decimal
	hasPct := r.ExpectedTotal.IsPositive()
	if hasPct {
		pct = abs.Div(r.ExpectedTotal).Mul(hundred)
	}

	triggered := abs.GreaterThanOrEqual(th.CashAbsoluteThreshold) ||
		(hasPct && pct.GreaterThanOrEqual(th.CashTolerancePercent))
	if !triggered {
		return nil
	}

	priority := domain.AlertPriorityMedium
	if abs.GreaterThanOrEqual(th.CashBlockThreshold) || (hasPct && pct.GreaterThanOrEqual(th.CashHighPercent)) {
		priority = domain.AlertPriorityHigh
	}

	msg := fmt.Sprintf("Register for shift %s: expected %s, declared %s, variance %s",
		r.ShiftID, r.ExpectedTotal.StringFixed(2), r.ActualTotal.StringFixed(2), r.Variance.StringFixed(2))
	if hasPct {
		msg += fmt.Sprintf(" (%s%%)", pct.StringFixed(2))
	}

	return &Decision{
		Priority: priority,
		Title:    "Cash variance",
		Message:  msg,
	}
}

// IndexVariance compares the volume read on the nozzle meter with the volume
// sold during the shift. Both bands (percent and units) must be crossed. The
// percent base is the meter volume, or the sold volume when the meter shows
// nothing.
func IndexVariance(s *domain.Shift, soldVolume decimal.Decimal, th *domain.AlertThresholds) *Decision {
	if s.MeterIndexEnd == nil {
		return nil
	}

	meter := s.MeterVolume()
	base := meter
	if !base.IsPositive() {
		base = soldVolume
	}
	if !base.IsPositive() {
		return nil
	}

	diff := meter.Sub(soldVolume).Abs()
	pct := diff.Div(base).Mul(hundred)
	if pct.LessThan(th.IndexMinPercent) || diff.LessThan(th.IndexMinUnits) {
		return nil
	}

	priority := domain.AlertPriorityMedium
	if pct.GreaterThanOrEqual(th.IndexHighPercent) || diff.GreaterThanOrEqual(th.IndexHighUnits) {
		priority = domain.AlertPriorityHigh
	}

	return &Decision{
		Priority: priority,
		Title:    "Meter index variance",
		Message: fmt.Sprintf("Shift %s: meter volume %s, sold volume %s, difference %s (%s%%)",
			s.ID, meter.String(), soldVolume.String(), diff.String(), pct.StringFixed(2)),
	}
}

// CreditUsage returns balance/limit as a percentage. ok is false for clients
// without a positive limit.
func CreditUsage(c *domain.Client) (usage decimal.Decimal, ok bool) {
	if !c.CreditLimit.IsPositive() {
		return decimal.Zero, false
	}
	return c.CurrentBalance.Div(c.CreditLimit).Mul(hundred), true
}

// CreditLimit fires when usage reaches the warning percent.
func CreditLimit(c *domain.Client, th *domain.AlertThresholds) *Decision {
	usage, ok := CreditUsage(c)
	if !ok || usage.LessThan(th.CreditWarningPercent) {
		return nil
	}

	priority := domain.AlertPriorityMedium
	if usage.GreaterThanOrEqual(hundred) {
		priority = domain.AlertPriorityHigh
	}

	return &Decision{
		Priority: priority,
		Title:    fmt.Sprintf("Credit limit: %s", c.Name),
		Message: fmt.Sprintf("Client %s uses %s%% of credit (balance %s, limit %s)",
			c.Name, usage.StringFixed(1), c.CurrentBalance.StringFixed(2), c.CreditLimit.StringFixed(2)),
	}
}

// CreditCleared reports whether usage fell below the warning percent minus
// the hysteresis margin. Usage inside the band neither raises nor resolves.
func CreditCleared(c *domain.Client, th *domain.AlertThresholds) bool {
	usage, ok := CreditUsage(c)
	if !ok {
		return false
	}
	return usage.LessThan(th.CreditWarningPercent.Sub(th.CreditHysteresis))
}

// Maintenance fires for pending schedules inside the lookahead window or
// already overdue.
func Maintenance(m *domain.MaintenanceSchedule, th *domain.AlertThresholds, now time.Time) *Decision {
	if m.CompletedAt != nil {
		return nil
	}
	until := m.ScheduledAt.Sub(now)
	if until > th.MaintenanceLookahead {
		return nil
	}

	var priority domain.AlertPriority
	var msg string
	switch {
	case until < 0:
		priority = domain.AlertPriorityHigh
		msg = fmt.Sprintf("Maintenance of %s was due %s and is overdue", m.Equipment, m.ScheduledAt.Format(time.RFC3339))
	case until <= th.MaintenanceMediumAhead:
		priority = domain.AlertPriorityMedium
		msg = fmt.Sprintf("Maintenance of %s is due %s", m.Equipment, m.ScheduledAt.Format(time.RFC3339))
	default:
		priority = domain.AlertPriorityLow
		msg = fmt.Sprintf("Maintenance of %s is scheduled for %s", m.Equipment, m.ScheduledAt.Format(time.RFC3339))
	}

	return &Decision{
		Priority: priority,
		Title:    fmt.Sprintf("Maintenance due: %s", m.Equipment),
		Message:  msg,
	}
}

func tankLabel(t *domain.Tank) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
