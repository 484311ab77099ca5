package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

var alertTmpl = template.Must(template.New("alert").Parse(alertTemplate))

// AlertNotifier e-mails alerts to a fixed recipient list. Calls go through a
// circuit breaker so a provider outage fails fast instead of stalling the
// alert subscriber.
type AlertNotifier struct {
	sender     ports.EmailService
	recipients []string
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewAlertNotifier(sender ports.EmailService, recipients []string, baseURL string, bs circuitbreaker.Settings, log *zap.Logger) *AlertNotifier {
	if bs.Name == "" {
		bs.Name = "alert-email"
	}
	cb := circuitbreaker.New(bs, log)

	return &AlertNotifier{
		sender:     sender,
		recipients: recipients,
		baseURL:    baseURL,
		cb:         cb,
		log:        log,
	}
}

var _ ports.AlertNotifier = (*AlertNotifier)(nil)

// NotifyAlert sends the alert to every recipient. The first delivery error is
// returned after all recipients were tried.
func (n *AlertNotifier) NotifyAlert(ctx context.Context, alert *domain.Alert) error {
	if len(n.recipients) == 0 {
		return nil
	}

	body, err := n.render(alert)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[%s] %s", alert.Priority, alert.Title)

	var firstErr error
	for _, to := range n.recipients {
		_, err := n.cb.Execute(func() (interface{}, error) {
			return nil, n.sender.Send(ctx, to, subject, body)
		})
		telemetry.NotificationsTotal.WithLabelValues("email", notifyResult(err)).Inc()
		if err != nil {
			n.log.Warn("Alert e-mail not delivered",
				zap.String("alert_id", alert.ID),
				zap.String("to", to),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// State exposes the breaker state for health reporting.
func (n *AlertNotifier) State() string {
	return n.cb.State().String()
}

func (n *AlertNotifier) render(alert *domain.Alert) (string, error) {
	data := map[string]interface{}{
		"AlertID":     alert.ID,
		"Title":       alert.Title,
		"Message":     alert.Message,
		"Priority":    string(alert.Priority),
		"Type":        string(alert.Type),
		"StationID":   alert.StationID,
		"TriggeredAt": alert.TriggeredAt.Format("2006-01-02 15:04:05"),
		"Critical":    alert.Priority == domain.AlertPriorityCritical,
		"BaseURL":     n.baseURL,
	}

	var buf bytes.Buffer
	if err := alertTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func notifyResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case circuitbreaker.IsShortCircuit(err):
		return "short_circuit"
	}
	return "error"
}
