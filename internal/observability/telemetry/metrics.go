package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métricas do estoque
	LedgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_ledger_operations_total",
		Help: "Total de mutações de nível de tanque por operação e resultado",
	}, []string{"op", "result"})

	StockRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_stock_rejections_total",
		Help: "Mutações rejeitadas por violar 0 <= nível <= capacidade",
	}, []string{"reason"})

	VersionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sigec_tank_version_conflicts_total",
		Help: "Falhas de compare-and-swap por versão desatualizada",
	})

	TankLevelLitres = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sigec_tank_level_litres",
		Help: "Último nível confirmado de cada tanque",
	}, []string{"station_id", "tank_id"})

	// Métricas de alertas
	AlertsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_alerts_created_total",
		Help: "Alertas criados por tipo e prioridade",
	}, []string{"type", "priority"})

	AlertsResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_alerts_resolved_total",
		Help: "Alertas resolvidos por tipo e origem (manual ou automática)",
	}, []string{"type", "source"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigec_alert_sweep_duration_seconds",
		Help:    "Duração de uma varredura completa de regras",
		Buckets: prometheus.DefBuckets,
	})

	SweepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_alert_sweep_failures_total",
		Help: "Entidades que falharam durante a varredura, por regra",
	}, []string{"check"})

	// Métricas de fechamento de caixa
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_reconciliations_total",
		Help: "Fechamentos de caixa por resultado",
	}, []string{"result"})

	ReconciliationVariance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigec_reconciliation_variance_abs",
		Help:    "Valor absoluto da diferença de caixa no fechamento",
		Buckets: []float64{0, 100, 500, 1000, 5000, 10000, 50000, 100000},
	})

	// Métricas de infraestrutura
	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sigec_database_tx_duration_seconds",
		Help:    "Duração das transações no banco",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_http_requests_total",
		Help: "Requisições HTTP por rota, método e status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigec_http_request_duration_seconds",
		Help:    "Latência das requisições HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_grpc_requests_total",
		Help: "Chamadas gRPC por método e código",
	}, []string{"method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigec_grpc_request_duration_seconds",
		Help:    "Latência das chamadas gRPC",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigec_alert_notifications_total",
		Help: "Notificações de alerta enviadas por canal e resultado",
	}, []string{"channel", "result"})
)

// Result turns an error into a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
