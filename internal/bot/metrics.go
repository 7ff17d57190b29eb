package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики торгового ядра
// ============================================================

// ============ Метрики цикла ============

// CycleDuration - длительность полного цикла переоценки
var CycleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "coinbot",
		Subsystem: "cycle",
		Name:      "duration_seconds",
		Help:      "Duration of a full re-evaluation cycle in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	},
)

// CyclesTotal - количество завершенных циклов
var CyclesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "cycle",
		Name:      "completed_total",
		Help:      "Total number of completed re-evaluation cycles",
	},
)

// CyclesSkipped - пропущенные тики (предыдущий цикл еще выполнялся)
var CyclesSkipped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "cycle",
		Name:      "skipped_total",
		Help:      "Number of ticks skipped because the previous cycle was still running",
	},
)

// ============ Метрики анализа ============

// AnalysisScore - распределение очков скоринга по инструментам
var AnalysisScore = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "coinbot",
		Subsystem: "analysis",
		Name:      "score",
		Help:      "Signal score distribution per symbol",
		Buckets:   []float64{0, 1, 2, 3, 4},
	},
	[]string{"symbol"},
)

// AnalysesTotal - количество анализов по инструменту и режиму рынка
var AnalysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "analysis",
		Name:      "completed_total",
		Help:      "Total number of completed analyses",
	},
	[]string{"symbol", "regime"},
)

// DataErrors - деградации анализа в HOLD из-за сбоя данных
var DataErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "analysis",
		Name:      "data_errors_total",
		Help:      "Number of analyses degraded to HOLD due to data failures",
	},
	[]string{"symbol"},
)

// ============ Метрики допуска ============

// RejectionsTotal - отклоненные входы по классам
var RejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "portfolio",
		Name:      "rejections_total",
		Help:      "Number of entry candidates rejected by the coordinator",
	},
	[]string{"symbol", "kind"},
)

// OpenPositions - текущее количество открытых позиций
var OpenPositions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "coinbot",
		Subsystem: "portfolio",
		Name:      "open_positions",
		Help:      "Current number of open positions",
	},
)

// AggregateRiskGauge - текущий суммарный зафиксированный риск
var AggregateRiskGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "coinbot",
		Subsystem: "portfolio",
		Name:      "aggregate_risk",
		Help:      "Sum of committed risk across open positions",
	},
)

// ============ Метрики исполнения ============

// ExecutionsTotal - исполнения по действию и исходу
var ExecutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "execution",
		Name:      "orders_total",
		Help:      "Total number of execution attempts",
	},
	[]string{"action", "result"}, // result: success, failed
)

// ExecutionLatency - время исполнения заявки на бирже
var ExecutionLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "coinbot",
		Subsystem: "execution",
		Name:      "latency_ms",
		Help:      "Time to execute an order on the exchange in milliseconds",
		Buckets:   []float64{50, 100, 200, 300, 500, 1000, 2000, 5000, 10000},
	},
	[]string{"action"},
)

// PnlTotal - суммарный реализованный PNL в котируемой валюте
var PnlTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "execution",
		Name:      "pnl_total",
		Help:      "Total realized PnL in quote currency",
	},
)

// StopLossTriggered - срабатывания стоп-лосса
var StopLossTriggered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "coinbot",
		Subsystem: "risk",
		Name:      "stop_loss_triggered_total",
		Help:      "Number of stop loss triggers",
	},
	[]string{"symbol"},
)

// ============ Вспомогательные функции ============

// RecordAnalysis записывает результат анализа инструмента
func RecordAnalysis(symbol, regime string, score int) {
	AnalysesTotal.WithLabelValues(symbol, regime).Inc()
	AnalysisScore.WithLabelValues(symbol).Observe(float64(score))
}

// RecordDataError записывает деградацию анализа в HOLD
func RecordDataError(symbol string) {
	DataErrors.WithLabelValues(symbol).Inc()
}

// RecordRejection записывает отклонение входа координатором
func RecordRejection(symbol, kind string) {
	RejectionsTotal.WithLabelValues(symbol, kind).Inc()
}

// RecordExecution записывает попытку исполнения заявки
func RecordExecution(action string, success bool, latencyMs float64) {
	result := "success"
	if !success {
		result = "failed"
	}
	ExecutionsTotal.WithLabelValues(action, result).Inc()
	ExecutionLatency.WithLabelValues(action).Observe(latencyMs)
}

// RecordCycle записывает завершенный цикл переоценки
func RecordCycle(durationSec float64, openCount int, aggregateRisk float64) {
	CyclesTotal.Inc()
	CycleDuration.Observe(durationSec)
	OpenPositions.Set(float64(openCount))
	AggregateRiskGauge.Set(aggregateRisk)
}
