package models

import "time"

// Recommendation представляет кандидат-действие анализатора по инструменту
type Recommendation struct {
	Symbol    string  `json:"symbol"`
	Cycle     int64   `json:"cycle"`
	Action    string  `json:"action"` // ENTER, SCALE_OUT_50, EXIT_FULL, HOLD
	Reason    string  `json:"reason"`
	Score     int     `json:"score"`
	Regime    string  `json:"regime"`
	RefPrice  float64 `json:"ref_price"`
	Quantity  float64 `json:"quantity"`      // для ENTER: планируемый размер
	StopLoss  float64 `json:"stop_loss"`     // для ENTER
	Target1   float64 `json:"first_target"`  // для ENTER
	Target2   float64 `json:"second_target"` // для ENTER
	TrailStop float64 `json:"trail_stop,omitempty"` // кандидат трейлинг-стопа для открытой позиции
	LastClose float64 `json:"last_close,omitempty"` // close последней свечи (для трейлинга)
	Err       string  `json:"error,omitempty"` // аннотация при деградации в HOLD
}

// Действия
const (
	ActionEnter      = "ENTER"
	ActionScaleOut50 = "SCALE_OUT_50"
	ActionExitFull   = "EXIT_FULL"
	ActionHold       = "HOLD"
)

// Причины действий
const (
	ReasonSignal     = "SIGNAL"       // вход по скорингу
	ReasonStopLoss   = "STOP_LOSS"    // пробой стопа
	ReasonTarget1    = "TARGET_1"     // достигнут первый тейк
	ReasonTarget2    = "TARGET_2"     // достигнут второй тейк
	ReasonDataError  = "DATA_ERROR"   // деградация в HOLD из-за сбоя данных
	ReasonNoAction   = "NO_ACTION"
)

// IsExit возвращает true для действий, сокращающих риск
func (r *Recommendation) IsExit() bool {
	return r.Action == ActionScaleOut50 || r.Action == ActionExitFull
}

// RewardToRisk возвращает прогнозное отношение прибыли к риску для входа.
// Используется координатором как второй ключ ранжирования.
func (r *Recommendation) RewardToRisk() float64 {
	risk := r.RefPrice - r.StopLoss
	if risk <= 0 {
		return 0
	}
	return (r.Target2 - r.RefPrice) / risk
}

// ExecutionRequest представляет допущенную к исполнению заявку
type ExecutionRequest struct {
	Symbol   string  `json:"symbol"`
	Cycle    int64   `json:"cycle"`
	Action   string  `json:"action"`
	Reason   string  `json:"reason"`
	RefPrice float64 `json:"ref_price"`
	Quantity float64 `json:"quantity"`
	StopLoss float64 `json:"stop_loss"`
	Target1  float64 `json:"first_target"`
	Target2  float64 `json:"second_target"`
}

// ExecutionResult представляет исход исполнения заявки
type ExecutionResult struct {
	Request     ExecutionRequest `json:"request"`
	Success     bool             `json:"success"`
	FilledPrice float64          `json:"filled_price"`
	FilledQty   float64          `json:"filled_qty"`
	Fee         float64          `json:"fee"`
	RealizedPnl float64          `json:"realized_pnl"` // только при закрытии
	ErrorKind   string           `json:"error_kind,omitempty"`
	ExecutedAt  time.Time        `json:"executed_at"`
}

// Классы ошибок исполнения и допуска (см. цикл-отчет)
const (
	ErrKindDataUnavailable  = "DATA_UNAVAILABLE"
	ErrKindStaleTransition  = "STALE_TRANSITION"
	ErrKindExecutionReject  = "EXECUTION_REJECTED"
	ErrKindExecutionTimeout = "EXECUTION_TIMEOUT"
	ErrKindRiskLimit        = "RISK_LIMIT_EXCEEDED"
	ErrKindCircuitBreaker   = "DAILY_CIRCUIT_BREAKER"
	ErrKindPersistence      = "PERSISTENCE_FAILURE"
)
