package models

import "time"

// TradingSettings представляет торговые параметры бота.
// Снимок читается в начале каждого цикла и подменяется атомарно,
// перезапуск планировщика не требуется.
type TradingSettings struct {
	ID               int       `json:"id" db:"id"`
	Symbols          []string  `json:"symbols" db:"symbols"`                       // активный набор инструментов (2-3)
	MaxPositions     int       `json:"max_positions" db:"max_positions"`           // бюджет слотов
	MinScore         int       `json:"min_score" db:"min_score"`                   // порог входа, 0..4
	RiskCeiling      float64   `json:"risk_ceiling" db:"risk_ceiling"`             // потолок суммарного риска портфеля
	PositionQuote    float64   `json:"position_quote" db:"position_quote"`         // размер входа в котируемой валюте
	MaxDailyTrades   int       `json:"max_daily_trades" db:"max_daily_trades"`     // дневной лимит входов
	MaxDailyLoss     float64   `json:"max_daily_loss" db:"max_daily_loss"`         // дневной лимит убытка (абсолютный)
	MaxConsecLosses  int       `json:"max_consec_losses" db:"max_consec_losses"`   // подряд убыточных закрытий
	TargetMode       string    `json:"target_mode" db:"target_mode"`               // volatility, fixed
	StopATRMult      float64   `json:"stop_atr_mult" db:"stop_atr_mult"`           // множитель ATR для стопа
	Target1ATRMult   float64   `json:"target1_atr_mult" db:"target1_atr_mult"`
	Target2ATRMult   float64   `json:"target2_atr_mult" db:"target2_atr_mult"`
	StopPct          float64   `json:"stop_pct" db:"stop_pct"`                     // фиксированный стоп, %
	Target1Pct       float64   `json:"target1_pct" db:"target1_pct"`
	Target2Pct       float64   `json:"target2_pct" db:"target2_pct"`
	ScoreWeights     Weights   `json:"score_weights" db:"score_weights"`           // JSON в БД
	NotifyPrefs      NotificationPreferences `json:"notify_prefs" db:"notify_prefs"` // JSON в БД
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Weights представляет веса условий скоринга
type Weights struct {
	BandTouch  int `json:"band_touch"`  // цена у нижней полосы
	Oversold   int `json:"oversold"`    // RSI в зоне перепроданности
	StochCross int `json:"stoch_cross"` // бычье пересечение стохастика в зоне перепроданности
}

// NotificationPreferences представляет настройки уведомлений
type NotificationPreferences struct {
	Entry          bool `json:"entry"`
	ScaleOut       bool `json:"scale_out"`
	Exit           bool `json:"exit"`
	StopLoss       bool `json:"stop_loss"`
	CircuitBreaker bool `json:"circuit_breaker"`
	APIError       bool `json:"api_error"`
}

// Режимы расчета целей
const (
	TargetModeVolatility = "volatility" // от ATR и максимума с момента входа
	TargetModeFixed      = "fixed"      // фиксированные проценты от входа
)
