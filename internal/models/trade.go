package models

import "time"

// TradeRecord представляет запись об исполненной сделке
type TradeRecord struct {
	ID          int       `json:"id" db:"id"`
	Symbol      string    `json:"symbol" db:"symbol"`
	Action      string    `json:"action" db:"action"`   // ENTER, SCALE_OUT_50, EXIT_FULL
	Reason      string    `json:"reason" db:"reason"`   // SIGNAL, STOP_LOSS, TARGET_1, TARGET_2
	Side        string    `json:"side" db:"side"`       // buy, sell
	Price       float64   `json:"price" db:"price"`     // средняя цена исполнения
	Quantity    float64   `json:"quantity" db:"quantity"`
	Fee         float64   `json:"fee" db:"fee"`
	RealizedPnl float64   `json:"realized_pnl" db:"realized_pnl"` // 0 для входа
	Cycle       int64     `json:"cycle" db:"cycle"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Стороны сделки
const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// DailyStats представляет дневные агрегаты для автоматических стопов торговли
type DailyStats struct {
	Day              time.Time `json:"day"`
	TradeCount       int       `json:"trade_count"`       // число входов за день
	RealizedPnl      float64   `json:"realized_pnl"`      // суммарный реализованный PNL
	RealizedLoss     float64   `json:"realized_loss"`     // только убыточные закрытия, абсолютное значение
	ConsecutiveLoss  int       `json:"consecutive_loss"`  // убыточные закрытия подряд (на конец дня)
	WinCount         int       `json:"win_count"`
	LossCount        int       `json:"loss_count"`
}
