package exchange

import (
	"context"
	"time"

	"coinbot/internal/models"
)

// MarketData определяет интерфейс чтения рыночных данных.
// При недоступности источника возвращается ошибка, частичные или
// устаревшие данные не возвращаются никогда.
type MarketData interface {
	// GetCandles получает серию свечей OHLCV
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)

	// GetLastPrice получает последнюю цену инструмента
	GetLastPrice(ctx context.Context, symbol string) (float64, error)
}

// Trader определяет интерфейс торговых операций
type Trader interface {
	// PlaceMarketOrder размещает рыночный ордер
	PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*Order, error)

	// GetBalance получает подтвержденный свободный баланс актива
	GetBalance(ctx context.Context, asset string) (float64, error)

	// GetLimits получает торговые лимиты для символа
	GetLimits(ctx context.Context, symbol string) (*Limits, error)

	// GetTradingFee получает комиссию тейкера для символа
	GetTradingFee(ctx context.Context, symbol string) (float64, error)
}

// Exchange объединяет рыночные данные и торговлю одной площадки
type Exchange interface {
	MarketData
	Trader

	// Connect устанавливает соединение с биржей и проверяет ключи
	Connect(apiKey, secret string) error

	// GetName возвращает имя биржи
	GetName() string

	// Close закрывает соединения с биржей
	Close() error
}

// Order представляет исполненный ордер
type Order struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"` // "buy" или "sell"
	Type         string    `json:"type"` // "market"
	Quantity     float64   `json:"quantity"`
	FilledQty    float64   `json:"filled_qty"`
	AvgFillPrice float64   `json:"avg_fill_price"`
	Fee          float64   `json:"fee"` // в котируемой валюте
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Limits содержит торговые ограничения биржи
type Limits struct {
	Symbol      string  `json:"symbol"`
	MinOrderQty float64 `json:"min_order_qty"` // минимальный размер ордера
	MaxOrderQty float64 `json:"max_order_qty"` // максимальный размер ордера
	QtyStep     float64 `json:"qty_step"`      // шаг изменения количества (lot size)
	MinNotional float64 `json:"min_notional"`  // минимальная сумма сделки в USDT
	PriceStep   float64 `json:"price_step"`    // шаг изменения цены (tick size)
}

// ExchangeError представляет ошибку от биржи
type ExchangeError struct {
	Exchange string
	Code     string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *ExchangeError) Unwrap() error {
	return e.Original
}

// Side constants for orders
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order status constants
const (
	OrderStatusFilled    = "filled"
	OrderStatusPartial   = "partial"
	OrderStatusRejected  = "rejected"
)
