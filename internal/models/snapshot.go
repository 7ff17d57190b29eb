package models

import "time"

// Candle представляет одну свечу OHLCV
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// IndicatorValues представляет вычисленные индикаторы по инструменту
type IndicatorValues struct {
	SMA20          float64 `json:"sma_20"`
	SMA50          float64 `json:"sma_50"`
	SMA200         float64 `json:"sma_200"`
	RSI14          float64 `json:"rsi_14"`
	BandUpper      float64 `json:"band_upper"`
	BandMiddle     float64 `json:"band_middle"`
	BandLower      float64 `json:"band_lower"`
	ATR14          float64 `json:"atr_14"`
	StochK         float64 `json:"stoch_k"`
	StochD         float64 `json:"stoch_d"`
	PrevStochK     float64 `json:"prev_stoch_k"`
	PrevStochD     float64 `json:"prev_stoch_d"`
	HistoryDepth   int     `json:"history_depth"`   // сколько свечей было доступно
	EnoughHistory  bool    `json:"enough_history"`  // false = индикаторы не достоверны
}

// MarketSnapshot представляет срез рынка по инструменту за один цикл.
// Создается заново каждый цикл, не мутируется.
type MarketSnapshot struct {
	Symbol     string          `json:"symbol"`
	Cycle      int64           `json:"cycle"`
	LastPrice  float64         `json:"last_price"`
	Candles    []Candle        `json:"-"`
	Indicators IndicatorValues `json:"indicators"`
	Regime     string          `json:"regime"` // bullish, neutral, bearish, unknown
	Score      int             `json:"score"`  // 0..4
	CreatedAt  time.Time       `json:"created_at"`
}

// Режимы рынка
const (
	RegimeBullish = "bullish"
	RegimeNeutral = "neutral"
	RegimeBearish = "bearish"
	RegimeUnknown = "unknown" // недостаточно истории
)
