package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"coinbot/internal/models"
)

// PaperExchange симулирует торговлю поверх реальных рыночных данных.
// Ордеры исполняются мгновенно по последней цене, балансы ведутся в памяти.
// Используется в режиме dry-run: биржа никогда не вызывается на запись.
type PaperExchange struct {
	market MarketData

	mu       sync.Mutex
	balances map[string]float64 // asset -> свободный баланс
	feeRate  float64
	orderSeq int64
}

// NewPaperExchange создает симулятор с начальным балансом котируемой валюты
func NewPaperExchange(market MarketData, quoteAsset string, quoteBalance float64) *PaperExchange {
	return &PaperExchange{
		market:   market,
		balances: map[string]float64{quoteAsset: quoteBalance},
		feeRate:  0.001, // комиссия тейкера спота
	}
}

func (p *PaperExchange) Connect(apiKey, secret string) error {
	return nil
}

func (p *PaperExchange) GetName() string {
	return "paper"
}

func (p *PaperExchange) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	return p.market.GetCandles(ctx, symbol, interval, limit)
}

func (p *PaperExchange) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	return p.market.GetLastPrice(ctx, symbol)
}

func (p *PaperExchange) GetBalance(ctx context.Context, asset string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[asset], nil
}

// SetBalance выставляет баланс актива (подготовка сценариев и тестов)
func (p *PaperExchange) SetBalance(asset string, amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[asset] = amount
}

func (p *PaperExchange) PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*Order, error) {
	if qty <= 0 {
		return nil, &ExchangeError{Exchange: "paper", Code: "BAD_QTY", Message: "quantity must be positive"}
	}

	price, err := p.market.GetLastPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("paper fill price unavailable: %w", err)
	}

	base, quote := SplitSymbol(symbol)

	p.mu.Lock()
	defer p.mu.Unlock()

	notional := qty * price
	fee := notional * p.feeRate

	switch side {
	case SideBuy:
		if p.balances[quote] < notional+fee {
			return nil, &ExchangeError{
				Exchange: "paper",
				Code:     "INSUFFICIENT_BALANCE",
				Message:  fmt.Sprintf("insufficient %s balance for %s buy", quote, symbol),
			}
		}
		p.balances[quote] -= notional + fee
		p.balances[base] += qty
	case SideSell:
		if p.balances[base] < qty {
			return nil, &ExchangeError{
				Exchange: "paper",
				Code:     "INSUFFICIENT_BALANCE",
				Message:  fmt.Sprintf("insufficient %s balance for %s sell", base, symbol),
			}
		}
		p.balances[base] -= qty
		p.balances[quote] += notional - fee
	default:
		return nil, &ExchangeError{Exchange: "paper", Code: "BAD_SIDE", Message: "unknown side " + side}
	}

	p.orderSeq++
	return &Order{
		ID:           "paper-" + strconv.FormatInt(p.orderSeq, 10),
		Symbol:       symbol,
		Side:         side,
		Type:         "market",
		Quantity:     qty,
		FilledQty:    qty,
		AvgFillPrice: price,
		Fee:          fee,
		Status:       OrderStatusFilled,
		CreatedAt:    time.Now(),
	}, nil
}

func (p *PaperExchange) GetLimits(ctx context.Context, symbol string) (*Limits, error) {
	return &Limits{
		Symbol:      symbol,
		MinOrderQty: 0.00001,
		MaxOrderQty: 1e9,
		QtyStep:     0.00001,
		MinNotional: 5.0,
		PriceStep:   0.01,
	}, nil
}

func (p *PaperExchange) GetTradingFee(ctx context.Context, symbol string) (float64, error) {
	return p.feeRate, nil
}

func (p *PaperExchange) Close() error {
	return nil
}

// SplitSymbol выделяет базовый и котируемый актив из символа вида BTCUSDT
func SplitSymbol(symbol string) (base, quote string) {
	for _, q := range []string{"USDT", "BUSD", "USDC", "BTC", "ETH"} {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return symbol[:len(symbol)-len(q)], q
		}
	}
	// По умолчанию считаем последние 4 символа котировкой
	if len(symbol) > 4 {
		return symbol[:len(symbol)-4], symbol[len(symbol)-4:]
	}
	return symbol, ""
}
