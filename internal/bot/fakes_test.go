package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coinbot/internal/exchange"
	"coinbot/internal/models"
)

// ============================================================
// Общие фейки хранилищ и биржи для тестов пакета
// ============================================================

// memoryStore - хранилище позиций в памяти с управляемым сбоем записи
type memoryStore struct {
	mu       sync.Mutex
	rows     map[string]models.Position
	failNext bool
	upserts  int
	deletes  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]models.Position)}
}

func (s *memoryStore) Upsert(p *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return fmt.Errorf("simulated storage failure")
	}
	s.upserts++
	s.rows[p.Symbol] = *p
	return nil
}

func (s *memoryStore) Delete(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return fmt.Errorf("simulated storage failure")
	}
	s.deletes++
	delete(s.rows, symbol)
	return nil
}

func (s *memoryStore) GetAll() ([]*models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Position, 0, len(s.rows))
	for _, p := range s.rows {
		cp := p
		out = append(out, &cp)
	}
	return out, nil
}

// memoryTradeStore - история сделок в памяти
type memoryTradeStore struct {
	mu     sync.Mutex
	trades []models.TradeRecord
	daily  *models.DailyStats
}

func (s *memoryTradeStore) Create(trade *models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, *trade)
	return nil
}

func (s *memoryTradeStore) GetDailyStats(dayStart, dayEnd time.Time) (*models.DailyStats, error) {
	if s.daily != nil {
		return s.daily, nil
	}
	return &models.DailyStats{}, nil
}

// fakeMarket - источник рыночных данных с настраиваемым ответом.
// Поля symbol* задают ответ по конкретному инструменту и имеют
// приоритет над общими полями.
type fakeMarket struct {
	candles    []models.Candle
	lastPrice  float64
	candlesErr error
	priceErr   error

	symbolCandles map[string][]models.Candle
	symbolPrices  map[string]float64
	symbolErrs    map[string]error
}

func (m *fakeMarket) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if err, ok := m.symbolErrs[symbol]; ok {
		return nil, err
	}
	if m.candlesErr != nil {
		return nil, m.candlesErr
	}
	if candles, ok := m.symbolCandles[symbol]; ok {
		return candles, nil
	}
	return m.candles, nil
}

func (m *fakeMarket) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	if err, ok := m.symbolErrs[symbol]; ok {
		return 0, err
	}
	if m.priceErr != nil {
		return 0, m.priceErr
	}
	if price, ok := m.symbolPrices[symbol]; ok {
		return price, nil
	}
	return m.lastPrice, nil
}

// fakeTrader - биржа с фиксированным исполнением и учетом балансов
type fakeTrader struct {
	mu        sync.Mutex
	balances  map[string]float64
	fillPrice float64
	feeRate   float64
	feeErr    error
	orderErr  error
	orders    []placedOrder
}

type placedOrder struct {
	Symbol string
	Side   string
	Qty    float64
}

func newFakeTrader(fillPrice float64) *fakeTrader {
	return &fakeTrader{
		balances:  make(map[string]float64),
		fillPrice: fillPrice,
	}
}

func (t *fakeTrader) PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*exchange.Order, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.orderErr != nil {
		return nil, t.orderErr
	}

	t.orders = append(t.orders, placedOrder{Symbol: symbol, Side: side, Qty: qty})

	base, _ := exchange.SplitSymbol(symbol)
	if side == exchange.SideBuy {
		t.balances[base] += qty
	} else {
		t.balances[base] -= qty
	}

	return &exchange.Order{
		ID:           fmt.Sprintf("order-%d", len(t.orders)),
		Symbol:       symbol,
		Side:         side,
		Type:         "market",
		Quantity:     qty,
		FilledQty:    qty,
		AvgFillPrice: t.fillPrice,
		Fee:          qty * t.fillPrice * t.feeRate,
		Status:       exchange.OrderStatusFilled,
		CreatedAt:    time.Now(),
	}, nil
}

func (t *fakeTrader) GetBalance(ctx context.Context, asset string) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[asset], nil
}

func (t *fakeTrader) GetLimits(ctx context.Context, symbol string) (*exchange.Limits, error) {
	return &exchange.Limits{Symbol: symbol, QtyStep: 0.000001, MinOrderQty: 0.000001}, nil
}

func (t *fakeTrader) GetTradingFee(ctx context.Context, symbol string) (float64, error) {
	if t.feeErr != nil {
		return 0, t.feeErr
	}
	return t.feeRate, nil
}

// testSettings возвращает настройки с типовыми значениями для тестов
func testSettings() *models.TradingSettings {
	return &models.TradingSettings{
		Symbols:         []string{"BTCUSDT", "ETHUSDT"},
		MaxPositions:    2,
		MinScore:        3,
		RiskCeiling:     0.10,
		PositionQuote:   100,
		MaxDailyTrades:  10,
		MaxDailyLoss:    50,
		MaxConsecLosses: 3,
		TargetMode:      models.TargetModeFixed,
		StopPct:         0.02,
		Target1Pct:      0.015,
		Target2Pct:      0.03,
		ScoreWeights:    models.Weights{BandTouch: 1, Oversold: 1, StochCross: 2},
		NotifyPrefs: models.NotificationPreferences{
			Entry: true, ScaleOut: true, Exit: true,
			StopLoss: true, CircuitBreaker: true, APIError: true,
		},
	}
}

// mustOpen открывает позицию в леджере или валит тест
func mustOpen(t testingT, ledger *PositionLedger, symbol string, entry, qty, stop, t1, t2 float64) models.Position {
	t.Helper()
	p, err := ledger.Open(symbol, entry, qty, stop, t1, t2, time.Now())
	if err != nil {
		t.Fatalf("open %s: %v", symbol, err)
	}
	return p
}

// testingT покрывает *testing.T в хелперах
type testingT interface {
	Helper()
	Fatalf(format string, args ...interface{})
}
