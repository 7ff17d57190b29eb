package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinbot/internal/exchange"
	"coinbot/internal/indicators"
	"coinbot/internal/models"
)

// CoinAnalyzer строит одну рекомендацию на инструмент за цикл:
// свечи -> индикаторы -> скоринг -> действие.
// Анализ только читает леджер, сбой по одному инструменту не влияет
// на остальные.
type CoinAnalyzer struct {
	market exchange.MarketData
	ledger *PositionLedger

	interval    string
	candleCount int
	timeout     time.Duration
}

// NewCoinAnalyzer создает анализатор поверх источника рыночных данных
func NewCoinAnalyzer(market exchange.MarketData, ledger *PositionLedger, interval string, candleCount int, timeout time.Duration) *CoinAnalyzer {
	if candleCount < indicators.MinHistory {
		candleCount = indicators.MinHistory
	}
	return &CoinAnalyzer{
		market:      market,
		ledger:      ledger,
		interval:    interval,
		candleCount: candleCount,
		timeout:     timeout,
	}
}

// Analyze возвращает рекомендацию по инструменту.
// Любой сбой данных деградирует в HOLD с аннотацией ошибки.
func (a *CoinAnalyzer) Analyze(ctx context.Context, cycle int64, symbol string, settings *models.TradingSettings, scorer Scorer, planner TargetPlanner) models.Recommendation {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rec := models.Recommendation{
		Symbol: symbol,
		Cycle:  cycle,
		Action: models.ActionHold,
		Reason: models.ReasonNoAction,
		Regime: models.RegimeUnknown,
	}

	candles, err := a.market.GetCandles(ctx, symbol, a.interval, a.candleCount)
	if err != nil {
		return a.holdOnError(rec, symbol, "candles", err)
	}
	if len(candles) == 0 {
		return a.holdOnError(rec, symbol, "candles", fmt.Errorf("empty series"))
	}

	lastPrice, err := a.market.GetLastPrice(ctx, symbol)
	if err != nil {
		return a.holdOnError(rec, symbol, "last price", err)
	}

	values := indicators.Compute(candles)
	result := scorer.Score(values, lastPrice)

	rec.Score = result.Score
	rec.Regime = result.Regime
	rec.RefPrice = lastPrice
	rec.LastClose = candles[len(candles)-1].Close

	RecordAnalysis(symbol, result.Regime, result.Score)

	position, hasPosition := a.ledger.Get(symbol)
	if hasPosition {
		return a.evaluateExit(rec, &position, lastPrice, values, planner)
	}
	return a.evaluateEntry(rec, lastPrice, values, settings, planner)
}

// holdOnError деградирует рекомендацию в HOLD с аннотацией ошибки
func (a *CoinAnalyzer) holdOnError(rec models.Recommendation, symbol, stage string, err error) models.Recommendation {
	log.Printf("[analyzer] %s: %s unavailable: %v", symbol, stage, err)
	RecordDataError(symbol)

	rec.Action = models.ActionHold
	rec.Reason = models.ReasonDataError
	rec.Err = fmt.Sprintf("%s: %v", stage, err)
	return rec
}

// evaluateExit проверяет условия выхода открытой позиции.
// Условия проверяются независимо от скоринга.
func (a *CoinAnalyzer) evaluateExit(rec models.Recommendation, p *models.Position, lastPrice float64, values models.IndicatorValues, planner TargetPlanner) models.Recommendation {
	rec.Quantity = p.Quantity

	switch {
	case lastPrice <= p.StopLoss:
		rec.Action = models.ActionExitFull
		rec.Reason = models.ReasonStopLoss
	case lastPrice >= p.FirstTarget && !p.FirstTargetHit:
		rec.Action = models.ActionScaleOut50
		rec.Reason = models.ReasonTarget1
	case lastPrice >= p.SecondTarget && p.FirstTargetHit && !p.SecondTargetHit:
		rec.Action = models.ActionExitFull
		rec.Reason = models.ReasonTarget2
	default:
		// Позиция держится, передаем кандидата трейлинг-стопа
		rec.TrailStop = planner.Trail(p, values)
	}
	return rec
}

// evaluateEntry проверяет условия нового входа.
// Режим bearish и unknown запрещают входы полностью.
func (a *CoinAnalyzer) evaluateEntry(rec models.Recommendation, lastPrice float64, values models.IndicatorValues, settings *models.TradingSettings, planner TargetPlanner) models.Recommendation {
	if rec.Regime == models.RegimeBearish || rec.Regime == models.RegimeUnknown {
		return rec
	}
	if rec.Score < settings.MinScore {
		return rec
	}

	plan, err := planner.Plan(lastPrice, values)
	if err != nil {
		return a.holdOnError(rec, rec.Symbol, "target plan", err)
	}

	rec.Action = models.ActionEnter
	rec.Reason = models.ReasonSignal
	rec.Quantity = settings.PositionQuote / lastPrice
	rec.StopLoss = plan.StopLoss
	rec.Target1 = plan.FirstTarget
	rec.Target2 = plan.SecondTarget
	return rec
}
