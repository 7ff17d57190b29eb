package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"coinbot/internal/models"
	"coinbot/pkg/utils"
)

// Engine управляет циклом переоценки: по фиксированному интервалу
// анализирует активный набор инструментов, пропускает кандидатов через
// портфельный допуск и исполняет допущенные заявки.
//
// Циклы не перекрываются: следующий тик не начинается, пока не завершен
// предыдущий. Остановка между фазами чистая, начатая фаза исполнения
// доводится до конца.
type Engine struct {
	analyzer      *CoinAnalyzer
	coordinator   *PortfolioCoordinator
	executor      *ExecutionGateway
	ledger        *PositionLedger
	settingsStore SettingsStore
	trades        TradeStore
	notifications NotificationStore
	hub           Broadcaster

	interval        time.Duration
	dryRun          bool
	symbolsOverride []string

	settings    atomic.Pointer[models.TradingSettings]
	cycle       atomic.Int64
	running     atomic.Bool
	lastCycleMu sync.RWMutex
	lastCycleAt time.Time
	lastDaily   models.DailyStats
}

// EngineConfig собирает зависимости и параметры движка
type EngineConfig struct {
	Analyzer      *CoinAnalyzer
	Coordinator   *PortfolioCoordinator
	Executor      *ExecutionGateway
	Ledger        *PositionLedger
	Settings      SettingsStore
	Trades        TradeStore
	Notifications NotificationStore
	Hub           Broadcaster

	Interval        time.Duration
	DryRun          bool
	SymbolsOverride []string // непустой список подменяет инструменты из настроек
}

// NewEngine создает движок цикла переоценки
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Engine{
		analyzer:        cfg.Analyzer,
		coordinator:     cfg.Coordinator,
		executor:        cfg.Executor,
		ledger:          cfg.Ledger,
		settingsStore:   cfg.Settings,
		trades:          cfg.Trades,
		notifications:   cfg.Notifications,
		hub:             cfg.Hub,
		interval:        cfg.Interval,
		dryRun:          cfg.DryRun,
		symbolsOverride: cfg.SymbolsOverride,
	}
}

// Run запускает цикл переоценки и блокируется до отмены контекста
// или фатального сбоя персистентности.
func (e *Engine) Run(ctx context.Context) error {
	if _, err := e.refreshSettings(); err != nil {
		return fmt.Errorf("initial settings load: %w", err)
	}

	e.running.Store(true)
	defer e.running.Store(false)

	log.Printf("[engine] started: interval=%s dry_run=%v", e.interval, e.dryRun)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Первый цикл сразу, не дожидаясь первого тика
	if err := e.runCycle(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[engine] stopped after %d cycles", e.cycle.Load())
			return nil
		case <-ticker.C:
			started := time.Now()
			if err := e.runCycle(ctx); err != nil {
				return err
			}
			if time.Since(started) > e.interval {
				CyclesSkipped.Inc()
			}
		}
	}
}

// runCycle выполняет один цикл: снимок настроек, параллельный анализ,
// барьер, трейлинг, допуск, последовательное исполнение, отчет.
// Ошибка возвращается только при фатальном сбое персистентности.
func (e *Engine) runCycle(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	started := time.Now()
	cycle := e.cycle.Add(1)

	settings, err := e.refreshSettings()
	if err != nil {
		// Работаем на предыдущем снимке, настройки подменяются атомарно
		settings = e.settings.Load()
		log.Printf("[engine] cycle %d: settings refresh failed, using previous snapshot: %v", cycle, err)
	}

	symbols := settings.Symbols
	if len(e.symbolsOverride) > 0 {
		symbols = e.symbolsOverride
	}

	scorer := NewScorer(settings)
	planner, err := NewTargetPlanner(settings)
	if err != nil {
		log.Printf("[engine] cycle %d: invalid target configuration, cycle skipped: %v", cycle, err)
		e.notify(settings, models.NotificationTypeError, models.SeverityError, "",
			fmt.Sprintf("cycle %d skipped: %v", cycle, err), nil)
		return nil
	}

	daily := e.refreshDailyStats(cycle)

	// Фаза анализа: по воркеру на инструмент, сбои изолированы
	recs := make([]models.Recommendation, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			recs[i] = e.analyzer.Analyze(ctx, cycle, symbol, settings, scorer, planner)
		}(i, symbol)
	}
	wg.Wait()

	// Трейлинг-стопы применяются последовательно после барьера
	for _, rec := range recs {
		if rec.Action != models.ActionHold || rec.TrailStop <= 0 {
			continue
		}
		if _, err := e.ledger.AdvanceTrailing(rec.Symbol, rec.LastClose, rec.TrailStop); err != nil {
			if errors.Is(err, ErrPersistenceFailure) {
				return fmt.Errorf("cycle %d: %w", cycle, err)
			}
			log.Printf("[engine] cycle %d: trailing %s: %v", cycle, rec.Symbol, err)
		}
	}

	admitted, rejections := e.coordinator.Admit(recs, settings, daily)
	e.notifyBreakers(settings, rejections)

	// Фаза исполнения: строго последовательно, выходы первыми
	results := make([]models.ExecutionResult, 0, len(admitted))
	for _, req := range admitted {
		res, err := e.executor.Execute(req)
		results = append(results, res)
		e.reportExecution(settings, req, res)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
	}

	duration := time.Since(started)
	summary := &models.CycleSummary{
		Cycle:      cycle,
		StartedAt:  started,
		Duration:   duration,
		Symbols:    symbols,
		Analyses:   recs,
		Admitted:   len(admitted),
		Rejected:   rejections,
		Executions: results,
		OpenCount:  e.ledger.OpenCount(),
		DryRun:     e.dryRun,
	}

	e.lastCycleMu.Lock()
	e.lastCycleAt = started
	e.lastCycleMu.Unlock()

	if e.hub != nil {
		e.hub.BroadcastCycleSummary(summary)
	}
	RecordCycle(duration.Seconds(), summary.OpenCount, e.ledger.AggregateRisk())

	log.Printf("[engine] cycle %d: analyzed=%d admitted=%d rejected=%d executed=%d open=%d took=%s",
		cycle, len(recs), len(admitted), len(rejections), len(results), summary.OpenCount, duration.Round(time.Millisecond))
	return nil
}

// refreshSettings перечитывает настройки и атомарно подменяет снимок
func (e *Engine) refreshSettings() (*models.TradingSettings, error) {
	settings, err := e.settingsStore.Get()
	if err != nil {
		return nil, err
	}
	e.settings.Store(settings)
	return settings, nil
}

// refreshDailyStats загружает дневные агрегаты из истории сделок.
// Сбой загрузки отключает предохранители на этот цикл.
func (e *Engine) refreshDailyStats(cycle int64) *models.DailyStats {
	daily, err := e.trades.GetDailyStats(utils.GetDayStart(), utils.GetDayEnd())
	if err != nil {
		log.Printf("[engine] cycle %d: daily stats unavailable, breakers inactive: %v", cycle, err)
		return nil
	}
	e.lastCycleMu.Lock()
	e.lastDaily = *daily
	e.lastCycleMu.Unlock()
	return daily
}

// reportExecution рассылает уведомления и события об исполнении
func (e *Engine) reportExecution(settings *models.TradingSettings, req models.ExecutionRequest, res models.ExecutionResult) {
	if !res.Success {
		e.notify(settings, models.NotificationTypeError, models.SeverityWarn, req.Symbol,
			fmt.Sprintf("%s %s failed: %s", req.Action, req.Symbol, res.ErrorKind),
			map[string]interface{}{"error_kind": res.ErrorKind, "cycle": req.Cycle})
		return
	}

	var notifType, message string
	switch req.Action {
	case models.ActionEnter:
		notifType = models.NotificationTypeEntry
		message = fmt.Sprintf("%s entered: qty=%.6f price=%.2f stop=%.2f", req.Symbol, res.FilledQty, res.FilledPrice, req.StopLoss)
	case models.ActionScaleOut50:
		notifType = models.NotificationTypeScaleOut
		message = fmt.Sprintf("%s first target: sold %.6f at %.2f, stop moved to break-even", req.Symbol, res.FilledQty, res.FilledPrice)
	case models.ActionExitFull:
		if req.Reason == models.ReasonStopLoss {
			notifType = models.NotificationTypeSL
			message = fmt.Sprintf("%s stop loss: sold %.6f at %.2f pnl=%.2f", req.Symbol, res.FilledQty, res.FilledPrice, res.RealizedPnl)
		} else {
			notifType = models.NotificationTypeExit
			message = fmt.Sprintf("%s closed (%s): sold %.6f at %.2f pnl=%.2f", req.Symbol, req.Reason, res.FilledQty, res.FilledPrice, res.RealizedPnl)
		}
	}
	e.notify(settings, notifType, models.SeverityInfo, req.Symbol, message,
		map[string]interface{}{"price": res.FilledPrice, "quantity": res.FilledQty, "pnl": res.RealizedPnl, "cycle": req.Cycle})

	if e.hub != nil {
		side := models.TradeSideSell
		if req.Action == models.ActionEnter {
			side = models.TradeSideBuy
		}
		e.hub.BroadcastTrade(&models.TradeRecord{
			Symbol:      req.Symbol,
			Action:      req.Action,
			Reason:      req.Reason,
			Side:        side,
			Price:       res.FilledPrice,
			Quantity:    res.FilledQty,
			Fee:         res.Fee,
			RealizedPnl: res.RealizedPnl,
			Cycle:       req.Cycle,
			CreatedAt:   res.ExecutedAt,
		})
		if p, ok := e.ledger.Get(req.Symbol); ok {
			e.hub.BroadcastPosition(&p)
		}
	}
}

// notifyBreakers отправляет одно уведомление при срабатывании
// дневного предохранителя
func (e *Engine) notifyBreakers(settings *models.TradingSettings, rejections []models.Rejection) {
	for _, r := range rejections {
		if r.Kind == models.ErrKindCircuitBreaker {
			e.notify(settings, models.NotificationTypeBreaker, models.SeverityWarn, "",
				"daily circuit breaker active: "+r.Detail, nil)
			return
		}
	}
}

// notify пишет уведомление в журнал и рассылает его.
// Фильтр настроек применяется по типу события.
func (e *Engine) notify(settings *models.TradingSettings, notifType, severity, symbol, message string, meta map[string]interface{}) {
	if !notificationEnabled(settings, notifType) {
		return
	}

	n := &models.Notification{
		Timestamp: time.Now(),
		Type:      notifType,
		Severity:  severity,
		Symbol:    symbol,
		Message:   message,
		Meta:      meta,
	}
	if e.notifications != nil {
		if err := e.notifications.Create(n); err != nil {
			log.Printf("[engine] notification journal write failed: %v", err)
		}
	}
	if e.hub != nil {
		e.hub.BroadcastNotification(n)
	}
}

// notificationEnabled проверяет фильтр уведомлений по типу
func notificationEnabled(settings *models.TradingSettings, notifType string) bool {
	if settings == nil {
		return true
	}
	prefs := settings.NotifyPrefs
	switch notifType {
	case models.NotificationTypeEntry:
		return prefs.Entry
	case models.NotificationTypeScaleOut:
		return prefs.ScaleOut
	case models.NotificationTypeExit:
		return prefs.Exit
	case models.NotificationTypeSL:
		return prefs.StopLoss
	case models.NotificationTypeBreaker:
		return prefs.CircuitBreaker
	case models.NotificationTypeError:
		return prefs.APIError
	default:
		return true
	}
}

// Status возвращает текущее состояние движка для API
func (e *Engine) Status() models.EngineStatus {
	e.lastCycleMu.RLock()
	lastCycleAt := e.lastCycleAt
	daily := e.lastDaily
	e.lastCycleMu.RUnlock()

	var symbols []string
	if settings := e.settings.Load(); settings != nil {
		symbols = settings.Symbols
	}
	if len(e.symbolsOverride) > 0 {
		symbols = e.symbolsOverride
	}

	return models.EngineStatus{
		Running:       e.running.Load(),
		DryRun:        e.dryRun,
		Cycle:         e.cycle.Load(),
		LastCycleAt:   lastCycleAt,
		ActiveSymbols: symbols,
		OpenPositions: e.ledger.Snapshot(),
		Daily:         daily,
	}
}
