package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coinbot/internal/exchange"
	"coinbot/internal/models"
	"coinbot/pkg/utils"
)

// балансовый допуск при сверке количества с биржей
const balanceTolerance = 0.9

// ExecutionGateway исполняет допущенные заявки на бирже и фиксирует
// результат в леджере. Переход состояния применяется только после
// подтвержденного исполнения: сбой биржи оставляет леджер нетронутым,
// повтор в рамках того же цикла не выполняется.
type ExecutionGateway struct {
	trader  exchange.Trader
	ledger  *PositionLedger
	trades  TradeStore
	timeout time.Duration
}

// NewExecutionGateway создает шлюз исполнения
func NewExecutionGateway(trader exchange.Trader, ledger *PositionLedger, trades TradeStore, timeout time.Duration) *ExecutionGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExecutionGateway{
		trader:  trader,
		ledger:  ledger,
		trades:  trades,
		timeout: timeout,
	}
}

// Execute выполняет одну заявку. Контекст исполнения отвязан от контекста
// цикла: начатое исполнение доводится до результата даже при остановке.
// Ошибка возвращается только для фатальных сбоев персистентности.
func (g *ExecutionGateway) Execute(req models.ExecutionRequest) (models.ExecutionResult, error) {
	started := time.Now()
	res := models.ExecutionResult{Request: req, ExecutedAt: started}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	var err error
	switch req.Action {
	case models.ActionEnter:
		err = g.executeEntry(ctx, req, &res)
	case models.ActionScaleOut50:
		err = g.executeScaleOut(ctx, req, &res)
	case models.ActionExitFull:
		err = g.executeExitFull(ctx, req, &res)
	default:
		res.ErrorKind = models.ErrKindExecutionReject
		err = fmt.Errorf("unsupported action %s", req.Action)
	}

	latencyMs := float64(time.Since(started).Milliseconds())
	if err != nil {
		res.Success = false
		if res.ErrorKind == "" {
			res.ErrorKind = classifyExecutionError(err)
		}
		RecordExecution(req.Action, false, latencyMs)
		log.Printf("[executor] %s %s failed (%s): %v", req.Action, req.Symbol, res.ErrorKind, err)
		if errors.Is(err, ErrPersistenceFailure) {
			return res, err
		}
		return res, nil
	}

	res.Success = true
	RecordExecution(req.Action, true, latencyMs)
	if req.Reason == models.ReasonStopLoss {
		StopLossTriggered.WithLabelValues(req.Symbol).Inc()
	}
	return res, nil
}

// executeEntry открывает позицию: проверка дублирующей покупки,
// рыночный ордер, затем атомарный переход FLAT -> ENTERED.
func (g *ExecutionGateway) executeEntry(ctx context.Context, req models.ExecutionRequest, res *models.ExecutionResult) error {
	if _, exists := g.ledger.Get(req.Symbol); exists {
		res.ErrorKind = models.ErrKindStaleTransition
		return fmt.Errorf("%w: position %s already open", ErrStaleTransition, req.Symbol)
	}

	base, _ := exchange.SplitSymbol(req.Symbol)

	// Защита от повторной покупки после неоднозначного таймаута:
	// если базовый актив уже лежит на балансе в запрошенном размере,
	// предыдущий ордер был исполнен и вход отклоняется.
	held, err := g.trader.GetBalance(ctx, base)
	if err != nil {
		return fmt.Errorf("entry balance check %s: %w", req.Symbol, err)
	}
	if req.Quantity > 0 && held >= req.Quantity*balanceTolerance {
		res.ErrorKind = models.ErrKindExecutionReject
		return fmt.Errorf("entry %s rejected: base balance %.8f suggests a filled prior order", req.Symbol, held)
	}

	// Комиссия тейкера резервируется внутри бюджета входа, чтобы
	// стоимость ордера вместе с комиссией не превышала позицию в котируемой.
	// Недоступность ставки не блокирует вход.
	qty := req.Quantity
	if fee, err := g.trader.GetTradingFee(ctx, req.Symbol); err == nil && fee > 0 {
		qty = qty / (1 + fee)
	} else if err != nil {
		log.Printf("[executor] trading fee unavailable for %s, entering without reserve: %v", req.Symbol, err)
	}

	qty = g.roundQuantity(ctx, req.Symbol, qty)
	if qty <= 0 {
		res.ErrorKind = models.ErrKindExecutionReject
		return fmt.Errorf("entry %s rejected: quantity %.8f below lot size", req.Symbol, req.Quantity)
	}

	order, err := g.trader.PlaceMarketOrder(ctx, req.Symbol, exchange.SideBuy, qty)
	if err != nil {
		return fmt.Errorf("entry order %s: %w", req.Symbol, err)
	}

	res.FilledPrice = order.AvgFillPrice
	res.FilledQty = order.FilledQty
	res.Fee = order.Fee

	// Уровни зафиксированы планировщиком, в леджер идет фактическая цена входа
	if _, err := g.ledger.Open(req.Symbol, order.AvgFillPrice, order.FilledQty, req.StopLoss, req.Target1, req.Target2, order.CreatedAt); err != nil {
		return err
	}

	return g.recordTrade(req, models.TradeSideBuy, order, 0)
}

// executeScaleOut продает половину исходного размера и переводит
// позицию в PARTIAL со стопом на безубытке.
func (g *ExecutionGateway) executeScaleOut(ctx context.Context, req models.ExecutionRequest, res *models.ExecutionResult) error {
	p, exists := g.ledger.Get(req.Symbol)
	if !exists || p.Status != models.PositionEntered {
		res.ErrorKind = models.ErrKindStaleTransition
		return fmt.Errorf("%w: scale out %s from %s", ErrStaleTransition, req.Symbol, p.Status)
	}

	// Половина считается от исходного размера, не от остатка
	qty := g.roundQuantity(ctx, req.Symbol, p.OriginalQty/2)
	if qty <= 0 {
		res.ErrorKind = models.ErrKindExecutionReject
		return fmt.Errorf("scale out %s rejected: half of %.8f below lot size", req.Symbol, p.OriginalQty)
	}

	order, err := g.trader.PlaceMarketOrder(ctx, req.Symbol, exchange.SideSell, qty)
	if err != nil {
		return fmt.Errorf("scale out order %s: %w", req.Symbol, err)
	}

	res.FilledPrice = order.AvgFillPrice
	res.FilledQty = order.FilledQty
	res.Fee = order.Fee
	res.RealizedPnl = utils.CalculateRealizedPnl(p.EntryPrice, order.AvgFillPrice, order.FilledQty, order.Fee)

	if _, err := g.ledger.ApplyFirstTarget(req.Symbol); err != nil {
		return err
	}

	PnlTotal.Add(res.RealizedPnl)
	return g.recordTrade(req, models.TradeSideSell, order, res.RealizedPnl)
}

// executeExitFull продает весь подтвержденный остаток базового актива
// и закрывает позицию. Продажа по балансу исключает пыль на счете.
func (g *ExecutionGateway) executeExitFull(ctx context.Context, req models.ExecutionRequest, res *models.ExecutionResult) error {
	p, exists := g.ledger.Get(req.Symbol)
	if !exists || !p.IsOpen() {
		res.ErrorKind = models.ErrKindStaleTransition
		return fmt.Errorf("%w: exit %s without open position", ErrStaleTransition, req.Symbol)
	}

	base, _ := exchange.SplitSymbol(req.Symbol)
	held, err := g.trader.GetBalance(ctx, base)
	if err != nil {
		return fmt.Errorf("exit balance check %s: %w", req.Symbol, err)
	}

	// Остаток в леджере и фактический баланс могут расходиться на комиссию,
	// продается меньший из них, округленный вниз до шага лота
	qty := p.Quantity
	if held < qty {
		qty = held
	}
	qty = g.roundQuantity(ctx, req.Symbol, qty)
	if qty <= 0 {
		res.ErrorKind = models.ErrKindExecutionReject
		return fmt.Errorf("exit %s rejected: confirmed balance %.8f below lot size", req.Symbol, held)
	}

	order, err := g.trader.PlaceMarketOrder(ctx, req.Symbol, exchange.SideSell, qty)
	if err != nil {
		return fmt.Errorf("exit order %s: %w", req.Symbol, err)
	}

	res.FilledPrice = order.AvgFillPrice
	res.FilledQty = order.FilledQty
	res.Fee = order.Fee
	res.RealizedPnl = utils.CalculateRealizedPnl(p.EntryPrice, order.AvgFillPrice, order.FilledQty, order.Fee)

	if _, err := g.ledger.Close(req.Symbol); err != nil {
		return err
	}

	PnlTotal.Add(res.RealizedPnl)
	return g.recordTrade(req, models.TradeSideSell, order, res.RealizedPnl)
}

// roundQuantity округляет количество вниз до шага лота биржи.
// При недоступности лимитов количество возвращается как есть.
func (g *ExecutionGateway) roundQuantity(ctx context.Context, symbol string, qty float64) float64 {
	limits, err := g.trader.GetLimits(ctx, symbol)
	if err != nil || limits == nil || limits.QtyStep <= 0 {
		return qty
	}
	rounded := utils.RoundToLotSize(qty, limits.QtyStep)
	if rounded < limits.MinOrderQty {
		return 0
	}
	return rounded
}

// recordTrade пишет сделку в историю. Сбой записи истории не фатален:
// позиция уже зафиксирована в леджере.
func (g *ExecutionGateway) recordTrade(req models.ExecutionRequest, side string, order *exchange.Order, pnl float64) error {
	trade := &models.TradeRecord{
		Symbol:      req.Symbol,
		Action:      req.Action,
		Reason:      req.Reason,
		Side:        side,
		Price:       order.AvgFillPrice,
		Quantity:    order.FilledQty,
		Fee:         order.Fee,
		RealizedPnl: pnl,
		Cycle:       req.Cycle,
		CreatedAt:   order.CreatedAt,
	}
	if err := g.trades.Create(trade); err != nil {
		log.Printf("[executor] trade history write failed for %s: %v", req.Symbol, err)
	}
	return nil
}

// classifyExecutionError относит ошибку исполнения к классу отчета
func classifyExecutionError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.ErrKindExecutionTimeout
	case errors.Is(err, ErrStaleTransition):
		return models.ErrKindStaleTransition
	case errors.Is(err, ErrPersistenceFailure):
		return models.ErrKindPersistence
	default:
		var exErr *exchange.ExchangeError
		if errors.As(err, &exErr) {
			if errors.Is(exErr.Original, context.DeadlineExceeded) {
				return models.ErrKindExecutionTimeout
			}
			return models.ErrKindExecutionReject
		}
		return models.ErrKindExecutionReject
	}
}
