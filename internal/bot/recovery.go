package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinbot/internal/exchange"
	"coinbot/internal/models"
)

// RecoveryManager восстанавливает состояние после перезапуска.
//
// Персистентная карта позиций считается истиной: леджер загружается из
// БД, затем каждая открытая позиция сверяется с фактическим балансом
// базового актива на бирже. Расхождения попадают в журнал уведомлений,
// поврежденная запись останавливает запуск.
type RecoveryManager struct {
	ledger        *PositionLedger
	trader        exchange.Trader
	notifications NotificationStore

	timeout time.Duration
}

// NewRecoveryManager создает менеджер восстановления
func NewRecoveryManager(ledger *PositionLedger, trader exchange.Trader, notifications NotificationStore, timeout time.Duration) *RecoveryManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RecoveryManager{
		ledger:        ledger,
		trader:        trader,
		notifications: notifications,
		timeout:       timeout,
	}
}

// Recover загружает леджер и сверяет его с биржей.
// Возвращает ошибку только при невозможности загрузить состояние:
// расхождение балансов фиксируется, но запуск не блокирует.
func (r *RecoveryManager) Recover(ctx context.Context) error {
	if err := r.ledger.Load(); err != nil {
		return fmt.Errorf("recovery: %w", err)
	}

	positions := r.ledger.Snapshot()
	log.Printf("[recovery] loaded %d open position(s) from storage", len(positions))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var mismatches int
	for _, p := range positions {
		if err := r.reconcile(ctx, &p); err != nil {
			mismatches++
			log.Printf("[recovery] %s: %v", p.Symbol, err)
			r.report(models.SeverityWarn, p.Symbol, err.Error())
		}
	}

	msg := fmt.Sprintf("state restored: %d position(s), %d mismatch(es)", len(positions), mismatches)
	log.Printf("[recovery] %s", msg)
	r.report(models.SeverityInfo, "", msg)
	return nil
}

// reconcile сверяет позицию леджера с фактическим балансом базового актива
func (r *RecoveryManager) reconcile(ctx context.Context, p *models.Position) error {
	base, _ := exchange.SplitSymbol(p.Symbol)
	held, err := r.trader.GetBalance(ctx, base)
	if err != nil {
		return fmt.Errorf("balance check failed: %w", err)
	}
	if held < p.Quantity*balanceTolerance {
		return fmt.Errorf("ledger quantity %.8f exceeds exchange balance %.8f, position may have been closed externally", p.Quantity, held)
	}
	return nil
}

// report пишет событие восстановления в журнал уведомлений
func (r *RecoveryManager) report(severity, symbol, message string) {
	if r.notifications == nil {
		return
	}
	n := &models.Notification{
		Timestamp: time.Now(),
		Type:      models.NotificationTypeRecovery,
		Severity:  severity,
		Symbol:    symbol,
		Message:   message,
	}
	if err := r.notifications.Create(n); err != nil {
		log.Printf("[recovery] notification journal write failed: %v", err)
	}
}
