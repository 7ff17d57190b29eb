package bot

import (
	"context"
	"testing"
	"time"

	"coinbot/internal/models"
)

// ============================================================
// Тесты восстановления состояния при старте
// ============================================================

func TestRecoverRestoresLedger(t *testing.T) {
	store := newMemoryStore()
	store.rows["BTCUSDT"] = models.Position{
		Symbol: "BTCUSDT", Status: models.PositionEntered,
		Quantity: 0.001, OriginalQty: 0.001,
		EntryPrice: 100000, StopLoss: 98000,
		FirstTarget: 101500, SecondTarget: 103000,
	}

	ledger := NewPositionLedger(store)
	trader := newFakeTrader(100000)
	trader.balances["BTC"] = 0.001
	notifs := &fakeNotifStore{}

	rm := NewRecoveryManager(ledger, trader, notifs, 5*time.Second)
	if err := rm.Recover(context.Background()); err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if ledger.OpenCount() != 1 {
		t.Errorf("open count = %d, want 1", ledger.OpenCount())
	}

	// Итог восстановления попадает в журнал
	notifs.mu.Lock()
	defer notifs.mu.Unlock()
	if len(notifs.stored) == 0 {
		t.Fatal("no recovery notification written")
	}
	if notifs.stored[len(notifs.stored)-1].Type != models.NotificationTypeRecovery {
		t.Errorf("notification type = %s, want %s", notifs.stored[0].Type, models.NotificationTypeRecovery)
	}
}

// Расхождение баланса фиксируется предупреждением, запуск продолжается
func TestRecoverBalanceMismatch(t *testing.T) {
	store := newMemoryStore()
	store.rows["BTCUSDT"] = models.Position{
		Symbol: "BTCUSDT", Status: models.PositionEntered,
		Quantity: 0.001, OriginalQty: 0.001,
		EntryPrice: 100000, StopLoss: 98000,
		FirstTarget: 101500, SecondTarget: 103000,
	}

	ledger := NewPositionLedger(store)
	trader := newFakeTrader(100000)
	notifs := &fakeNotifStore{}

	rm := NewRecoveryManager(ledger, trader, notifs, 5*time.Second)
	if err := rm.Recover(context.Background()); err != nil {
		t.Fatalf("mismatch must not block startup: %v", err)
	}

	notifs.mu.Lock()
	defer notifs.mu.Unlock()
	var warned bool
	for _, n := range notifs.stored {
		if n.Severity == models.SeverityWarn && n.Symbol == "BTCUSDT" {
			warned = true
		}
	}
	if !warned {
		t.Error("balance mismatch not reported")
	}
}

// Искаженная запись останавливает запуск
func TestRecoverCorruptedState(t *testing.T) {
	store := newMemoryStore()
	store.rows["BTCUSDT"] = models.Position{
		Symbol: "BTCUSDT", Status: models.PositionEntered,
		Quantity: -1, OriginalQty: 1,
		EntryPrice: 100000, StopLoss: 98000,
		FirstTarget: 101500, SecondTarget: 103000,
	}

	rm := NewRecoveryManager(NewPositionLedger(store), newFakeTrader(100000), nil, time.Second)
	if err := rm.Recover(context.Background()); err == nil {
		t.Fatal("expected error for corrupted state")
	}
}
