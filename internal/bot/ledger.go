package bot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"coinbot/internal/models"
)

// Ошибки леджера
var (
	// ErrStaleTransition - переход не соответствует текущему состоянию.
	// Состояние при этом не меняется, вызывающий просто пропускает действие.
	ErrStaleTransition = errors.New("stale transition")

	// ErrPersistenceFailure - запись состояния не подтверждена.
	// Торговля с неподтвержденным леджером недопустима, ошибка фатальна.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// PositionLedger владеет картой открытых позиций.
// Каждый переход: проверка состояния, синхронная запись в хранилище,
// только затем изменение карты. Сбой записи не меняет карту.
type PositionLedger struct {
	mu        sync.RWMutex
	positions map[string]*models.Position
	store     PositionStore
}

// NewPositionLedger создает пустой леджер поверх хранилища
func NewPositionLedger(store PositionStore) *PositionLedger {
	return &PositionLedger{
		positions: make(map[string]*models.Position),
		store:     store,
	}
}

// Load восстанавливает карту позиций из хранилища.
// Сохраненное состояние считается истиной, искаженные записи фатальны.
func (l *PositionLedger) Load() error {
	stored, err := l.store.GetAll()
	if err != nil {
		return fmt.Errorf("%w: load positions: %v", ErrPersistenceFailure, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.positions = make(map[string]*models.Position, len(stored))
	for _, p := range stored {
		if err := validatePosition(p); err != nil {
			return fmt.Errorf("corrupted position record %s: %w", p.Symbol, err)
		}
		cp := *p
		l.positions[p.Symbol] = &cp
	}
	return nil
}

// validatePosition проверяет инварианты восстановленной записи
func validatePosition(p *models.Position) error {
	if !HasOpenPosition(p.Status) {
		return fmt.Errorf("unexpected status %q", p.Status)
	}
	if p.Quantity <= 0 || p.OriginalQty <= 0 {
		return fmt.Errorf("non-positive quantity %v", p.Quantity)
	}
	if p.EntryPrice <= 0 {
		return fmt.Errorf("non-positive entry price %v", p.EntryPrice)
	}
	if p.StopLoss > p.EntryPrice {
		return fmt.Errorf("stop loss %v above entry %v", p.StopLoss, p.EntryPrice)
	}
	if p.FirstTarget >= p.SecondTarget {
		return fmt.Errorf("first target %v not below second %v", p.FirstTarget, p.SecondTarget)
	}
	return nil
}

// Get возвращает копию позиции по символу
func (l *PositionLedger) Get(symbol string) (models.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.positions[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *p, true
}

// Snapshot возвращает копии всех открытых позиций
func (l *PositionLedger) Snapshot() []models.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}

// OpenCount возвращает число открытых позиций
func (l *PositionLedger) OpenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.positions)
}

// AggregateRisk возвращает суммарный зафиксированный риск портфеля
func (l *PositionLedger) AggregateRisk() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0.0
	for _, p := range l.positions {
		total += p.RemainingRisk()
	}
	return total
}

// Open создает позицию по подтвержденному входу. Успех только из FLAT.
func (l *PositionLedger) Open(symbol string, entryPrice, qty, stopLoss, firstTarget, secondTarget float64, entryTime time.Time) (models.Position, error) {
	if stopLoss >= entryPrice {
		return models.Position{}, fmt.Errorf("invalid plan for %s: stop %v must be below entry %v", symbol, stopLoss, entryPrice)
	}
	if !(entryPrice < firstTarget && firstTarget < secondTarget) {
		return models.Position{}, fmt.Errorf("invalid plan for %s: targets %v/%v must be above entry %v in order", symbol, firstTarget, secondTarget, entryPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.positions[symbol]; ok {
		return models.Position{}, &StateTransitionError{Symbol: symbol, From: existing.Status, To: models.PositionEntered}
	}

	p := &models.Position{
		Symbol:       symbol,
		Status:       models.PositionEntered,
		Quantity:     qty,
		OriginalQty:  qty,
		EntryPrice:   entryPrice,
		StopLoss:     stopLoss,
		FirstTarget:  firstTarget,
		SecondTarget: secondTarget,
		HighestClose: entryPrice,
		EntryTime:    entryTime,
	}

	if err := l.store.Upsert(p); err != nil {
		return models.Position{}, fmt.Errorf("%w: open %s: %v", ErrPersistenceFailure, symbol, err)
	}

	l.positions[symbol] = p
	return *p, nil
}

// ApplyFirstTarget фиксирует продажу 50% исходного размера.
// Успех только из ENTERED, стоп переносится в безубыток (цена входа).
func (l *PositionLedger) ApplyFirstTarget(symbol string) (models.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return models.Position{}, &StateTransitionError{Symbol: symbol, From: models.PositionFlat, To: models.PositionPartial}
	}
	if p.Status != models.PositionEntered {
		return models.Position{}, &StateTransitionError{Symbol: symbol, From: p.Status, To: models.PositionPartial}
	}

	updated := *p
	updated.Status = models.PositionPartial
	updated.Quantity = p.OriginalQty / 2
	updated.StopLoss = p.EntryPrice
	updated.FirstTargetHit = true

	if err := l.store.Upsert(&updated); err != nil {
		return models.Position{}, fmt.Errorf("%w: first target %s: %v", ErrPersistenceFailure, symbol, err)
	}

	*p = updated
	return updated, nil
}

// Close удаляет позицию по подтвержденному полному выходу.
// Успех из ENTERED или PARTIAL.
func (l *PositionLedger) Close(symbol string) (models.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return models.Position{}, &StateTransitionError{Symbol: symbol, From: models.PositionFlat, To: models.PositionClosed}
	}
	if !CanTransition(p.Status, models.PositionClosed) {
		return models.Position{}, &StateTransitionError{Symbol: symbol, From: p.Status, To: models.PositionClosed}
	}

	if err := l.store.Delete(symbol); err != nil {
		return models.Position{}, fmt.Errorf("%w: close %s: %v", ErrPersistenceFailure, symbol, err)
	}

	closed := *p
	closed.Status = models.PositionClosed
	now := time.Now()
	closed.ClosedAt = &now

	delete(l.positions, symbol)
	return closed, nil
}

// AdvanceTrailing поднимает трейлинг-стоп и максимум close с момента входа.
// Стоп двигается только вверх и никогда выше цены входа до первого тейка
// (инвариант stop < entry), после первого тейка нижняя граница - безубыток.
func (l *PositionLedger) AdvanceTrailing(symbol string, lastClose, candidateStop float64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return false, nil
	}

	updated := *p
	changed := false

	if lastClose > updated.HighestClose {
		updated.HighestClose = lastClose
		changed = true
	}

	// Стоп не поднимается выше цены входа: выше безубытка позицию
	// закрывают тейки, а не трейлинг.
	capped := candidateStop
	if capped > updated.EntryPrice {
		capped = updated.EntryPrice
	}
	if capped > updated.StopLoss {
		updated.StopLoss = capped
		changed = true
	}

	if !changed {
		return false, nil
	}

	if err := l.store.Upsert(&updated); err != nil {
		return false, fmt.Errorf("%w: trailing %s: %v", ErrPersistenceFailure, symbol, err)
	}

	*p = updated
	return true, nil
}
