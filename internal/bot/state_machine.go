package bot

import (
	"fmt"

	"coinbot/internal/models"
)

// ValidTransitions определяет допустимые переходы между состояниями позиции
var ValidTransitions = map[string][]string{
	models.PositionFlat:    {models.PositionEntered},
	models.PositionEntered: {models.PositionPartial, models.PositionClosed},
	models.PositionPartial: {models.PositionClosed},
	models.PositionClosed:  {}, // терминальное состояние
}

// StateTransitionError возвращается при попытке недопустимого перехода.
// Такая попытка не меняет состояние (защита от устаревших рекомендаций).
type StateTransitionError struct {
	Symbol string
	From   string
	To     string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("stale transition for %s: %s -> %s is not allowed", e.Symbol, e.From, e.To)
}

// Unwrap поддерживает errors.Is(err, ErrStaleTransition)
func (e *StateTransitionError) Unwrap() error {
	return ErrStaleTransition
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// TryTransition атомарно переводит позицию в новое состояние.
// При недопустимом переходе состояние не меняется, возвращается
// StateTransitionError.
func TryTransition(p *models.Position, to string) error {
	if !CanTransition(p.Status, to) {
		return &StateTransitionError{Symbol: p.Symbol, From: p.Status, To: to}
	}
	p.Status = to
	return nil
}

// StateInfo возвращает описание состояния для UI
func StateInfo(s string) string {
	switch s {
	case models.PositionFlat:
		return "Позиции нет"
	case models.PositionEntered:
		return "Позиция открыта (полный размер)"
	case models.PositionPartial:
		return "Частичная фиксация (50%), стоп в безубытке"
	case models.PositionClosed:
		return "Позиция закрыта"
	default:
		return "Неизвестное состояние"
	}
}

// HasOpenPosition возвращает true если в этом состоянии есть открытая позиция
func HasOpenPosition(s string) bool {
	return s == models.PositionEntered || s == models.PositionPartial
}
