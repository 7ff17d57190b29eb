package models

import "time"

// Notification представляет уведомление о событии
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // ENTRY, SCALE_OUT, EXIT, SL, BREAKER, ERROR, RECOVERY
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error
	Symbol    string                 `json:"symbol,omitempty" db:"symbol"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeEntry    = "ENTRY"     // открытие позиции
	NotificationTypeScaleOut = "SCALE_OUT" // частичная фиксация по первому тейку
	NotificationTypeExit     = "EXIT"      // полное закрытие позиции
	NotificationTypeSL       = "SL"        // срабатывание Stop Loss
	NotificationTypeBreaker  = "BREAKER"   // сработал дневной предохранитель
	NotificationTypeError    = "ERROR"     // ошибка API/ордера
	NotificationTypeRecovery = "RECOVERY"  // восстановление состояния при старте
)

// Уровни важности
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)
