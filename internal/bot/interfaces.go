package bot

import (
	"time"

	"coinbot/internal/models"
)

// PositionStore - хранение позиций (синхронная запись при каждом переходе)
type PositionStore interface {
	Upsert(p *models.Position) error
	Delete(symbol string) error
	GetAll() ([]*models.Position, error)
}

// TradeStore - история сделок и дневные агрегаты
type TradeStore interface {
	Create(trade *models.TradeRecord) error
	GetDailyStats(dayStart, dayEnd time.Time) (*models.DailyStats, error)
}

// NotificationStore - журнал уведомлений
type NotificationStore interface {
	Create(n *models.Notification) error
}

// SettingsStore - торговые настройки, перечитываются каждый цикл
type SettingsStore interface {
	Get() (*models.TradingSettings, error)
}

// Broadcaster - отправка событий наружу (websocket hub).
// Реализация обязана быть неблокирующей, сбой доставки не влияет на торговлю.
type Broadcaster interface {
	BroadcastCycleSummary(summary *models.CycleSummary)
	BroadcastTrade(trade *models.TradeRecord)
	BroadcastPosition(p *models.Position)
	BroadcastNotification(n *models.Notification)
}
