package websocket

import (
	"time"

	"coinbot/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeCycleSummary - итог завершенного цикла анализа.
	// Отправляется один раз в конце каждого цикла.
	MessageTypeCycleSummary MessageType = "cycleSummary"

	// MessageTypePosition - изменение состояния позиции
	// (вход, частичная фиксация, закрытие, подтяжка стопа)
	MessageTypePosition MessageType = "position"

	// MessageTypeTrade - исполненная сделка
	MessageTypeTrade MessageType = "trade"

	// MessageTypeNotification - новое уведомление
	MessageTypeNotification MessageType = "notification"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// CycleSummaryMessage - сообщение с итогом цикла
type CycleSummaryMessage struct {
	BaseMessage
	Data *models.CycleSummary `json:"data"`
}

// PositionMessage - сообщение об изменении позиции
type PositionMessage struct {
	BaseMessage
	Data *models.Position `json:"data"`
}

// TradeMessage - сообщение об исполненной сделке
type TradeMessage struct {
	BaseMessage
	Data *models.TradeRecord `json:"data"`
}

// NotificationMessage - сообщение с уведомлением
type NotificationMessage struct {
	BaseMessage
	Data *models.Notification `json:"data"`
}

// NewCycleSummaryMessage создает сообщение с итогом цикла
func NewCycleSummaryMessage(summary *models.CycleSummary) *CycleSummaryMessage {
	return &CycleSummaryMessage{
		BaseMessage: BaseMessage{Type: MessageTypeCycleSummary, Timestamp: time.Now()},
		Data:        summary,
	}
}

// NewPositionMessage создает сообщение об изменении позиции
func NewPositionMessage(p *models.Position) *PositionMessage {
	return &PositionMessage{
		BaseMessage: BaseMessage{Type: MessageTypePosition, Timestamp: time.Now()},
		Data:        p,
	}
}

// NewTradeMessage создает сообщение об исполненной сделке
func NewTradeMessage(trade *models.TradeRecord) *TradeMessage {
	return &TradeMessage{
		BaseMessage: BaseMessage{Type: MessageTypeTrade, Timestamp: time.Now()},
		Data:        trade,
	}
}

// NewNotificationMessage создает сообщение с уведомлением
func NewNotificationMessage(n *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{Type: MessageTypeNotification, Timestamp: time.Now()},
		Data:        n,
	}
}
