package models

import (
	"time"

	"coinbot/pkg/utils"
)

// Position представляет открытую спотовую позицию по инструменту.
// Единственный владелец состояния PositionLedger, изменения только через переходы.
type Position struct {
	Symbol          string     `json:"symbol" db:"symbol"`                     // BTCUSDT
	Status          string     `json:"status" db:"status"`                     // ENTERED, PARTIAL, CLOSED
	Quantity        float64    `json:"quantity" db:"quantity"`                 // текущий размер в базовой монете
	OriginalQty     float64    `json:"original_qty" db:"original_qty"`         // размер на момент входа
	EntryPrice      float64    `json:"entry_price" db:"entry_price"`
	StopLoss        float64    `json:"stop_loss" db:"stop_loss"`               // всегда ниже цены входа
	FirstTarget     float64    `json:"first_target" db:"first_target"`         // между входом и вторым тейком
	SecondTarget    float64    `json:"second_target" db:"second_target"`
	FirstTargetHit  bool       `json:"first_target_hit" db:"first_target_hit"`
	SecondTargetHit bool       `json:"second_target_hit" db:"second_target_hit"`
	HighestClose    float64    `json:"highest_close" db:"highest_close"`       // максимум close с момента входа (трейлинг)
	EntryTime       time.Time  `json:"entry_time" db:"entry_time"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty" db:"closed_at"`
}

// Статусы позиции (state machine)
const (
	PositionFlat    = "FLAT"    // записи нет, позиция отсутствует
	PositionEntered = "ENTERED" // полный размер, тейки не сработали
	PositionPartial = "PARTIAL" // продано 50%, стоп перенесен в безубыток
	PositionClosed  = "CLOSED"  // терминальное, запись удалена из активной карты
)

// RemainingRisk возвращает зафиксированный риск позиции:
// доля потерь от входа до стопа, взвешенная на размер.
func (p *Position) RemainingRisk() float64 {
	return p.Quantity * utils.CalculatePositionRisk(p.EntryPrice, p.StopLoss)
}

// IsOpen возвращает true если позиция активна
func (p *Position) IsOpen() bool {
	return p.Status == PositionEntered || p.Status == PositionPartial
}
