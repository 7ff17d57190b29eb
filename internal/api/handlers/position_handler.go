package handlers

import (
	"net/http"

	"coinbot/internal/models"
)

// PositionReader читает открытые позиции
type PositionReader interface {
	Snapshot() []models.Position
}

// PositionHandler отвечает за просмотр открытых позиций
//
// Endpoints:
// - GET /api/v1/positions - список открытых позиций из леджера
//
// Позиции отдаются из памяти движка, не из БД: леджер и хранилище
// синхронны по построению, а движок единственный владелец состояния.
type PositionHandler struct {
	ledger PositionReader
}

// NewPositionHandler создает новый PositionHandler
func NewPositionHandler(ledger PositionReader) *PositionHandler {
	return &PositionHandler{ledger: ledger}
}

// GetPositionsResponse представляет ответ списка позиций
type GetPositionsResponse struct {
	Positions []models.Position `json:"positions"`
	Total     int               `json:"total"`
}

// GetPositions возвращает открытые позиции
// GET /api/v1/positions
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	positions := h.ledger.Snapshot()
	respondJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}
