package handlers

import (
	"net/http"

	"coinbot/internal/models"
)

// StatusProvider отдает текущее состояние торгового движка
type StatusProvider interface {
	Status() models.EngineStatus
}

// StatusHandler отвечает за endpoint состояния бота
//
// Endpoints:
// - GET /api/v1/status - текущее состояние движка, открытые позиции,
//   дневные счетчики
type StatusHandler struct {
	engine StatusProvider
}

// NewStatusHandler создает новый StatusHandler
func NewStatusHandler(engine StatusProvider) *StatusHandler {
	return &StatusHandler{engine: engine}
}

// GetStatus возвращает состояние движка
// GET /api/v1/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Status())
}
