package handlers

import (
	"net/http"
	"strconv"

	"coinbot/internal/models"
)

const (
	defaultTradeLimit = 100
	maxTradeLimit     = 500
)

// TradeReader читает историю сделок
type TradeReader interface {
	GetRecent(limit int) ([]*models.TradeRecord, error)
	GetBySymbol(symbol string, limit int) ([]*models.TradeRecord, error)
}

// TradeHandler отвечает за просмотр истории сделок
//
// Endpoints:
// - GET /api/v1/trades - последние сделки
// - GET /api/v1/trades?symbol=BTCUSDT - сделки по инструменту
// - GET /api/v1/trades?limit=50 - ограничение количества
type TradeHandler struct {
	trades TradeReader
}

// NewTradeHandler создает новый TradeHandler
func NewTradeHandler(trades TradeReader) *TradeHandler {
	return &TradeHandler{trades: trades}
}

// GetTradesResponse представляет ответ списка сделок
type GetTradesResponse struct {
	Trades []*models.TradeRecord `json:"trades"`
	Total  int                   `json:"total"`
}

// GetTrades возвращает историю сделок
// GET /api/v1/trades
func (h *TradeHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradeLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxTradeLimit {
			parsed = maxTradeLimit
		}
		limit = parsed
	}

	var (
		trades []*models.TradeRecord
		err    error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		trades, err = h.trades.GetBySymbol(symbol, limit)
	} else {
		trades, err = h.trades.GetRecent(limit)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	respondJSON(w, http.StatusOK, GetTradesResponse{Trades: trades, Total: len(trades)})
}
