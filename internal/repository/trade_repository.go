package repository

import (
	"database/sql"
	"errors"
	"time"

	"coinbot/internal/models"
)

// Ошибки репозитория сделок
var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository - работа с таблицей trades (история исполнений)
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository создает новый экземпляр репозитория
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create создает запись о сделке
func (r *TradeRepository) Create(trade *models.TradeRecord) error {
	query := `
		INSERT INTO trades (symbol, action, reason, side, price, quantity, fee, realized_pnl, cycle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	trade.CreatedAt = time.Now()

	return r.db.QueryRow(
		query,
		trade.Symbol,
		trade.Action,
		trade.Reason,
		trade.Side,
		trade.Price,
		trade.Quantity,
		trade.Fee,
		trade.RealizedPnl,
		trade.Cycle,
		trade.CreatedAt,
	).Scan(&trade.ID)
}

// GetRecent возвращает последние N сделок
func (r *TradeRepository) GetRecent(limit int) ([]*models.TradeRecord, error) {
	query := `
		SELECT id, symbol, action, reason, side, price, quantity, fee, realized_pnl, cycle, created_at
		FROM trades
		ORDER BY created_at DESC
		LIMIT $1`

	return r.queryTrades(query, limit)
}

// GetBySymbol возвращает сделки по инструменту
func (r *TradeRepository) GetBySymbol(symbol string, limit int) ([]*models.TradeRecord, error) {
	query := `
		SELECT id, symbol, action, reason, side, price, quantity, fee, realized_pnl, cycle, created_at
		FROM trades
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2`

	return r.queryTrades(query, symbol, limit)
}

// GetInTimeRange возвращает сделки за период в хронологическом порядке
func (r *TradeRepository) GetInTimeRange(from, to time.Time) ([]*models.TradeRecord, error) {
	query := `
		SELECT id, symbol, action, reason, side, price, quantity, fee, realized_pnl, cycle, created_at
		FROM trades
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC`

	return r.queryTrades(query, from, to)
}

// GetDailyStats возвращает дневные агрегаты для предохранителей.
// Счетчик входов, реализованный убыток и серия убыточных закрытий
// выводятся из истории, поэтому переживают рестарт процесса.
func (r *TradeRepository) GetDailyStats(dayStart, dayEnd time.Time) (*models.DailyStats, error) {
	trades, err := r.GetInTimeRange(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	stats := &models.DailyStats{Day: dayStart}
	for _, t := range trades {
		if t.Action == models.ActionEnter {
			stats.TradeCount++
			continue
		}
		// Закрывающие сделки
		stats.RealizedPnl += t.RealizedPnl
		if t.Action == models.ActionExitFull {
			if t.RealizedPnl < 0 {
				stats.RealizedLoss += -t.RealizedPnl
				stats.LossCount++
				stats.ConsecutiveLoss++
			} else {
				stats.WinCount++
				stats.ConsecutiveLoss = 0
			}
		}
	}

	return stats, nil
}

// Count возвращает общее количество сделок
func (r *TradeRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM trades`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteOlderThan удаляет сделки старше указанной даты
func (r *TradeRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	query := `DELETE FROM trades WHERE created_at < $1`

	result, err := r.db.Exec(query, timestamp)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryTrades выполняет запрос и сканирует строки сделок
func (r *TradeRepository) queryTrades(query string, args ...interface{}) ([]*models.TradeRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*models.TradeRecord
	for rows.Next() {
		t := &models.TradeRecord{}
		err := rows.Scan(
			&t.ID,
			&t.Symbol,
			&t.Action,
			&t.Reason,
			&t.Side,
			&t.Price,
			&t.Quantity,
			&t.Fee,
			&t.RealizedPnl,
			&t.Cycle,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}
