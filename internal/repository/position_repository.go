package repository

import (
	"database/sql"
	"errors"
	"time"

	"coinbot/internal/models"
)

// Ошибки репозитория позиций
var (
	ErrPositionNotFound = errors.New("position not found")
)

// PositionRepository - работа с таблицей positions.
// Одна запись на инструмент, запись синхронно сопровождает каждый
// переход состояния.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository создает новый экземпляр репозитория
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Upsert сохраняет позицию (insert или update по символу)
func (r *PositionRepository) Upsert(p *models.Position) error {
	query := `
		INSERT INTO positions (symbol, status, quantity, original_qty, entry_price, stop_loss,
			first_target, second_target, first_target_hit, second_target_hit, highest_close,
			entry_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (symbol) DO UPDATE SET
			status = EXCLUDED.status,
			quantity = EXCLUDED.quantity,
			original_qty = EXCLUDED.original_qty,
			entry_price = EXCLUDED.entry_price,
			stop_loss = EXCLUDED.stop_loss,
			first_target = EXCLUDED.first_target,
			second_target = EXCLUDED.second_target,
			first_target_hit = EXCLUDED.first_target_hit,
			second_target_hit = EXCLUDED.second_target_hit,
			highest_close = EXCLUDED.highest_close,
			entry_time = EXCLUDED.entry_time,
			updated_at = EXCLUDED.updated_at`

	p.UpdatedAt = time.Now()

	_, err := r.db.Exec(query,
		p.Symbol,
		p.Status,
		p.Quantity,
		p.OriginalQty,
		p.EntryPrice,
		p.StopLoss,
		p.FirstTarget,
		p.SecondTarget,
		p.FirstTargetHit,
		p.SecondTargetHit,
		p.HighestClose,
		p.EntryTime,
		p.UpdatedAt,
	)
	return err
}

// Get возвращает позицию по символу
func (r *PositionRepository) Get(symbol string) (*models.Position, error) {
	query := `
		SELECT symbol, status, quantity, original_qty, entry_price, stop_loss,
			first_target, second_target, first_target_hit, second_target_hit, highest_close,
			entry_time, updated_at
		FROM positions
		WHERE symbol = $1`

	p := &models.Position{}
	err := r.db.QueryRow(query, symbol).Scan(
		&p.Symbol,
		&p.Status,
		&p.Quantity,
		&p.OriginalQty,
		&p.EntryPrice,
		&p.StopLoss,
		&p.FirstTarget,
		&p.SecondTarget,
		&p.FirstTargetHit,
		&p.SecondTargetHit,
		&p.HighestClose,
		&p.EntryTime,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetAll возвращает все сохраненные позиции (загрузка при старте)
func (r *PositionRepository) GetAll() ([]*models.Position, error) {
	query := `
		SELECT symbol, status, quantity, original_qty, entry_price, stop_loss,
			first_target, second_target, first_target_hit, second_target_hit, highest_close,
			entry_time, updated_at
		FROM positions
		ORDER BY symbol`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		p := &models.Position{}
		err := rows.Scan(
			&p.Symbol,
			&p.Status,
			&p.Quantity,
			&p.OriginalQty,
			&p.EntryPrice,
			&p.StopLoss,
			&p.FirstTarget,
			&p.SecondTarget,
			&p.FirstTargetHit,
			&p.SecondTargetHit,
			&p.HighestClose,
			&p.EntryTime,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}

// Delete удаляет позицию (полное закрытие)
func (r *PositionRepository) Delete(symbol string) error {
	query := `DELETE FROM positions WHERE symbol = $1`

	result, err := r.db.Exec(query, symbol)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPositionNotFound
	}

	return nil
}

// Count возвращает количество открытых позиций
func (r *PositionRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM positions`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
