package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"coinbot/internal/models"
)

// Ошибки репозитория настроек
var (
	ErrSettingsNotFound = errors.New("settings not found")
)

// SettingsRepository - работа с таблицей settings.
// Одна запись (id=1), перечитывается движком в начале каждого цикла.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository создает новый экземпляр репозитория
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get возвращает торговые настройки (всегда id=1, одна запись)
func (r *SettingsRepository) Get() (*models.TradingSettings, error) {
	query := `
		SELECT id, symbols, max_positions, min_score, risk_ceiling, position_quote,
			max_daily_trades, max_daily_loss, max_consec_losses,
			target_mode, stop_atr_mult, target1_atr_mult, target2_atr_mult,
			stop_pct, target1_pct, target2_pct,
			score_weights, notify_prefs, updated_at
		FROM settings
		WHERE id = 1`

	s := &models.TradingSettings{}
	var weightsJSON, prefsJSON []byte
	err := r.db.QueryRow(query).Scan(
		&s.ID,
		pq.Array(&s.Symbols),
		&s.MaxPositions,
		&s.MinScore,
		&s.RiskCeiling,
		&s.PositionQuote,
		&s.MaxDailyTrades,
		&s.MaxDailyLoss,
		&s.MaxConsecLosses,
		&s.TargetMode,
		&s.StopATRMult,
		&s.Target1ATRMult,
		&s.Target2ATRMult,
		&s.StopPct,
		&s.Target1Pct,
		&s.Target2Pct,
		&weightsJSON,
		&prefsJSON,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.createDefault()
		}
		return nil, err
	}

	if len(weightsJSON) > 0 {
		if err := json.Unmarshal(weightsJSON, &s.ScoreWeights); err != nil {
			return nil, err
		}
	} else {
		s.ScoreWeights = defaultWeights()
	}

	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &s.NotifyPrefs); err != nil {
			return nil, err
		}
	} else {
		s.NotifyPrefs = defaultNotifyPrefs()
	}

	return s, nil
}

// Update обновляет настройки
func (r *SettingsRepository) Update(s *models.TradingSettings) error {
	weightsJSON, err := json.Marshal(s.ScoreWeights)
	if err != nil {
		return err
	}
	prefsJSON, err := json.Marshal(s.NotifyPrefs)
	if err != nil {
		return err
	}

	query := `
		UPDATE settings
		SET symbols = $1, max_positions = $2, min_score = $3, risk_ceiling = $4,
			position_quote = $5, max_daily_trades = $6, max_daily_loss = $7,
			max_consec_losses = $8, target_mode = $9,
			stop_atr_mult = $10, target1_atr_mult = $11, target2_atr_mult = $12,
			stop_pct = $13, target1_pct = $14, target2_pct = $15,
			score_weights = $16, notify_prefs = $17, updated_at = $18
		WHERE id = 1`

	s.UpdatedAt = time.Now()

	result, err := r.db.Exec(query,
		pq.Array(s.Symbols),
		s.MaxPositions,
		s.MinScore,
		s.RiskCeiling,
		s.PositionQuote,
		s.MaxDailyTrades,
		s.MaxDailyLoss,
		s.MaxConsecLosses,
		s.TargetMode,
		s.StopATRMult,
		s.Target1ATRMult,
		s.Target2ATRMult,
		s.StopPct,
		s.Target1Pct,
		s.Target2Pct,
		weightsJSON,
		prefsJSON,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

// createDefault создает запись настроек с дефолтными значениями
func (r *SettingsRepository) createDefault() (*models.TradingSettings, error) {
	s := DefaultSettings()

	weightsJSON, err := json.Marshal(s.ScoreWeights)
	if err != nil {
		return nil, err
	}
	prefsJSON, err := json.Marshal(s.NotifyPrefs)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO settings (id, symbols, max_positions, min_score, risk_ceiling, position_quote,
			max_daily_trades, max_daily_loss, max_consec_losses,
			target_mode, stop_atr_mult, target1_atr_mult, target2_atr_mult,
			stop_pct, target1_pct, target2_pct,
			score_weights, notify_prefs, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.db.Exec(query,
		pq.Array(s.Symbols),
		s.MaxPositions,
		s.MinScore,
		s.RiskCeiling,
		s.PositionQuote,
		s.MaxDailyTrades,
		s.MaxDailyLoss,
		s.MaxConsecLosses,
		s.TargetMode,
		s.StopATRMult,
		s.Target1ATRMult,
		s.Target2ATRMult,
		s.StopPct,
		s.Target1Pct,
		s.Target2Pct,
		weightsJSON,
		prefsJSON,
		s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// DefaultSettings возвращает настройки по умолчанию
func DefaultSettings() *models.TradingSettings {
	return &models.TradingSettings{
		ID:              1,
		Symbols:         []string{"BTCUSDT", "ETHUSDT"},
		MaxPositions:    2,
		MinScore:        3,
		RiskCeiling:     0.05,
		PositionQuote:   100,
		MaxDailyTrades:  10,
		MaxDailyLoss:    50,
		MaxConsecLosses: 3,
		TargetMode:      models.TargetModeFixed,
		StopATRMult:     2.0,
		Target1ATRMult:  1.5,
		Target2ATRMult:  3.0,
		StopPct:         0.02,
		Target1Pct:      0.015,
		Target2Pct:      0.03,
		ScoreWeights:    defaultWeights(),
		NotifyPrefs:     defaultNotifyPrefs(),
		UpdatedAt:       time.Now(),
	}
}

// defaultWeights возвращает веса скоринга по умолчанию
func defaultWeights() models.Weights {
	return models.Weights{
		BandTouch:  1,
		Oversold:   1,
		StochCross: 2,
	}
}

// defaultNotifyPrefs возвращает дефолтные настройки уведомлений
func defaultNotifyPrefs() models.NotificationPreferences {
	return models.NotificationPreferences{
		Entry:          true,
		ScaleOut:       true,
		Exit:           true,
		StopLoss:       true,
		CircuitBreaker: true,
		APIError:       true,
	}
}
