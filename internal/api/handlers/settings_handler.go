package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"coinbot/internal/models"
	"coinbot/pkg/utils"
)

// SettingsStore читает и обновляет торговые настройки
type SettingsStore interface {
	Get() (*models.TradingSettings, error)
	Update(s *models.TradingSettings) error
}

// SettingsHandler отвечает за управление торговыми настройками
//
// Endpoints:
// - GET /api/v1/settings - текущие настройки
// - PUT /api/v1/settings - полное обновление настроек
//
// Обновленные настройки подхватываются движком в начале следующего
// цикла, перезапуск не требуется.
type SettingsHandler struct {
	store SettingsStore
}

// NewSettingsHandler создает новый SettingsHandler
func NewSettingsHandler(store SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings возвращает текущие настройки
// GET /api/v1/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Get()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings обновляет настройки целиком
// PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.TradingSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := validateSettings(&settings); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Update(&settings); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	updated, err := h.store.Get()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload settings")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// validateSettings проверяет торговые параметры перед записью
func validateSettings(s *models.TradingSettings) error {
	if len(s.Symbols) < 1 || len(s.Symbols) > 3 {
		return fmt.Errorf("symbols must contain 1 to 3 instruments, got %d", len(s.Symbols))
	}
	for _, symbol := range s.Symbols {
		if !utils.IsValidSymbol(symbol) {
			return fmt.Errorf("invalid symbol %q", symbol)
		}
	}

	if s.MaxPositions < 1 || s.MaxPositions > len(s.Symbols) {
		return fmt.Errorf("max_positions must be between 1 and %d, got %d", len(s.Symbols), s.MaxPositions)
	}
	if s.MinScore < 0 || s.MinScore > 4 {
		return fmt.Errorf("min_score must be between 0 and 4, got %d", s.MinScore)
	}
	if s.RiskCeiling <= 0 || s.RiskCeiling > 1 {
		return fmt.Errorf("risk_ceiling must be in (0, 1], got %v", s.RiskCeiling)
	}
	if s.PositionQuote <= 0 {
		return fmt.Errorf("position_quote must be positive, got %v", s.PositionQuote)
	}

	if s.MaxDailyTrades < 0 || s.MaxDailyLoss < 0 || s.MaxConsecLosses < 0 {
		return fmt.Errorf("circuit breaker limits cannot be negative")
	}

	switch s.TargetMode {
	case models.TargetModeVolatility:
		if s.StopATRMult <= 0 || s.Target1ATRMult <= 0 || s.Target2ATRMult <= s.Target1ATRMult {
			return fmt.Errorf("atr multipliers must be positive with target2 above target1")
		}
	case models.TargetModeFixed, "":
		if s.StopPct <= 0 || s.StopPct >= 1 {
			return fmt.Errorf("stop_pct must be in (0, 1), got %v", s.StopPct)
		}
		if s.Target1Pct <= 0 || s.Target2Pct <= s.Target1Pct {
			return fmt.Errorf("target percentages must be positive with target2 above target1")
		}
	default:
		return fmt.Errorf("unknown target_mode %q", s.TargetMode)
	}

	if s.ScoreWeights.BandTouch < 0 || s.ScoreWeights.Oversold < 0 || s.ScoreWeights.StochCross < 0 {
		return fmt.Errorf("score weights cannot be negative")
	}

	return nil
}
