package bot

import (
	"coinbot/internal/models"
)

// Пороговые уровни осцилляторов
const (
	rsiOversold   = 30.0
	stochOversold = 20.0
	maxScore      = 4
)

// ScoreResult представляет результат скоринга инструмента
type ScoreResult struct {
	Score  int    // 0..4
	Regime string // bullish, neutral, bearish, unknown
}

// Scorer преобразует индикаторы в очки входа и режим рынка.
// Чистая функция: одинаковые входы дают одинаковый результат.
type Scorer interface {
	Score(v models.IndicatorValues, lastPrice float64) ScoreResult
}

// WeightedScorer суммирует независимые условия с настраиваемыми весами
type WeightedScorer struct {
	weights models.Weights
}

// NewScorer создает скорер из торговых настроек
func NewScorer(settings *models.TradingSettings) Scorer {
	return &WeightedScorer{weights: settings.ScoreWeights}
}

// Score возвращает очки входа 0..4 и режим.
// При нехватке истории очки 0 и режим unknown, ошибок не бывает.
func (s *WeightedScorer) Score(v models.IndicatorValues, lastPrice float64) ScoreResult {
	if !v.EnoughHistory {
		return ScoreResult{Score: 0, Regime: models.RegimeUnknown}
	}

	score := 0

	// Цена у нижней полосы волатильности
	if v.BandLower > 0 && lastPrice <= v.BandLower {
		score += s.weights.BandTouch
	}

	// Осциллятор в зоне перепроданности
	if v.RSI14 < rsiOversold {
		score += s.weights.Oversold
	}

	// Бычье пересечение стохастика в зоне перепроданности
	if v.PrevStochK <= v.PrevStochD && v.StochK > v.StochD && v.StochK < stochOversold {
		score += s.weights.StochCross
	}

	if score > maxScore {
		score = maxScore
	}

	return ScoreResult{Score: score, Regime: classifyRegime(v, lastPrice)}
}

// classifyRegime определяет режим по порядку длинных скользящих средних.
// Режим bearish запрещает новые входы.
func classifyRegime(v models.IndicatorValues, lastPrice float64) string {
	switch {
	case v.SMA200 <= 0 || v.SMA50 <= 0:
		return models.RegimeUnknown
	case lastPrice > v.SMA200 && v.SMA50 > v.SMA200:
		return models.RegimeBullish
	case lastPrice < v.SMA200 && v.SMA50 < v.SMA200:
		return models.RegimeBearish
	default:
		return models.RegimeNeutral
	}
}
