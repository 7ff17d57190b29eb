package bot

import (
	"fmt"

	"coinbot/internal/models"
)

// TargetPlan представляет рассчитанные уровни стопа и тейков для входа
type TargetPlan struct {
	StopLoss     float64
	FirstTarget  float64
	SecondTarget float64
}

// TargetPlanner рассчитывает уровни для нового входа и кандидата
// трейлинг-стопа для открытой позиции. Реализация выбирается настройкой
// target_mode, обе схемы взаимозаменяемы.
type TargetPlanner interface {
	// Plan возвращает уровни для входа по указанной цене
	Plan(entryPrice float64, v models.IndicatorValues) (TargetPlan, error)

	// Trail возвращает кандидата нового стопа для открытой позиции.
	// Ноль означает "без изменений".
	Trail(p *models.Position, v models.IndicatorValues) float64
}

// NewTargetPlanner создает планировщик целей из торговых настроек
func NewTargetPlanner(settings *models.TradingSettings) (TargetPlanner, error) {
	switch settings.TargetMode {
	case models.TargetModeVolatility:
		return &VolatilityTargets{
			StopMult:    settings.StopATRMult,
			Target1Mult: settings.Target1ATRMult,
			Target2Mult: settings.Target2ATRMult,
		}, nil
	case models.TargetModeFixed, "":
		return &FixedPctTargets{
			StopPct:    settings.StopPct,
			Target1Pct: settings.Target1Pct,
			Target2Pct: settings.Target2Pct,
		}, nil
	default:
		return nil, fmt.Errorf("unknown target mode %q", settings.TargetMode)
	}
}

// VolatilityTargets рассчитывает уровни от ATR.
// Трейлинг ведется в стиле chandelier: максимум close с момента входа
// минус множитель ATR.
type VolatilityTargets struct {
	StopMult    float64
	Target1Mult float64
	Target2Mult float64
}

func (t *VolatilityTargets) Plan(entryPrice float64, v models.IndicatorValues) (TargetPlan, error) {
	if v.ATR14 <= 0 {
		return TargetPlan{}, fmt.Errorf("atr is not available")
	}

	plan := TargetPlan{
		StopLoss:     entryPrice - t.StopMult*v.ATR14,
		FirstTarget:  entryPrice + t.Target1Mult*v.ATR14,
		SecondTarget: entryPrice + t.Target2Mult*v.ATR14,
	}
	if plan.StopLoss <= 0 || plan.StopLoss >= entryPrice {
		return TargetPlan{}, fmt.Errorf("degenerate stop %v for entry %v", plan.StopLoss, entryPrice)
	}
	if plan.FirstTarget >= plan.SecondTarget {
		return TargetPlan{}, fmt.Errorf("degenerate targets %v/%v", plan.FirstTarget, plan.SecondTarget)
	}
	return plan, nil
}

func (t *VolatilityTargets) Trail(p *models.Position, v models.IndicatorValues) float64 {
	if v.ATR14 <= 0 {
		return 0
	}
	return p.HighestClose - t.StopMult*v.ATR14
}

// FixedPctTargets рассчитывает уровни фиксированными процентами от входа.
// Трейлинга нет, стоп двигается только переходом в безубыток.
type FixedPctTargets struct {
	StopPct    float64
	Target1Pct float64
	Target2Pct float64
}

func (t *FixedPctTargets) Plan(entryPrice float64, v models.IndicatorValues) (TargetPlan, error) {
	if t.StopPct <= 0 || t.Target1Pct <= 0 || t.Target2Pct <= t.Target1Pct {
		return TargetPlan{}, fmt.Errorf("invalid percentage config: stop %v, targets %v/%v", t.StopPct, t.Target1Pct, t.Target2Pct)
	}
	if t.StopPct >= 1 {
		return TargetPlan{}, fmt.Errorf("stop percentage %v must be below 1", t.StopPct)
	}

	return TargetPlan{
		StopLoss:     entryPrice * (1 - t.StopPct),
		FirstTarget:  entryPrice * (1 + t.Target1Pct),
		SecondTarget: entryPrice * (1 + t.Target2Pct),
	}, nil
}

func (t *FixedPctTargets) Trail(p *models.Position, v models.IndicatorValues) float64 {
	return 0
}
