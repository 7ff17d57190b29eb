package bot

import (
	"fmt"
	"sort"

	"coinbot/internal/models"
	"coinbot/pkg/utils"
)

// PortfolioCoordinator применяет портфельный допуск к рекомендациям цикла.
// Выходы сокращают риск и допускаются всегда, входы проходят бюджет слотов,
// потолок риска и дневные предохранители.
type PortfolioCoordinator struct {
	ledger *PositionLedger
}

// NewPortfolioCoordinator создает координатор поверх леджера
func NewPortfolioCoordinator(ledger *PositionLedger) *PortfolioCoordinator {
	return &PortfolioCoordinator{ledger: ledger}
}

// Admit возвращает упорядоченный список допущенных заявок (выходы первыми)
// и список отклонений. Порядок детерминирован: одинаковые кандидаты дают
// одинаковый результат.
func (c *PortfolioCoordinator) Admit(recs []models.Recommendation, settings *models.TradingSettings, daily *models.DailyStats) ([]models.ExecutionRequest, []models.Rejection) {
	var exits, enters []models.Recommendation
	for _, r := range recs {
		switch {
		case r.IsExit():
			exits = append(exits, r)
		case r.Action == models.ActionEnter:
			enters = append(enters, r)
		}
	}

	// Выходы в детерминированном порядке по символу
	sort.Slice(exits, func(i, j int) bool { return exits[i].Symbol < exits[j].Symbol })

	admitted := make([]models.ExecutionRequest, 0, len(exits)+len(enters))
	for _, r := range exits {
		admitted = append(admitted, toRequest(r))
	}

	var rejections []models.Rejection
	if len(enters) == 0 {
		return admitted, rejections
	}

	// Дневные предохранители отклоняют все входы разом
	if kind, detail := c.checkBreakers(settings, daily); kind != "" {
		for _, r := range enters {
			rejections = append(rejections, models.Rejection{Symbol: r.Symbol, Kind: kind, Detail: detail})
			RecordRejection(r.Symbol, kind)
		}
		return admitted, rejections
	}

	// Ранжирование: очки по убыванию, затем прибыль/риск, затем символ
	sort.Slice(enters, func(i, j int) bool {
		if enters[i].Score != enters[j].Score {
			return enters[i].Score > enters[j].Score
		}
		ri, rj := enters[i].RewardToRisk(), enters[j].RewardToRisk()
		if ri != rj {
			return ri > rj
		}
		return enters[i].Symbol < enters[j].Symbol
	})

	slots := settings.MaxPositions - c.ledger.OpenCount()
	aggregateRisk := c.ledger.AggregateRisk()

	for _, r := range enters {
		if slots <= 0 {
			rejections = append(rejections, models.Rejection{
				Symbol: r.Symbol,
				Kind:   models.ErrKindRiskLimit,
				Detail: fmt.Sprintf("position budget exhausted (%d max)", settings.MaxPositions),
			})
			RecordRejection(r.Symbol, models.ErrKindRiskLimit)
			continue
		}

		risk := entryRisk(r)
		if aggregateRisk+risk > settings.RiskCeiling {
			rejections = append(rejections, models.Rejection{
				Symbol: r.Symbol,
				Kind:   models.ErrKindRiskLimit,
				Detail: fmt.Sprintf("aggregate risk %.4f would exceed ceiling %.4f", aggregateRisk+risk, settings.RiskCeiling),
			})
			RecordRejection(r.Symbol, models.ErrKindRiskLimit)
			continue
		}

		admitted = append(admitted, toRequest(r))
		slots--
		aggregateRisk += risk
	}

	return admitted, rejections
}

// checkBreakers возвращает класс и причину сработавшего предохранителя
func (c *PortfolioCoordinator) checkBreakers(settings *models.TradingSettings, daily *models.DailyStats) (kind, detail string) {
	if daily == nil {
		return "", ""
	}
	if settings.MaxDailyTrades > 0 && daily.TradeCount >= settings.MaxDailyTrades {
		return models.ErrKindCircuitBreaker, fmt.Sprintf("daily trade count %d reached limit %d", daily.TradeCount, settings.MaxDailyTrades)
	}
	if settings.MaxDailyLoss > 0 && daily.RealizedLoss >= settings.MaxDailyLoss {
		return models.ErrKindCircuitBreaker, fmt.Sprintf("daily loss %.2f reached limit %.2f", daily.RealizedLoss, settings.MaxDailyLoss)
	}
	if settings.MaxConsecLosses > 0 && daily.ConsecutiveLoss >= settings.MaxConsecLosses {
		return models.ErrKindCircuitBreaker, fmt.Sprintf("%d consecutive losses reached limit %d", daily.ConsecutiveLoss, settings.MaxConsecLosses)
	}
	return "", ""
}

// entryRisk возвращает зафиксированный риск кандидата на вход
func entryRisk(r models.Recommendation) float64 {
	return r.Quantity * utils.CalculatePositionRisk(r.RefPrice, r.StopLoss)
}

// toRequest преобразует рекомендацию в заявку на исполнение
func toRequest(r models.Recommendation) models.ExecutionRequest {
	return models.ExecutionRequest{
		Symbol:   r.Symbol,
		Cycle:    r.Cycle,
		Action:   r.Action,
		Reason:   r.Reason,
		RefPrice: r.RefPrice,
		Quantity: r.Quantity,
		StopLoss: r.StopLoss,
		Target1:  r.Target1,
		Target2:  r.Target2,
	}
}
