package indicators

import "coinbot/internal/models"

// Compute собирает IndicatorValues из серии свечей.
// При нехватке истории выставляет EnoughHistory=false, значения при этом
// не достоверны и потребитель обязан их игнорировать.
func Compute(candles []models.Candle) models.IndicatorValues {
	v := models.IndicatorValues{
		HistoryDepth:  len(candles),
		EnoughHistory: len(candles) >= MinHistory,
	}
	if len(candles) == 0 {
		return v
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	v.SMA20 = SMA(closes, PeriodSMAFast)
	v.SMA50 = SMA(closes, PeriodSMAMid)
	v.SMA200 = SMA(closes, PeriodSMASlow)

	last := len(candles) - 1

	rsi := RSI(closes, PeriodRSI)
	v.RSI14 = rsi[last]

	bands := BollingerBands(closes, PeriodBand, BandMultiplier)
	v.BandUpper = bands.Upper[last]
	v.BandMiddle = bands.Middle[last]
	v.BandLower = bands.Lower[last]

	atr := ATR(highs, lows, closes, PeriodATR)
	v.ATR14 = atr[last]

	k, d := Stochastic(highs, lows, closes, PeriodStoch, PeriodStochD)
	v.StochK = k[last]
	v.StochD = d[last]
	if last > 0 {
		v.PrevStochK = k[last-1]
		v.PrevStochD = d[last-1]
	}

	return v
}
