package indicators

import "math"

// Периоды расчета. Самый длинный lookback определяет минимум истории.
const (
	PeriodSMAFast  = 20
	PeriodSMAMid   = 50
	PeriodSMASlow  = 200
	PeriodRSI      = 14
	PeriodBand     = 20
	PeriodATR      = 14
	PeriodStoch    = 14
	PeriodStochD   = 3
	BandMultiplier = 2.0

	// MinHistory определяет минимальное число свечей для достоверных значений
	MinHistory = PeriodSMASlow + 1
)

// SMA возвращает простую скользящую среднюю последних period значений.
// Возвращает 0 при недостатке данных.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// RSI возвращает серию RSI со сглаживанием Уайлдера.
// Значения до индекса period не заполняются (нули).
func RSI(closes []float64, period int) []float64 {
	rsi := make([]float64, len(closes))
	if len(closes) < period+1 {
		return rsi
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		rsi[period] = 100
	} else {
		rs := avgGain / avgLoss
		rsi[period] = 100 - 100/(1+rs)
	}

	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i-1]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i-1]) / float64(period)
		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - 100/(1+rs)
		}
	}
	return rsi
}

// Bands представляет полосы волатильности
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands возвращает полосы по SMA и стандартному отклонению
func BollingerBands(closes []float64, period int, multiplier float64) Bands {
	length := len(closes)
	b := Bands{
		Upper:  make([]float64, length),
		Middle: make([]float64, length),
		Lower:  make([]float64, length),
	}
	if length < period {
		return b
	}

	for i := period - 1; i < length; i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			sum += closes[i-j]
		}
		ma := sum / float64(period)
		b.Middle[i] = ma

		sumSq := 0.0
		for j := 0; j < period; j++ {
			d := closes[i-j] - ma
			sumSq += d * d
		}
		std := math.Sqrt(sumSq / float64(period))

		b.Upper[i] = ma + multiplier*std
		b.Lower[i] = ma - multiplier*std
	}
	return b
}

// ATR возвращает серию Average True Range со сглаживанием Уайлдера
func ATR(highs, lows, closes []float64, period int) []float64 {
	length := len(closes)
	atr := make([]float64, length)
	if length < period+1 {
		return atr
	}

	trs := make([]float64, length)
	trs[0] = highs[0] - lows[0]
	for i := 1; i < length; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr := hl
		if hc > tr {
			tr = hc
		}
		if lc > tr {
			tr = lc
		}
		trs[i] = tr
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr[period-1] = sum / float64(period)

	for i := period; i < length; i++ {
		atr[i] = (atr[i-1]*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// Stochastic возвращает серии %K и %D (SMA от %K)
func Stochastic(highs, lows, closes []float64, period, dPeriod int) (k, d []float64) {
	length := len(closes)
	k = make([]float64, length)
	d = make([]float64, length)
	if length < period {
		return k, d
	}

	for i := period - 1; i < length; i++ {
		hh := highs[i]
		ll := lows[i]
		for j := 1; j < period; j++ {
			if highs[i-j] > hh {
				hh = highs[i-j]
			}
			if lows[i-j] < ll {
				ll = lows[i-j]
			}
		}
		if hh == ll {
			k[i] = 50
		} else {
			k[i] = (closes[i] - ll) / (hh - ll) * 100
		}
	}

	for i := period - 1 + dPeriod - 1; i < length; i++ {
		sum := 0.0
		for j := 0; j < dPeriod; j++ {
			sum += k[i-j]
		}
		d[i] = sum / float64(dPeriod)
	}
	return k, d
}
