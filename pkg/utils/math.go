package utils

import (
	"math"
)

// math.go - математические утилиты для торговых операций
//
// Все функции являются чистыми (pure functions) без побочных эффектов.

// RoundToLotSize округляет значение ВНИЗ до ближайшего кратного lotSize.
//
// Используется для округления объёма ордера до минимального шага биржи.
// Округление вниз гарантирует, что мы не превысим доступные средства.
//
// Примеры:
//   - RoundToLotSize(0.123456, 0.001) = 0.123
//   - RoundToLotSize(1.999, 0.01) = 1.99
//
// Если lotSize <= 0, возвращает исходное значение.
func RoundToLotSize(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Floor(value/lotSize) * lotSize
}

// RoundToLotSizeUp округляет значение ВВЕРХ до ближайшего кратного lotSize.
// Используется когда нужно гарантировать минимальный объём (например, для minQty).
func RoundToLotSizeUp(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Ceil(value/lotSize) * lotSize
}

// RoundToLotSizeNearest округляет к ближайшему кратному lotSize
func RoundToLotSizeNearest(value, lotSize float64) float64 {
	if lotSize <= 0 {
		return value
	}
	return math.Round(value/lotSize) * lotSize
}

// CalculateRealizedPnl рассчитывает реализованный PNL спотовой продажи.
//
// Формула:
//
//	PNL = (P_выхода - P_входа) × объём - комиссия
//
// Параметры:
//   - entryPrice: средняя цена входа в позицию
//   - exitPrice: средняя цена исполнения продажи
//   - quantity: проданный объём в монетах актива
//   - fee: комиссия продажи в валюте котировки
//
// Если quantity <= 0, возвращает 0.
func CalculateRealizedPnl(entryPrice, exitPrice, quantity, fee float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return (exitPrice-entryPrice)*quantity - fee
}

// CalculatePositionRisk рассчитывает риск позиции как долю вложенной котировки.
//
// Формула:
//
//	риск = (P_входа - стоп) / P_входа
//
// Для стопа выше или равного цене входа (безубыток после первого тейка)
// риск равен нулю. Если entryPrice <= 0, возвращает 0.
func CalculatePositionRisk(entryPrice, stopLoss float64) float64 {
	if entryPrice <= 0 {
		return 0
	}
	risk := (entryPrice - stopLoss) / entryPrice
	if risk < 0 {
		return 0
	}
	return risk
}

// Abs возвращает абсолютное значение
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает меньшее из двух значений
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max возвращает большее из двух значений
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp ограничивает значение диапазоном [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
