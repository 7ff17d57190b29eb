package exchange

import (
	"fmt"
	"strings"
)

// SupportedExchanges - список поддерживаемых площадок
var SupportedExchanges = []string{
	"binance",
	"paper",
}

// NewExchange создает новый экземпляр биржи по имени.
// Для "paper" рыночные данные берутся с реальной биржи, торговля симулируется.
func NewExchange(name string) (Exchange, error) {
	name = strings.ToLower(name)

	switch name {
	case "binance":
		return NewBinance(), nil
	case "paper":
		return NewPaperExchange(NewBinance(), "USDT", 10000), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}
}

// IsSupported проверяет, поддерживается ли площадка
func IsSupported(name string) bool {
	name = strings.ToLower(name)
	for _, supported := range SupportedExchanges {
		if name == supported {
			return true
		}
	}
	return false
}
