package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// validator.go - валидация входных данных API и конфигурации

var (
	symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)
	apiKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// Котируемые активы в порядке убывания длины для корректного разбора
	knownQuotes = []string{"USDT", "USDC", "BUSD", "BTC", "ETH"}
)

// ValidateSymbol проверяет формат торгового символа.
// Допустимы варианты с разделителями (BTC-USDT, BTC/USDT, BTC_USDT),
// они нормализуются перед проверкой.
func ValidateSymbol(symbol string) error {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !symbolPattern.MatchString(normalized) {
		return fmt.Errorf("invalid symbol format: %q", symbol)
	}
	return nil
}

// IsValidSymbol возвращает true для корректного символа
func IsValidSymbol(symbol string) bool {
	return ValidateSymbol(symbol) == nil
}

// NormalizeSymbol приводит символ к каноническому виду: верхний регистр
// без разделителей
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, sep := range []string{"-", "_", "/"} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

// ExtractBaseCurrency возвращает базовый актив символа (BTC из BTCUSDT)
func ExtractBaseCurrency(symbol string) string {
	s := NormalizeSymbol(symbol)
	for _, quote := range knownQuotes {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)]
		}
	}
	return s
}

// ExtractQuoteCurrency возвращает котируемый актив символа (USDT из BTCUSDT)
func ExtractQuoteCurrency(symbol string) string {
	s := NormalizeSymbol(symbol)
	for _, quote := range knownQuotes {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return quote
		}
	}
	return ""
}

// ValidateVolume проверяет объем сделки
func ValidateVolume(volume float64) error {
	if volume <= 0 {
		return fmt.Errorf("volume must be positive, got %v", volume)
	}
	if volume > 1e9 {
		return fmt.Errorf("volume %v is unreasonably large", volume)
	}
	return nil
}

// ValidatePercentage проверяет процентное значение 0..100
func ValidatePercentage(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("percentage must be between 0 and 100, got %v", pct)
	}
	return nil
}

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// ValidateAPIKey делает базовую проверку формата API ключа биржи
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key is empty")
	}
	if !apiKeyPattern.MatchString(apiKey) {
		return fmt.Errorf("invalid api key format")
	}
	return nil
}

// ValidateAPISecret делает базовую проверку секрета биржи.
// Формат секретов различается между площадками, проверяется только длина.
func ValidateAPISecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("api secret is empty")
	}
	if len(secret) < 16 {
		return fmt.Errorf("api secret is too short")
	}
	return nil
}

// ValidateExchange проверяет имя биржи против поддерживаемого списка
func ValidateExchange(name string) error {
	normalized := NormalizeExchange(name)
	if normalized == "" {
		return fmt.Errorf("exchange name is empty")
	}
	switch normalized {
	case "binance", "paper":
		return nil
	default:
		return fmt.Errorf("unsupported exchange: %q", name)
	}
}

// NormalizeExchange приводит имя биржи к каноническому виду
func NormalizeExchange(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
