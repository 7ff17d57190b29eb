package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"coinbot/internal/models"
	"coinbot/pkg/ratelimit"
	"coinbot/pkg/retry"
)

// Быстрый JSON для горячего пути разбора ответов биржи
var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	binanceBaseURL    = "https://api.binance.com"
	binanceRecvWindow = "5000"

	// Spot API: 1200 весовых единиц в минуту, держим запас
	binanceRequestsPerSec = 15
	binanceBurst          = 30
)

// Binance реализует интерфейс Exchange для спотового рынка Binance
type Binance struct {
	apiKey    string
	secretKey string

	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	retryCfg   retry.Config

	connected bool
}

// NewBinance создает новый экземпляр Binance.
// Использует глобальный HTTP клиент с connection pooling.
func NewBinance() *Binance {
	return &Binance{
		httpClient: GetGlobalHTTPClient().GetClient(),
		limiter:    ratelimit.NewRateLimiter(binanceRequestsPerSec, binanceBurst),
		retryCfg:   retry.NetworkConfig(),
	}
}

// sign создает подпись HMAC-SHA256 для приватных запросов
func (b *Binance) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(b.secretKey))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// doRequest выполняет HTTP запрос к Binance API.
// Приватные запросы подписываются, все запросы проходят через rate limiter.
func (b *Binance) doRequest(ctx context.Context, method, endpoint string, params url.Values, signed bool) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", binanceRecvWindow)
		params.Set("signature", b.sign(params.Encode()))
	}

	query := params.Encode()
	var reqURL, reqBody string
	if method == http.MethodGet {
		reqURL = binanceBaseURL + endpoint
		if query != "" {
			reqURL += "?" + query
		}
	} else {
		reqURL = binanceBaseURL + endpoint
		reqBody = query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, strings.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
			return nil, &ExchangeError{
				Exchange: "binance",
				Code:     strconv.Itoa(apiErr.Code),
				Message:  apiErr.Msg,
			}
		}
		return nil, &ExchangeError{
			Exchange: "binance",
			Code:     strconv.Itoa(resp.StatusCode),
			Message:  "unexpected http status " + resp.Status,
		}
	}

	return body, nil
}

// doGet выполняет идемпотентный GET с повторами на сетевых сбоях.
// Ордеры повторно не отправляются никогда, поэтому retry только здесь.
func (b *Binance) doGet(ctx context.Context, endpoint string, params url.Values, signed bool) ([]byte, error) {
	return retry.DoWithResult(ctx, func() ([]byte, error) {
		body, err := b.doRequest(ctx, http.MethodGet, endpoint, cloneValues(params), signed)
		if err != nil {
			var exErr *ExchangeError
			// Ошибки бизнес-логики биржи не лечатся повтором
			if errors.As(err, &exErr) && exErr.Original == nil {
				return nil, retry.Permanent(err)
			}
			return nil, err
		}
		return body, nil
	}, b.retryCfg)
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for k, vals := range v {
		for _, s := range vals {
			out.Add(k, s)
		}
	}
	return out
}

func (b *Binance) Connect(apiKey, secret string) error {
	b.apiKey = apiKey
	b.secretKey = secret

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := b.GetBalance(ctx, "USDT"); err != nil {
		return fmt.Errorf("failed to connect to Binance: %w", err)
	}

	b.connected = true
	return nil
}

func (b *Binance) GetName() string {
	return "binance"
}

func (b *Binance) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 500
	}
	if limit > 1000 {
		limit = 1000
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := b.doGet(ctx, "/api/v3/klines", params, false)
	if err != nil {
		return nil, err
	}

	// Kline приходит массивом: [openTime, open, high, low, close, volume, ...]
	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode klines for %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		openTime, ok := k[0].(float64)
		if !ok {
			continue
		}
		c := models.Candle{
			OpenTime: time.UnixMilli(int64(openTime)),
			Open:     parseFloatField(k[1]),
			High:     parseFloatField(k[2]),
			Low:      parseFloatField(k[3]),
			Close:    parseFloatField(k[4]),
			Volume:   parseFloatField(k[5]),
		}
		candles = append(candles, c)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles returned for %s %s", symbol, interval)
	}
	return candles, nil
}

// parseFloatField разбирает числовое поле kline (строка в JSON)
func parseFloatField(v interface{}) float64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func (b *Binance) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := b.doGet(ctx, "/api/v3/ticker/price", params, false)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("invalid price %q for %s", resp.Price, symbol)
	}
	return price, nil
}

func (b *Binance) GetBalance(ctx context.Context, asset string) (float64, error) {
	body, err := b.doGet(ctx, "/api/v3/account", url.Values{}, true)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}

	for _, bal := range resp.Balances {
		if bal.Asset == asset {
			free, _ := strconv.ParseFloat(bal.Free, 64)
			return free, nil
		}
	}
	return 0, nil
}

func (b *Binance) PlaceMarketOrder(ctx context.Context, symbol, side string, qty float64) (*Order, error) {
	binanceSide := "BUY"
	if side == SideSell {
		binanceSide = "SELL"
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", binanceSide)
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(qty, 'f', -1, 64))
	params.Set("newOrderRespType", "FULL")

	body, err := b.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OrderID     int64  `json:"orderId"`
		Status      string `json:"status"`
		ExecutedQty string `json:"executedQty"`
		Fills       []struct {
			Price           string `json:"price"`
			Qty             string `json:"qty"`
			Commission      string `json:"commission"`
			CommissionAsset string `json:"commissionAsset"`
		} `json:"fills"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	filledQty, _ := strconv.ParseFloat(resp.ExecutedQty, 64)

	// Средневзвешенная цена и суммарная комиссия по частям исполнения
	var notional, fee float64
	for _, f := range resp.Fills {
		price, _ := strconv.ParseFloat(f.Price, 64)
		fqty, _ := strconv.ParseFloat(f.Qty, 64)
		comm, _ := strconv.ParseFloat(f.Commission, 64)
		notional += price * fqty
		if f.CommissionAsset == "USDT" {
			fee += comm
		} else {
			fee += comm * price
		}
	}

	avgPrice := 0.0
	if filledQty > 0 {
		avgPrice = notional / filledQty
	}

	status := OrderStatusFilled
	switch resp.Status {
	case "FILLED":
		status = OrderStatusFilled
	case "PARTIALLY_FILLED":
		status = OrderStatusPartial
	default:
		status = OrderStatusRejected
	}

	if status == OrderStatusRejected || filledQty <= 0 {
		return nil, &ExchangeError{
			Exchange: "binance",
			Code:     resp.Status,
			Message:  fmt.Sprintf("market order %s %s not filled", binanceSide, symbol),
		}
	}

	return &Order{
		ID:           strconv.FormatInt(resp.OrderID, 10),
		Symbol:       symbol,
		Side:         side,
		Type:         "market",
		Quantity:     qty,
		FilledQty:    filledQty,
		AvgFillPrice: avgPrice,
		Fee:          fee,
		Status:       status,
		CreatedAt:    time.Now(),
	}, nil
}

func (b *Binance) GetLimits(ctx context.Context, symbol string) (*Limits, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := b.doGet(ctx, "/api/v3/exchangeInfo", params, false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Filters []struct {
				FilterType  string `json:"filterType"`
				MinQty      string `json:"minQty"`
				MaxQty      string `json:"maxQty"`
				StepSize    string `json:"stepSize"`
				TickSize    string `json:"tickSize"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Symbols) == 0 {
		return nil, fmt.Errorf("instrument info not found for %s", symbol)
	}

	limits := &Limits{Symbol: symbol, MinNotional: 5.0}
	for _, f := range resp.Symbols[0].Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			limits.MinOrderQty, _ = strconv.ParseFloat(f.MinQty, 64)
			limits.MaxOrderQty, _ = strconv.ParseFloat(f.MaxQty, 64)
			limits.QtyStep, _ = strconv.ParseFloat(f.StepSize, 64)
		case "PRICE_FILTER":
			limits.PriceStep, _ = strconv.ParseFloat(f.TickSize, 64)
		case "NOTIONAL", "MIN_NOTIONAL":
			if v, err := strconv.ParseFloat(f.MinNotional, 64); err == nil && v > 0 {
				limits.MinNotional = v
			}
		}
	}
	return limits, nil
}

func (b *Binance) GetTradingFee(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := b.doGet(ctx, "/sapi/v1/asset/tradeFee", params, true)
	if err != nil {
		// Стандартная комиссия тейкера спота
		return 0.001, nil
	}

	var resp []struct {
		Symbol         string `json:"symbol"`
		TakerCommission string `json:"takerCommission"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp) == 0 {
		return 0.001, nil
	}

	fee, err := strconv.ParseFloat(resp[0].TakerCommission, 64)
	if err != nil {
		return 0.001, nil
	}
	return fee, nil
}

func (b *Binance) Close() error {
	b.connected = false
	return nil
}
