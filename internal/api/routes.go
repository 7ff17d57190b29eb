package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinbot/internal/api/handlers"
	"coinbot/internal/api/middleware"
	ws "coinbot/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers.
// Handlers объявляют узкие интерфейсы потребителя, поэтому сюда
// подходят движок и репозитории напрямую.
type Dependencies struct {
	Engine        handlers.StatusProvider
	Positions     handlers.PositionReader
	Trades        handlers.TradeReader
	Settings      handlers.SettingsStore
	Notifications handlers.NotificationReader
	Hub           *ws.Hub

	// bcrypt-хеш пароля API, пустая строка отключает аутентификацию
	APIPasswordHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /status - GET текущее состояние движка
//	├── /positions - GET открытые позиции
//	├── /trades - GET история сделок (?symbol=, ?limit=)
//	├── /notifications/
//	│   ├── GET / - последние уведомления
//	│   └── DELETE / - очистить журнал
//	└── /settings/
//	    ├── GET / - получить настройки
//	    └── PUT / - обновить настройки
//
// /ws/stream - WebSocket для real-time обновлений
// /health - проверка живости
// /metrics - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. Auth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	api := router.PathPrefix("/api/v1").Subrouter()
	if deps != nil {
		api.Use(middleware.Auth(deps.APIPasswordHash))
	}

	if deps != nil && deps.Engine != nil {
		statusHandler := handlers.NewStatusHandler(deps.Engine)
		api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")
	}

	if deps != nil && deps.Positions != nil {
		positionHandler := handlers.NewPositionHandler(deps.Positions)
		api.HandleFunc("/positions", positionHandler.GetPositions).Methods("GET")
	}

	if deps != nil && deps.Trades != nil {
		tradeHandler := handlers.NewTradeHandler(deps.Trades)
		api.HandleFunc("/trades", tradeHandler.GetTrades).Methods("GET")
	}

	if deps != nil && deps.Notifications != nil {
		notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
		api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		api.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods("DELETE")
	}

	if deps != nil && deps.Settings != nil {
		settingsHandler := handlers.NewSettingsHandler(deps.Settings)
		api.HandleFunc("/settings", settingsHandler.GetSettings).Methods("GET")
		api.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods("PUT")
	}

	if deps != nil && deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(hub, w, r)
		})
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
