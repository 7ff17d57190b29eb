package handlers

import (
	"net/http"
	"strconv"
	"time"

	"coinbot/internal/models"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationReader читает и чистит журнал уведомлений
type NotificationReader interface {
	GetRecent(limit int) ([]*models.Notification, error)
	DeleteOlderThan(timestamp time.Time) (int64, error)
}

// NotificationHandler отвечает за endpoints уведомлений
//
// Endpoints:
// - GET /api/v1/notifications - последние уведомления (?limit=N)
// - DELETE /api/v1/notifications - удаление уведомлений старше N дней
//   (?days=N, по умолчанию 7)
type NotificationHandler struct {
	repo NotificationReader
}

// NewNotificationHandler создает новый NotificationHandler
func NewNotificationHandler(repo NotificationReader) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// GetNotificationsResponse ответ со списком уведомлений
type GetNotificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int                    `json:"total"`
}

// GetNotifications возвращает последние уведомления
// GET /api/v1/notifications?limit=N
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxNotificationLimit {
			parsed = maxNotificationLimit
		}
		limit = parsed
	}

	notifications, err := h.repo.GetRecent(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}

	respondJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: notifications,
		Total:         len(notifications),
	})
}

// ClearNotifications удаляет уведомления старше заданного числа дней
// DELETE /api/v1/notifications?days=N
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := h.repo.DeleteOlderThan(cutoff)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete notifications")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{
		Message: "notifications deleted",
		Data:    map[string]int64{"deleted": deleted},
	})
}
