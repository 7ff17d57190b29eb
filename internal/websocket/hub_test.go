package websocket

import (
	"testing"
	"time"

	"coinbot/internal/models"
)

// ============ Тесты Hub ============

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.DroppedMessages() != 0 {
		t.Errorf("expected 0 dropped messages, got %d", hub.DroppedMessages())
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	hub.Stop()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Hub.Run() did not exit after Stop()")
	}
}

func TestHubStopIdempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.Stop()
	hub.Stop() // second Stop must not panic
}

func TestHubBroadcastNonBlocking(t *testing.T) {
	hub := NewHub()
	// Run не запущен: канал broadcast заполнится и начнет отбрасывать

	start := time.Now()
	for i := 0; i < 1000; i++ {
		hub.Broadcast(map[string]int{"i": i})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Broadcast blocked for %v", elapsed)
	}

	if hub.DroppedMessages() == 0 {
		t.Error("expected dropped messages with full broadcast channel")
	}
}

func TestHubBroadcastAfterStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	// Не должно паниковать и не должно блокироваться
	hub.BroadcastCycleSummary(&models.CycleSummary{Cycle: 1})
	hub.BroadcastNotification(&models.Notification{Type: models.NotificationTypeEntry})
}

// ============ Тесты OriginChecker ============

func TestOriginCheckerCheck(t *testing.T) {
	checker := &OriginChecker{
		allowedOrigins: map[string]struct{}{
			"http://localhost:3000": {},
			"https://example.com":   {},
		},
		allowAll: false,
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true}, // non-browser clients
		{"http://localhost:3000", true},
		{"https://example.com", true},
		{"http://evil.com", false},
		{"http://localhost:8080", false},
	}

	for _, tt := range tests {
		if got := checker.Check(tt.origin); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginCheckerAllowAll(t *testing.T) {
	checker := &OriginChecker{allowAll: true}

	for _, origin := range []string{
		"http://localhost:3000",
		"https://evil.com",
		"http://anything.example.org",
	} {
		if !checker.Check(origin) {
			t.Errorf("allowAll=true but Check(%q) = false", origin)
		}
	}
}

// ============ Тесты сообщений ============

func TestNewCycleSummaryMessage(t *testing.T) {
	summary := &models.CycleSummary{
		Cycle:    42,
		Symbols:  []string{"BTCUSDT", "ETHUSDT"},
		Admitted: 1,
	}

	msg := NewCycleSummaryMessage(summary)

	if msg.Type != MessageTypeCycleSummary {
		t.Errorf("Type = %q, want %q", msg.Type, MessageTypeCycleSummary)
	}
	if msg.Data != summary {
		t.Error("Data does not reference the original summary")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestNewPositionMessage(t *testing.T) {
	p := &models.Position{Symbol: "BTCUSDT", Status: models.PositionEntered}

	msg := NewPositionMessage(p)

	if msg.Type != MessageTypePosition {
		t.Errorf("Type = %q, want %q", msg.Type, MessageTypePosition)
	}
	if msg.Data.Symbol != "BTCUSDT" {
		t.Errorf("Data.Symbol = %q, want BTCUSDT", msg.Data.Symbol)
	}
}

func TestNewTradeMessage(t *testing.T) {
	trade := &models.TradeRecord{Symbol: "ETHUSDT", Action: models.ActionExitFull}

	msg := NewTradeMessage(trade)

	if msg.Type != MessageTypeTrade {
		t.Errorf("Type = %q, want %q", msg.Type, MessageTypeTrade)
	}
	if msg.Data.Action != models.ActionExitFull {
		t.Errorf("Data.Action = %q, want %q", msg.Data.Action, models.ActionExitFull)
	}
}

func TestNewNotificationMessage(t *testing.T) {
	n := &models.Notification{Type: models.NotificationTypeSL, Severity: models.SeverityWarn}

	msg := NewNotificationMessage(n)

	if msg.Type != MessageTypeNotification {
		t.Errorf("Type = %q, want %q", msg.Type, MessageTypeNotification)
	}
	if msg.Data.Severity != models.SeverityWarn {
		t.Errorf("Data.Severity = %q, want %q", msg.Data.Severity, models.SeverityWarn)
	}
}

// ============ Benchmarks ============

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	summary := &models.CycleSummary{
		Cycle:   1,
		Symbols: []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.BroadcastCycleSummary(summary)
	}
}

func BenchmarkHubBroadcastRaw(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	data := []byte(`{"type":"trade","data":{"symbol":"BTCUSDT"}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.BroadcastRaw(data)
	}
}

func BenchmarkOriginCheckerCheck(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		originChecker.Check("http://localhost:3000")
	}
}
