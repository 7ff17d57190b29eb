package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"coinbot/internal/models"
)

// ============================================================
// TradeRepository Tests
// ============================================================

func TestTradeRepositoryCreate(t *testing.T) {
	tests := []struct {
		name        string
		trade       *models.TradeRecord
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "success",
			trade: &models.TradeRecord{
				Symbol:   "BTCUSDT",
				Action:   models.ActionEnter,
				Reason:   models.ReasonSignal,
				Side:     models.TradeSideBuy,
				Price:    100000.0,
				Quantity: 0.001,
				Fee:      0.1,
				Cycle:    42,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO trades`).
					WithArgs("BTCUSDT", models.ActionEnter, models.ReasonSignal, models.TradeSideBuy,
						100000.0, 0.001, 0.1, float64(0), int64(42), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			},
			expectError: false,
		},
		{
			name: "database error",
			trade: &models.TradeRecord{
				Symbol: "ETHUSDT",
				Action: models.ActionExitFull,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO trades`).
					WillReturnError(errors.New("database error"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewTradeRepository(db)
			err = repo.Create(tt.trade)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if tt.trade.ID != 1 {
					t.Errorf("expected ID=1, got %d", tt.trade.ID)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestTradeRepositoryGetDailyStats(t *testing.T) {
	dayStart := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	cols := []string{"id", "symbol", "action", "reason", "side", "price", "quantity", "fee", "realized_pnl", "cycle", "created_at"}

	tests := []struct {
		name          string
		mockSetup     func(mock sqlmock.Sqlmock)
		wantTrades    int
		wantLoss      float64
		wantConsec    int
		wantPnl       float64
	}{
		{
			name: "two entries, one losing exit, one winning exit",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(cols).
					AddRow(1, "BTCUSDT", models.ActionEnter, models.ReasonSignal, "buy", 100000.0, 0.001, 0.1, 0.0, 1, dayStart.Add(1*time.Hour)).
					AddRow(2, "BTCUSDT", models.ActionExitFull, models.ReasonStopLoss, "sell", 98000.0, 0.001, 0.1, -2.0, 2, dayStart.Add(2*time.Hour)).
					AddRow(3, "ETHUSDT", models.ActionEnter, models.ReasonSignal, "buy", 3000.0, 0.01, 0.03, 0.0, 3, dayStart.Add(3*time.Hour)).
					AddRow(4, "ETHUSDT", models.ActionExitFull, models.ReasonTarget2, "sell", 3090.0, 0.01, 0.03, 0.9, 4, dayStart.Add(4*time.Hour))
				mock.ExpectQuery(`SELECT .+ FROM trades`).
					WithArgs(dayStart, dayEnd).
					WillReturnRows(rows)
			},
			wantTrades: 2,
			wantLoss:   2.0,
			wantConsec: 0, // последним было прибыльное закрытие, серия сброшена
			wantPnl:    -1.1,
		},
		{
			name: "consecutive losses survive in order",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(cols).
					AddRow(1, "BTCUSDT", models.ActionExitFull, models.ReasonStopLoss, "sell", 98000.0, 0.001, 0.1, -2.0, 1, dayStart.Add(1*time.Hour)).
					AddRow(2, "ETHUSDT", models.ActionExitFull, models.ReasonStopLoss, "sell", 2900.0, 0.01, 0.03, -1.0, 2, dayStart.Add(2*time.Hour))
				mock.ExpectQuery(`SELECT .+ FROM trades`).
					WithArgs(dayStart, dayEnd).
					WillReturnRows(rows)
			},
			wantTrades: 0,
			wantLoss:   3.0,
			wantConsec: 2,
			wantPnl:    -3.0,
		},
		{
			name: "empty day",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM trades`).
					WithArgs(dayStart, dayEnd).
					WillReturnRows(sqlmock.NewRows(cols))
			},
			wantTrades: 0,
			wantLoss:   0,
			wantConsec: 0,
			wantPnl:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewTradeRepository(db)
			stats, err := repo.GetDailyStats(dayStart, dayEnd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if stats.TradeCount != tt.wantTrades {
				t.Errorf("TradeCount = %d, want %d", stats.TradeCount, tt.wantTrades)
			}
			if stats.RealizedLoss != tt.wantLoss {
				t.Errorf("RealizedLoss = %v, want %v", stats.RealizedLoss, tt.wantLoss)
			}
			if stats.ConsecutiveLoss != tt.wantConsec {
				t.Errorf("ConsecutiveLoss = %d, want %d", stats.ConsecutiveLoss, tt.wantConsec)
			}
			if diff := stats.RealizedPnl - tt.wantPnl; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("RealizedPnl = %v, want %v", stats.RealizedPnl, tt.wantPnl)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestTradeRepositoryGetRecent(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "symbol", "action", "reason", "side", "price", "quantity", "fee", "realized_pnl", "cycle", "created_at"}).
		AddRow(2, "ETHUSDT", models.ActionScaleOut50, models.ReasonTarget1, "sell", 3045.0, 0.01, 0.03, 0.45, 5, now).
		AddRow(1, "BTCUSDT", models.ActionEnter, models.ReasonSignal, "buy", 100000.0, 0.001, 0.1, 0.0, 4, now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT .+ FROM trades ORDER BY created_at DESC`).
		WithArgs(10).
		WillReturnRows(rows)

	repo := NewTradeRepository(db)
	trades, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Action != models.ActionScaleOut50 {
		t.Errorf("first trade action = %s, want %s", trades[0].Action, models.ActionScaleOut50)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
