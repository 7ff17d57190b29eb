package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"coinbot/internal/models"
)

// ============================================================
// PositionRepository Tests
// ============================================================

func TestNewPositionRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	repo := NewPositionRepository(db)
	if repo == nil {
		t.Fatal("NewPositionRepository returned nil")
	}
	if repo.db != db {
		t.Error("db not set correctly")
	}
}

func TestPositionRepositoryUpsert(t *testing.T) {
	entryTime := time.Now()

	tests := []struct {
		name        string
		position    *models.Position
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "success insert new position",
			position: &models.Position{
				Symbol:       "BTCUSDT",
				Status:       models.PositionEntered,
				Quantity:     0.001,
				OriginalQty:  0.001,
				EntryPrice:   100000.0,
				StopLoss:     98000.0,
				FirstTarget:  101500.0,
				SecondTarget: 103000.0,
				HighestClose: 100000.0,
				EntryTime:    entryTime,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO positions`).
					WithArgs("BTCUSDT", models.PositionEntered, 0.001, 0.001, 100000.0, 98000.0,
						101500.0, 103000.0, false, false, 100000.0, entryTime, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectError: false,
		},
		{
			name: "database error",
			position: &models.Position{
				Symbol: "ETHUSDT",
				Status: models.PositionEntered,
			},
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO positions`).
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

			repo := NewPositionRepository(db)
			err = repo.Upsert(tt.position)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestPositionRepositoryGet(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		symbol      string
		mockSetup   func(mock sqlmock.Sqlmock)
		expected    *models.Position
		expectError error
	}{
		{
			name:   "success",
			symbol: "BTCUSDT",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"symbol", "status", "quantity", "original_qty",
					"entry_price", "stop_loss", "first_target", "second_target",
					"first_target_hit", "second_target_hit", "highest_close", "entry_time", "updated_at"}).
					AddRow("BTCUSDT", models.PositionPartial, 0.0005, 0.001, 100000.0, 100000.0,
						101500.0, 103000.0, true, false, 101600.0, now, now)
				mock.ExpectQuery(`SELECT .+ FROM positions WHERE symbol = \$1`).
					WithArgs("BTCUSDT").
					WillReturnRows(rows)
			},
			expected: &models.Position{
				Symbol:         "BTCUSDT",
				Status:         models.PositionPartial,
				Quantity:       0.0005,
				OriginalQty:    0.001,
				FirstTargetHit: true,
			},
			expectError: nil,
		},
		{
			name:   "not found",
			symbol: "XRPUSDT",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM positions WHERE symbol = \$1`).
					WithArgs("XRPUSDT").
					WillReturnError(sql.ErrNoRows)
			},
			expected:    nil,
			expectError: ErrPositionNotFound,
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

			repo := NewPositionRepository(db)
			got, err := repo.Get(tt.symbol)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected error %v, got %v", tt.expectError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Symbol != tt.expected.Symbol {
					t.Errorf("symbol = %s, want %s", got.Symbol, tt.expected.Symbol)
				}
				if got.Status != tt.expected.Status {
					t.Errorf("status = %s, want %s", got.Status, tt.expected.Status)
				}
				if got.FirstTargetHit != tt.expected.FirstTargetHit {
					t.Errorf("firstTargetHit = %v, want %v", got.FirstTargetHit, tt.expected.FirstTargetHit)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestPositionRepositoryGetAll(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"symbol", "status", "quantity", "original_qty",
		"entry_price", "stop_loss", "first_target", "second_target",
		"first_target_hit", "second_target_hit", "highest_close", "entry_time", "updated_at"}).
		AddRow("BTCUSDT", models.PositionEntered, 0.001, 0.001, 100000.0, 98000.0,
			101500.0, 103000.0, false, false, 100000.0, now, now).
		AddRow("ETHUSDT", models.PositionPartial, 0.01, 0.02, 3000.0, 3000.0,
			3045.0, 3090.0, true, false, 3050.0, now, now)
	mock.ExpectQuery(`SELECT .+ FROM positions ORDER BY symbol`).
		WillReturnRows(rows)

	repo := NewPositionRepository(db)
	positions, err := repo.GetAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
	if positions[0].Symbol != "BTCUSDT" || positions[1].Symbol != "ETHUSDT" {
		t.Errorf("unexpected symbols: %s, %s", positions[0].Symbol, positions[1].Symbol)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPositionRepositoryDelete(t *testing.T) {
	tests := []struct {
		name        string
		symbol      string
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name:   "success",
			symbol: "BTCUSDT",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM positions WHERE symbol = \$1`).
					WithArgs("BTCUSDT").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectError: nil,
		},
		{
			name:   "not found",
			symbol: "XRPUSDT",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM positions WHERE symbol = \$1`).
					WithArgs("XRPUSDT").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectError: ErrPositionNotFound,
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

			repo := NewPositionRepository(db)
			err = repo.Delete(tt.symbol)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Errorf("expected error %v, got %v", tt.expectError, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}
