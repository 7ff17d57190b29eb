package models

import "time"

// CycleSummary представляет итог одного цикла для отчетности
type CycleSummary struct {
	Cycle       int64            `json:"cycle"`
	StartedAt   time.Time        `json:"started_at"`
	Duration    time.Duration    `json:"duration"`
	Symbols     []string         `json:"symbols"`
	Analyses    []Recommendation `json:"analyses"`
	Admitted    int              `json:"admitted"`
	Rejected    []Rejection      `json:"rejected,omitempty"`
	Executions  []ExecutionResult `json:"executions,omitempty"`
	OpenCount   int              `json:"open_count"`
	DryRun      bool             `json:"dry_run"`
}

// Rejection представляет отклонение кандидата на этапе допуска
type Rejection struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"` // RISK_LIMIT_EXCEEDED, DAILY_CIRCUIT_BREAKER
	Detail string `json:"detail"`
}

// EngineStatus представляет текущее состояние движка для API
type EngineStatus struct {
	Running       bool       `json:"running"`
	DryRun        bool       `json:"dry_run"`
	Cycle         int64      `json:"cycle"`
	LastCycleAt   time.Time  `json:"last_cycle_at"`
	ActiveSymbols []string   `json:"active_symbols"`
	OpenPositions []Position `json:"open_positions"`
	Daily         DailyStats `json:"daily"`
}
