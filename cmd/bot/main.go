package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"coinbot/internal/api"
	"coinbot/internal/bot"
	"coinbot/internal/config"
	"coinbot/internal/exchange"
	"coinbot/internal/repository"
	"coinbot/internal/websocket"
	"coinbot/pkg/crypto"
	"coinbot/pkg/utils"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "paper trading: orders are simulated, market data is real")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbol override (e.g. BTCUSDT,ETHUSDT)")
	flag.Parse()

	if err := run(*dryRun, *symbolsFlag); err != nil {
		fmt.Fprintf(os.Stderr, "coinbot: %v\n", err)
		os.Exit(1)
	}
}

func run(dryRun bool, symbolsFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if dryRun {
		cfg.Bot.DryRun = true
	}

	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Logger.Sync()

	var symbolsOverride []string
	if symbolsFlag != "" {
		for _, s := range strings.Split(symbolsFlag, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if err := utils.ValidateSymbol(s); err != nil {
				return fmt.Errorf("invalid --symbols value %q: %w", s, err)
			}
			symbolsOverride = append(symbolsOverride, utils.NormalizeSymbol(s))
		}
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	utils.Info("connected to database", utils.String("db", cfg.Database.Name))

	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ex, err := initExchange(cfg)
	if err != nil {
		return fmt.Errorf("init exchange: %w", err)
	}

	ledger := bot.NewPositionLedger(positionRepo)

	// Восстановление состояния обязано завершиться до первого цикла.
	// Сбой загрузки леджера блокирует запуск.
	recovery := bot.NewRecoveryManager(ledger, ex, notificationRepo, cfg.Bot.RecoveryTimeout)
	recoveryCtx, cancelRecovery := context.WithTimeout(context.Background(), cfg.Bot.RecoveryTimeout)
	err = recovery.Recover(recoveryCtx)
	cancelRecovery()
	if err != nil {
		return fmt.Errorf("state recovery: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	analyzer := bot.NewCoinAnalyzer(ex, ledger, cfg.Bot.CandleInterval, cfg.Bot.CandleCount, cfg.Bot.AnalysisTimeout)
	coordinator := bot.NewPortfolioCoordinator(ledger)
	executor := bot.NewExecutionGateway(ex, ledger, tradeRepo, cfg.Bot.OrderTimeout)

	engine := bot.NewEngine(bot.EngineConfig{
		Analyzer:        analyzer,
		Coordinator:     coordinator,
		Executor:        executor,
		Ledger:          ledger,
		Settings:        settingsRepo,
		Trades:          tradeRepo,
		Notifications:   notificationRepo,
		Hub:             hub,
		Interval:        cfg.Bot.CycleInterval,
		DryRun:          cfg.Bot.DryRun,
		SymbolsOverride: symbolsOverride,
	})

	router := api.SetupRoutes(&api.Dependencies{
		Engine:          engine,
		Positions:       ledger,
		Trades:          tradeRepo,
		Settings:        settingsRepo,
		Notifications:   notificationRepo,
		Hub:             hub,
		APIPasswordHash: cfg.Security.APIPasswordHash,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		utils.Info("http server started", utils.String("addr", server.Addr))
		var err error
		if cfg.Server.UseHTTPS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- engine.Run(engineCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		utils.Info("shutdown signal received", utils.String("signal", sig.String()))
	case err := <-serverErr:
		stopEngine()
		<-engineErr
		return fmt.Errorf("http server: %w", err)
	case err := <-engineErr:
		shutdownServer(server)
		if err != nil {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	}

	// Останавливаем движок первым: отмена контекста не прерывает
	// уже начатое исполнение, Run вернется после завершения цикла
	stopEngine()
	if err := <-engineErr; err != nil {
		shutdownServer(server)
		return fmt.Errorf("engine: %w", err)
	}

	shutdownServer(server)
	utils.Info("coinbot stopped")
	return nil
}

// initExchange создает биржу и расшифровывает API секрет.
// В режиме dry-run торговля идет на бумажной бирже, данные рынка реальные.
func initExchange(cfg *config.Config) (exchange.Exchange, error) {
	name := cfg.Bot.Exchange
	if cfg.Bot.DryRun {
		name = "paper"
	}

	ex, err := exchange.NewExchange(name)
	if err != nil {
		return nil, err
	}

	secret := cfg.Bot.APISecretEncrypted
	if secret != "" && cfg.Security.EncryptionKey != "" {
		secret, err = crypto.DecryptWithKeyString(secret, cfg.Security.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decrypt api secret: %w", err)
		}
	}

	if err := ex.Connect(cfg.Bot.APIKey, secret); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", name, err)
	}

	utils.Info("exchange connected", utils.Exchange(name))
	return ex, nil
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.Error("server shutdown", utils.Err(err))
	}
}
