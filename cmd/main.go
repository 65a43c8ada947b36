package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alpha/internal/adapters/ai"
	"alpha/internal/adapters/config"
	"alpha/internal/adapters/errors/noop"
	"alpha/internal/adapters/errors/sentry"
	"alpha/internal/adapters/postgres"
	"alpha/internal/adapters/sources"
	"alpha/internal/adapters/telegram"
	"alpha/internal/api"
	"alpha/internal/domain/execution"
	repo "alpha/internal/repository/postgres"
	"alpha/internal/services/agentrun"
	"alpha/internal/services/information"
	"alpha/internal/services/investment"
	"alpha/internal/services/learning"
	"alpha/pkg/errors"
	"alpha/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// The persistence client is constructed here and injected; its
	// lifecycle belongs to the process, not to any package.
	db, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Info("PostgreSQL connected")

	runs := repo.NewExecutionRepository(db.DB())
	articles := repo.NewArticleRepository(db.DB())
	summaries := repo.NewSummaryRepository(db.DB())
	lessons := repo.NewLearningRepository(db.DB())
	holdings := repo.NewPortfolioRepository(db.DB())
	signals := repo.NewSignalRepository(db.DB())
	trades := repo.NewTradeRepository(db.DB())
	messages := repo.NewMessageRepository(db.DB())
	prefs := repo.NewPreferencesRepository(db.DB())

	chat := ai.NewOpenAIClient(cfg.AI)

	sourceHTTP := &http.Client{Timeout: cfg.Sources.HTTPTimeout}
	hackerNews := sources.NewHackerNewsClient(cfg.Sources.HackerNewsBaseURL, cfg.Sources.HackerNewsTopCount, sourceHTTP)
	productHunt := sources.NewProductHuntClient(cfg.Sources.ProductHuntBaseURL, cfg.Sources.ProductHuntToken, sourceHTTP)
	coinGecko := sources.NewCoinGeckoClient(cfg.Sources.CoinGeckoBaseURL, sourceHTTP)

	runner := agentrun.NewRunner(runs, initNotifier(cfg, log))

	informationSvc := information.NewService(chat, hackerNews, productHunt, articles, summaries, messages, prefs, runner)
	learningSvc := learning.NewService(chat, lessons, messages, runner)
	investmentSvc := investment.NewService(chat, coinGecko, holdings, signals, messages, runner)

	handler := api.NewHandler(
		map[execution.Agent]api.AgentTrigger{
			execution.AgentInformation: informationSvc,
			execution.AgentLearning:    learningSvc,
			execution.AgentInvestment:  investmentSvc,
		},
		runs, articles, summaries, lessons, holdings, signals, trades, messages, prefs,
	)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.HTTP.Port,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, handler, db)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()
	log.Info("System initialized successfully")

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initNotifier wires the owner escalation channel. Without a bot token
// failures are only logged.
func initNotifier(cfg *config.Config, log *logger.Logger) agentrun.Notifier {
	notifier, err := telegram.NewNotifier(cfg.Telegram)
	if err != nil {
		log.Warnf("Owner notifications disabled: %v", err)
		return logNotifier{}
	}
	log.Info("Owner notifications via Telegram")
	return notifier
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, title, content string) bool {
	logger.Get().Warnw("owner notification (no channel configured)", "title", title, "content", content)
	return false
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains gracefully
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("HTTP shutdown error: %v", err)
	}

	if err := errorTracker.Flush(ctx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}

	log.Info("Shutdown complete")
}
