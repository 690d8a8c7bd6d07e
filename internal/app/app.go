package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/alert"
	"github.com/flavummontem/holiday-tg-bot/internal/calendarific"
	"github.com/flavummontem/holiday-tg-bot/internal/config"
	"github.com/flavummontem/holiday-tg-bot/internal/holidays"
	"github.com/flavummontem/holiday-tg-bot/internal/metrics"
	"github.com/flavummontem/holiday-tg-bot/internal/store"
	"github.com/flavummontem/holiday-tg-bot/internal/telegram"
)

// App owns the bot, the HTTP sidecar and the alert engine.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
}

// New builds the application: Telegram client plus the healthz/metrics
// HTTP server.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// Run wires storage, cache, router and alert engine, then drains updates
// until a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting holiday radar",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("db", a.cfg.DBPath),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	m := metrics.Registry("holiday_radar")

	provider := calendarific.New(calendarific.Config{
		BaseURL: a.cfg.CalendarificURL,
		APIKey:  a.cfg.CalendarificKey,
	})
	cache := holidays.NewCache(repo, provider, a.log, m)

	router := telegram.NewRouter(a.bot, a.log, repo, m, a.cfg.AdminUsername)
	engine := alert.New(repo, cache, router, a.log, m)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go engine.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}
