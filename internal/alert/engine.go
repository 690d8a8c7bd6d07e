package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
	"github.com/flavummontem/holiday-tg-bot/internal/metrics"
	"github.com/flavummontem/holiday-tg-bot/internal/store"
)

// Sender is the minimal interface the engine needs to push a text message.
// telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// HolidaySource serves (possibly cached) holiday lists and owns their
// retention. holidays.Cache implements it.
type HolidaySource interface {
	Get(ctx context.Context, country string, nowUTC time.Time) []domain.Holiday
	Purge(ctx context.Context, nowUTC time.Time)
}

const (
	lastRunKey        = "last_alert_run"
	sentRetentionDays = 60
	tickInterval      = 30 * time.Second
)

// Engine runs the daily alert pass: for every user and subscription it
// compares cached holiday dates against "today" in the user's timezone and
// sends each matching reminder exactly once.
type Engine struct {
	repo     store.Repo
	source   HolidaySource
	sender   Sender
	log      *zap.Logger
	m        *metrics.Metrics
	interval time.Duration
	now      func() time.Time
}

// New creates an Engine ticking every 30s.
func New(repo store.Repo, source HolidaySource, sender Sender, log *zap.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		repo:     repo,
		source:   source,
		sender:   sender,
		log:      log,
		m:        m,
		interval: tickInterval,
		now:      time.Now,
	}
}

// Run loops until ctx is canceled, firing the daily pass when due.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// First check immediately so a restart does not wait a full tick.
	e.maybeRunDaily(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("alert engine stopping")
			return
		case <-ticker.C:
			e.maybeRunDaily(ctx)
		}
	}
}

// maybeRunDaily runs the pass at most once per UTC calendar day, guarded by
// a persisted last-run marker.
func (e *Engine) maybeRunDaily(ctx context.Context) {
	nowUTC := e.now().UTC()
	today := nowUTC.Format(domain.DateLayout)

	last, err := e.repo.GetMeta(ctx, lastRunKey)
	if err != nil {
		e.log.Error("read last-run marker failed", zap.Error(err))
		return
	}
	if last == today {
		return
	}

	if err := e.RunDaily(ctx, nowUTC); err != nil {
		// Marker stays unset so the next tick retries; already-sent alerts
		// are protected by the dedup log.
		e.log.Error("daily pass failed", zap.Error(err))
		return
	}
	if err := e.repo.SetMeta(ctx, lastRunKey, today); err != nil {
		e.log.Error("write last-run marker failed", zap.Error(err))
	}
}

// RunDaily executes one full pass over all users, then persists the newly
// sent dedup keys in a single batch and runs retention cleanup.
func (e *Engine) RunDaily(ctx context.Context, nowUTC time.Time) error {
	users, err := e.repo.ListUsers(ctx)
	if err != nil {
		return err
	}

	var sentKeys []string
	seen := make(map[string]struct{})

	for i := range users {
		e.processUser(ctx, &users[i], nowUTC, seen, &sentKeys)
	}

	if err := e.repo.MarkSentBatch(ctx, sentKeys, nowUTC); err != nil {
		return err
	}

	e.source.Purge(ctx, nowUTC)
	if err := e.repo.PurgeSentAlerts(ctx, nowUTC.AddDate(0, 0, -sentRetentionDays)); err != nil {
		e.log.Error("sent-log purge failed", zap.Error(err))
	}

	e.log.Info("daily pass complete",
		zap.Int("users", len(users)),
		zap.Int("alerts", len(sentKeys)),
	)
	return nil
}

func (e *Engine) processUser(ctx context.Context, u *domain.User, nowUTC time.Time, seen map[string]struct{}, sentKeys *[]string) {
	loc := u.Location()
	today := domain.Today(nowUTC, loc)

	if u.MutedOn(today) {
		return
	}

	subs, err := e.repo.ListSubscriptions(ctx, u.ChatID)
	if err != nil {
		e.log.Error("list subscriptions failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
		return
	}
	if len(subs) == 0 {
		return
	}

	alertDays := make(map[int]struct{})
	for _, d := range u.AlertDays() {
		alertDays[d] = struct{}{}
	}

	for _, sub := range subs {
		for _, h := range e.source.Get(ctx, sub.Country, nowUTC) {
			day, err := h.Day()
			if err != nil {
				continue
			}
			delta := domain.DayDelta(day, today)
			if _, ok := alertDays[delta]; !ok {
				continue
			}

			key := domain.DedupKey(u.ChatID, sub.Country, sub.Mode, h.Date, delta)
			if _, dup := seen[key]; dup {
				continue
			}
			sent, err := e.repo.WasSent(ctx, key)
			if err != nil {
				e.log.Error("sent-log read failed", zap.Error(err), zap.String("key", key))
				continue
			}
			if sent {
				continue
			}

			if err := e.sender.SendMessage(u.ChatID, renderAlert(sub, h, day, delta)); err != nil {
				// Fire-and-forget: the key stays unrecorded, but the daily
				// guard means no retry until the next pass.
				e.m.SendFailures.Inc()
				e.log.Warn("alert send failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
				continue
			}
			seen[key] = struct{}{}
			*sentKeys = append(*sentKeys, key)
			e.m.AlertsSent.WithLabelValues(sub.Country).Inc()
		}
	}

	// Weekly digest rides along on Mondays in the user's timezone.
	if today.Weekday() == time.Monday {
		e.sendDigest(ctx, u, subs, nowUTC, today)
	}
}
