package holidays

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
	"github.com/flavummontem/holiday-tg-bot/internal/metrics"
	"github.com/flavummontem/holiday-tg-bot/internal/store"
)

// CacheRetentionDays is how long a stale cache entry survives before the
// daily cleanup removes it.
const CacheRetentionDays = 3

// yearBoundaryLookahead: when fewer than this many days remain in the year,
// the following year is fetched too so 14-day alerts and the digest can see
// across the boundary.
const yearBoundaryLookahead = 31

// Provider fetches the raw holiday list for one country and year.
type Provider interface {
	Holidays(ctx context.Context, country string, year int) ([]domain.Holiday, error)
}

// Cache serves holiday lists, refetching from the provider at most once per
// country per UTC calendar day.
type Cache struct {
	repo     store.Repo
	provider Provider
	log      *zap.Logger
	m        *metrics.Metrics
}

// NewCache wires a cache over the store and provider.
func NewCache(repo store.Repo, provider Provider, log *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{repo: repo, provider: provider, log: log, m: m}
}

// Get returns the holiday list for a country. A cache entry stamped with
// today's UTC date is returned as-is; otherwise the provider is called and
// the result persisted. Provider failures degrade to an empty list: a
// transient outage skips alerts for that country today instead of crashing.
func (c *Cache) Get(ctx context.Context, country string, nowUTC time.Time) []domain.Holiday {
	today := nowUTC.UTC().Format(domain.DateLayout)

	cached, err := c.repo.GetHolidayCache(ctx, country)
	if err != nil {
		c.log.Error("holiday cache read failed", zap.Error(err), zap.String("country", country))
	} else if cached != nil && cached.FetchedOn == today {
		c.m.CacheEvents.WithLabelValues("hit").Inc()
		return cached.Holidays
	}

	fresh, err := c.fetch(ctx, country, nowUTC)
	if err != nil {
		c.m.CacheEvents.WithLabelValues("error").Inc()
		c.m.ProviderRequests.WithLabelValues("error").Inc()
		c.log.Warn("holiday fetch failed, skipping country for today",
			zap.Error(err), zap.String("country", country))
		return nil
	}
	c.m.CacheEvents.WithLabelValues("refresh").Inc()
	c.m.ProviderRequests.WithLabelValues("ok").Inc()

	if err := c.repo.PutHolidayCache(ctx, country, today, fresh); err != nil {
		c.log.Error("holiday cache write failed", zap.Error(err), zap.String("country", country))
	}
	return fresh
}

// fetch pulls the current year and, near the year boundary, the next one.
func (c *Cache) fetch(ctx context.Context, country string, nowUTC time.Time) ([]domain.Holiday, error) {
	year := nowUTC.UTC().Year()

	res, err := c.provider.Holidays(ctx, country, year)
	if err != nil {
		return nil, err
	}

	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if int(yearEnd.Sub(nowUTC.UTC()).Hours()/24) < yearBoundaryLookahead {
		next, err := c.provider.Holidays(ctx, country, year+1)
		if err != nil {
			return nil, err
		}
		res = append(res, next...)
	}
	return res, nil
}

// Purge drops cache entries older than the retention window.
func (c *Cache) Purge(ctx context.Context, nowUTC time.Time) {
	cutoff := nowUTC.UTC().AddDate(0, 0, -CacheRetentionDays).Format(domain.DateLayout)
	if err := c.repo.PurgeHolidayCache(ctx, cutoff); err != nil {
		c.log.Error("holiday cache purge failed", zap.Error(err))
	}
}
