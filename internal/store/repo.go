package store

import (
	"context"
	"time"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

// CachedHolidays is one holiday_cache row: the holiday list for a country
// plus the UTC day it was fetched on.
type CachedHolidays struct {
	FetchedOn string // YYYY-MM-DD, UTC
	Holidays  []domain.Holiday
}

// Repo defines storage operations for users, subscriptions, the holiday
// cache and the sent-alert log.
type Repo interface {
	EnsureUser(ctx context.Context, chatID int64, username string) (*domain.User, error)
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetTimezone(ctx context.Context, chatID int64, tz string) error
	SetAlertPreset(ctx context.Context, chatID int64, preset string) error
	SetMuteUntil(ctx context.Context, chatID int64, until *time.Time) error

	AddSubscription(ctx context.Context, chatID int64, country string, mode domain.Mode) error
	RemoveSubscription(ctx context.Context, chatID int64, country string, mode domain.Mode) error
	ListSubscriptions(ctx context.Context, chatID int64) ([]domain.Subscription, error)

	CountUsers(ctx context.Context) (int, error)
	CountSubscriptions(ctx context.Context) (int, error)

	GetHolidayCache(ctx context.Context, country string) (*CachedHolidays, error)
	PutHolidayCache(ctx context.Context, country, fetchedOn string, hs []domain.Holiday) error
	PurgeHolidayCache(ctx context.Context, before string) error

	WasSent(ctx context.Context, key string) (bool, error)
	MarkSentBatch(ctx context.Context, keys []string, at time.Time) error
	PurgeSentAlerts(ctx context.Context, before time.Time) error

	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}
