package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the database at path, applies PRAGMAs,
// runs migrations and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Users ---

// EnsureUser returns the user record for chatID, creating it with defaults
// on first interaction. The stored username is refreshed on every call so
// the admin gate and stats see the current handle.
func (r *SQLiteRepo) EnsureUser(ctx context.Context, chatID int64, username string) (*domain.User, error) {
	u, err := r.GetUser(ctx, chatID)
	if err == nil {
		if username != "" && username != u.Username {
			if _, err := r.db.ExecContext(ctx,
				`UPDATE users SET username = ? WHERE chat_id = ?`, username, chatID); err != nil {
				return nil, err
			}
			u.Username = username
		}
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	u = &domain.User{
		ChatID:      chatID,
		Username:    username,
		TZ:          "UTC",
		AlertPreset: domain.PresetStandard,
		CreatedAt:   now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (chat_id, username, tz, alert_preset, mute_until, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
		ON CONFLICT(chat_id) DO NOTHING`,
		chatID, username, u.TZ, u.AlertPreset, now.Unix(),
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a user by chatID or sql.ErrNoRows if absent.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, username, tz, alert_preset, mute_until, created_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time.
func (r *SQLiteRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, username, tz, alert_preset, mute_until, created_at
		FROM users
		ORDER BY created_at ASC, chat_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// SetTimezone updates the user's IANA zone name.
func (r *SQLiteRepo) SetTimezone(ctx context.Context, chatID int64, tz string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET tz = ? WHERE chat_id = ?`, tz, chatID)
	return err
}

// SetAlertPreset updates the user's alert-day preset.
func (r *SQLiteRepo) SetAlertPreset(ctx context.Context, chatID int64, preset string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET alert_preset = ? WHERE chat_id = ?`, preset, chatID)
	return err
}

// SetMuteUntil sets or clears (nil) the user's mute window.
func (r *SQLiteRepo) SetMuteUntil(ctx context.Context, chatID int64, until *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mute_until = ? WHERE chat_id = ?`, dateToNull(until), chatID)
	return err
}

// --- Subscriptions ---

// AddSubscription inserts a (country, mode) entry; duplicates are no-ops.
func (r *SQLiteRepo) AddSubscription(ctx context.Context, chatID int64, country string, mode domain.Mode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (chat_id, country, mode, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, country, mode) DO NOTHING`,
		chatID, country, string(mode), time.Now().UTC().Unix(),
	)
	return err
}

// RemoveSubscription deletes one (country, mode) entry.
func (r *SQLiteRepo) RemoveSubscription(ctx context.Context, chatID int64, country string, mode domain.Mode) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM subscriptions
		WHERE chat_id = ? AND country = ? AND mode = ?`,
		chatID, country, string(mode),
	)
	return err
}

// ListSubscriptions returns a user's entries in a stable order; callback
// indexes (remove buttons) are resolved against this ordering.
func (r *SQLiteRepo) ListSubscriptions(ctx context.Context, chatID int64) ([]domain.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT country, mode
		FROM subscriptions
		WHERE chat_id = ?
		ORDER BY country ASC, mode ASC`,
		chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		var mode string
		if err := rows.Scan(&s.Country, &mode); err != nil {
			return nil, err
		}
		s.Mode = domain.Mode(mode)
		res = append(res, s)
	}
	return res, rows.Err()
}

// CountUsers returns the total number of user records.
func (r *SQLiteRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountSubscriptions returns the total number of subscription entries.
func (r *SQLiteRepo) CountSubscriptions(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions`).Scan(&n)
	return n, err
}

// --- Holiday cache ---

// GetHolidayCache returns the cached holiday list for a country, or nil if
// no entry exists. A row with a corrupt payload is treated as absent.
func (r *SQLiteRepo) GetHolidayCache(ctx context.Context, country string) (*CachedHolidays, error) {
	var fetchedOn, payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT fetched_on, payload FROM holiday_cache WHERE country = ?`,
		country,
	).Scan(&fetchedOn, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var hs []domain.Holiday
	if err := json.Unmarshal([]byte(payload), &hs); err != nil {
		return nil, nil
	}
	return &CachedHolidays{FetchedOn: fetchedOn, Holidays: hs}, nil
}

// PutHolidayCache upserts the holiday list for a country, stamped with the
// UTC day it was fetched on.
func (r *SQLiteRepo) PutHolidayCache(ctx context.Context, country, fetchedOn string, hs []domain.Holiday) error {
	if hs == nil {
		hs = []domain.Holiday{}
	}
	payload, err := json.Marshal(hs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO holiday_cache (country, fetched_on, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(country) DO UPDATE SET
			fetched_on = excluded.fetched_on,
			payload    = excluded.payload`,
		country, fetchedOn, string(payload),
	)
	return err
}

// PurgeHolidayCache removes entries fetched before the given UTC day.
func (r *SQLiteRepo) PurgeHolidayCache(ctx context.Context, before string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM holiday_cache WHERE fetched_on < ?`, before)
	return err
}

// --- Sent-alert log ---

// WasSent reports whether a dedup key is in the sent log.
func (r *SQLiteRepo) WasSent(ctx context.Context, key string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM sent_alerts WHERE dedup_key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// MarkSentBatch records dedup keys in a single transaction.
func (r *SQLiteRepo) MarkSentBatch(ctx context.Context, keys []string, at time.Time) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sent_alerts (dedup_key, sent_at)
			VALUES (?, ?)
			ON CONFLICT(dedup_key) DO NOTHING`,
			k, at.UTC().Unix(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PurgeSentAlerts removes log entries recorded before the given instant.
func (r *SQLiteRepo) PurgeSentAlerts(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sent_alerts WHERE sent_at < ?`, before.UTC().Unix())
	return err
}

// --- Meta ---

// GetMeta returns the value for key, or "" if unset.
func (r *SQLiteRepo) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetMeta upserts a marker value.
func (r *SQLiteRepo) SetMeta(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
