package store

import (
	"database/sql"
	"time"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		chatID    int64
		username  string
		tz        string
		preset    string
		muteUntil sql.NullString
		createdAt int64
	)
	if err := row.Scan(&chatID, &username, &tz, &preset, &muteUntil, &createdAt); err != nil {
		return nil, err
	}

	u := &domain.User{
		ChatID:      chatID,
		Username:    username,
		TZ:          tz,
		AlertPreset: preset,
		CreatedAt:   time.Unix(createdAt, 0).UTC(),
	}
	if muteUntil.Valid {
		// A malformed date clears the mute rather than wedging the user.
		if d, err := time.Parse(domain.DateLayout, muteUntil.String); err == nil {
			u.MuteUntil = &d
		}
	}
	return u, nil
}

func dateToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(domain.DateLayout), Valid: true}
}
