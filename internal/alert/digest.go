package alert

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

// digestLookaheadDays is the inclusive window the weekly digest covers.
const digestLookaheadDays = 14

type digestItem struct {
	country string
	holiday domain.Holiday
	day     time.Time
	delta   int
}

// sendDigest sends one summary of all holidays within the lookahead window
// across the user's subscriptions. An empty window still produces an
// explicit "nothing upcoming" message.
func (e *Engine) sendDigest(ctx context.Context, u *domain.User, subs []domain.Subscription, nowUTC, today time.Time) {
	// The same country may appear under several modes; the digest lists
	// each holiday once.
	type occurrence struct{ country, date, name string }
	unique := make(map[occurrence]struct{})

	var items []digestItem
	for _, sub := range subs {
		for _, h := range e.source.Get(ctx, sub.Country, nowUTC) {
			day, err := h.Day()
			if err != nil {
				continue
			}
			delta := domain.DayDelta(day, today)
			if delta < 0 || delta > digestLookaheadDays {
				continue
			}
			occ := occurrence{sub.Country, h.Date, h.Name}
			if _, dup := unique[occ]; dup {
				continue
			}
			unique[occ] = struct{}{}
			items = append(items, digestItem{country: sub.Country, holiday: h, day: day, delta: delta})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].day.Equal(items[j].day) {
			return items[i].day.Before(items[j].day)
		}
		return items[i].country < items[j].country
	})

	if err := e.sender.SendMessage(u.ChatID, renderDigest(items)); err != nil {
		e.m.SendFailures.Inc()
		e.log.Warn("digest send failed", zap.Error(err), zap.Int64("chatID", u.ChatID))
		return
	}
	e.m.DigestsSent.Inc()
}

func renderDigest(items []digestItem) string {
	if len(items) == 0 {
		return "🗓 *Weekly digest*\n\nNo holidays in the next 14 days across your subscriptions."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 *Weekly digest* — next %d days\n", digestLookaheadDays)
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s — %s — *%s* (%s)",
			it.day.Format("2 Jan"),
			domain.CountryLabel(it.country),
			it.holiday.Name,
			inDays(it.delta),
		)
	}
	return b.String()
}
