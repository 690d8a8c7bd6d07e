package alert

import (
	"fmt"
	"time"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

const descriptionFallback = "Public institutions and many businesses may be closed."

func renderAlert(sub domain.Subscription, h domain.Holiday, day time.Time, delta int) string {
	desc := h.Description
	if desc == "" {
		desc = descriptionFallback
	}
	return fmt.Sprintf(
		"🌍 *HOLIDAY ALERT* — %s\n\n%s\n🎉 *%s*\n📅 %s\n⏳ %s\n\n%s",
		sub.Mode.Label(),
		domain.CountryLabel(sub.Country),
		h.Name,
		day.Format("2 January 2006"),
		inDays(delta),
		desc,
	)
}

func inDays(n int) string {
	switch n {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", n)
	}
}
