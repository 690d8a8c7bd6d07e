package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

const (
	btnSubscribe = "➕ Subscribe"
	btnList      = "📋 My subscriptions"
	btnSettings  = "⚙️ Settings"

	startText = "👋 I am the Holiday Radar.\n\n" +
		"Subscribe to countries and I will remind you before their public " +
		"holidays — 14, 7, 3 and 1 day ahead by default.\n\n" +
		"Every Monday you also get a digest of the next two weeks."
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSubscribe),
			tgbotapi.NewKeyboardButton(btnList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSettings),
		),
	)
}

func modePickerKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏢 Business presence", "mode:business"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Employee presence", "mode:employee"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Any country", "mode:custom"),
		),
	)
}

// countryPageKeyboard renders one picker page for a mode. ok is false when
// the page is out of range.
func countryPageKeyboard(mode domain.Mode, page int) (tgbotapi.InlineKeyboardMarkup, bool) {
	codes := domain.CodesForMode(mode)
	items, hasPrev, hasNext := domain.Page(codes, page)
	if len(items) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, code := range items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				domain.CountryLabel(code),
				fmt.Sprintf("add:%s:%s", mode, code),
			),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if hasPrev {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️ Prev", fmt.Sprintf("page:%s:%d", mode, page-1)))
	}
	if hasPrev || hasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(page+1), "noop"))
	}
	if hasNext {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
			"Next ➡️", fmt.Sprintf("page:%s:%d", mode, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func subscriptionsKeyboard(subs []domain.Subscription) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range subs {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ %s (%s)", domain.CountryLabel(s.Country), s.Mode.Label()),
				fmt.Sprintf("remove:%d", i),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌍 Change Timezone", "settings_tz"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Change Alert Frequency", "settings_freq"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Mute 7 days", "mute_7"),
			tgbotapi.NewInlineKeyboardButtonData("🔕 Mute 30 days", "mute_30"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔊 Unmute", "unmute"),
		),
	)
}

func timezoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, tz := range domain.PopularTimezones {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(tz, "tz:"+tz),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func presetKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range domain.PresetNames() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(presetLabel(name), "preset:"+name),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func presetLabel(name string) string {
	days := domain.PresetDays(name)
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "/") + " days before"
}
