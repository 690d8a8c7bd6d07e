package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
)

func (r *Router) sendText(chatID int64, text string) {
	if err := r.SendMessage(chatID, text); err != nil {
		r.m.SendFailures.Inc()
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		r.m.SendFailures.Inc()
		r.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// --- Commands ---

func (r *Router) handleStart(chatID int64) {
	r.sendWithKeyboard(chatID, startText, mainMenuKeyboard())
}

func (r *Router) handleSubscribe(chatID int64) {
	r.sendWithKeyboard(chatID, "How is this country relevant to you?", modePickerKeyboard())
}

func (r *Router) handleList(ctx context.Context, chatID int64) {
	subs, err := r.repo.ListSubscriptions(ctx, chatID)
	if err != nil {
		r.log.Error("list subscriptions failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	if len(subs) == 0 {
		r.sendText(chatID, "You have no subscriptions yet. Tap "+btnSubscribe+" to add one.")
		return
	}
	r.sendWithKeyboard(chatID, "📋 *Your subscriptions*\n\nTap an entry to remove it.",
		subscriptionsKeyboard(subs))
}

func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	u, err := r.repo.GetUser(ctx, chatID)
	if err != nil {
		r.log.Error("get user failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	days := u.AlertDays()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%d", d)
	}

	muteStatus := "Active"
	if u.MuteUntil != nil {
		muteStatus = "Muted until " + u.MuteUntil.Format(domain.DateLayout)
	}

	text := fmt.Sprintf(
		"*⚙️ Settings*\n\n🌍 Timezone: %s\n🔔 Alert days: %s (%s)\n🔕 Status: %s\n\nChoose an option:",
		u.TZ, strings.Join(parts, "/"), u.AlertPreset, muteStatus,
	)
	r.sendWithKeyboard(chatID, text, settingsKeyboard())
}

func (r *Router) handleStats(ctx context.Context, chatID int64, username string) {
	// Admin gate: non-admin /stats is silently ignored.
	if username == "" || username != r.adminUsername {
		return
	}
	users, err := r.repo.CountUsers(ctx)
	if err != nil {
		r.log.Error("count users failed", zap.Error(err))
		return
	}
	subs, err := r.repo.CountSubscriptions(ctx)
	if err != nil {
		r.log.Error("count subscriptions failed", zap.Error(err))
		return
	}
	r.sendText(chatID, fmt.Sprintf("*📊 Radar Stats*\n\nUsers: %d\nSubscriptions: %d", users, subs))
}

// --- Subscription flow ---

func (r *Router) handleModePicked(chatID int64, mode domain.Mode) {
	r.handlePage(chatID, mode, 0)
}

func (r *Router) handlePage(chatID int64, mode domain.Mode, page int) {
	kb, ok := countryPageKeyboard(mode, page)
	if !ok {
		return
	}
	r.sendWithKeyboard(chatID, "Pick a country ("+mode.Label()+"):", kb)
}

func (r *Router) handleAdd(ctx context.Context, chatID int64, country string, mode domain.Mode) {
	if err := r.repo.AddSubscription(ctx, chatID, country, mode); err != nil {
		r.log.Error("add subscription failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Could not save the subscription. Please try again.")
		return
	}
	r.sendText(chatID, fmt.Sprintf("✅ Subscribed: %s (%s)", domain.CountryLabel(country), mode.Label()))
}

func (r *Router) handleRemove(ctx context.Context, chatID int64, index int) {
	subs, err := r.repo.ListSubscriptions(ctx, chatID)
	if err != nil {
		r.log.Error("list subscriptions failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	// Stale index (list changed since rendering) is ignored.
	if index >= len(subs) {
		return
	}
	s := subs[index]
	if err := r.repo.RemoveSubscription(ctx, chatID, s.Country, s.Mode); err != nil {
		r.log.Error("remove subscription failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	r.sendText(chatID, fmt.Sprintf("🗑 Removed: %s (%s)", domain.CountryLabel(s.Country), s.Mode.Label()))
}

// --- Settings flow ---

func (r *Router) handleTimezonePicker(chatID int64) {
	r.sendWithKeyboard(chatID, "Select timezone:", timezoneKeyboard())
}

func (r *Router) handleTimezone(ctx context.Context, chatID int64, zone string) {
	tz, err := domain.NormalizeTZ(zone)
	if err != nil {
		// Unknown zone in callback data; ignore.
		return
	}
	if err := r.repo.SetTimezone(ctx, chatID, tz); err != nil {
		r.log.Error("set timezone failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	r.sendText(chatID, "🌍 Timezone updated: "+tz)
}

func (r *Router) handlePresetPicker(chatID int64) {
	r.sendWithKeyboard(chatID, "How often should I remind you before a holiday?", presetKeyboard())
}

func (r *Router) handlePreset(ctx context.Context, chatID int64, preset string) {
	if err := r.repo.SetAlertPreset(ctx, chatID, preset); err != nil {
		r.log.Error("set preset failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	r.sendText(chatID, "🔔 Alert days updated: "+presetLabel(preset))
}

func (r *Router) handleMute(ctx context.Context, chatID int64, days int) {
	until := time.Now().UTC().AddDate(0, 0, days)
	until = time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, time.UTC)
	if err := r.repo.SetMuteUntil(ctx, chatID, &until); err != nil {
		r.log.Error("set mute failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	r.sendText(chatID, "🔕 Muted until "+until.Format(domain.DateLayout))
}

func (r *Router) handleUnmute(ctx context.Context, chatID int64) {
	if err := r.repo.SetMuteUntil(ctx, chatID, nil); err != nil {
		r.log.Error("unmute failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	r.sendText(chatID, "🔊 Alerts are back on.")
}
