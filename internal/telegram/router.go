package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/domain"
	"github.com/flavummontem/holiday-tg-bot/internal/metrics"
	"github.com/flavummontem/holiday-tg-bot/internal/store"
)

// Router wires Telegram updates to handlers.
type Router struct {
	bot           *tgbotapi.BotAPI
	log           *zap.Logger
	repo          store.Repo
	m             *metrics.Metrics
	adminUsername string
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, m *metrics.Metrics, adminUsername string) *Router {
	return &Router{
		bot:           bot,
		log:           log,
		repo:          repo,
		m:             m,
		adminUsername: adminUsername,
	}
}

// HandleUpdate routes a single update to the appropriate handler. Unknown
// commands and malformed callback payloads are ignored.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		r.m.UpdatesTotal.WithLabelValues("message").Inc()

		msg := upd.Message
		chatID := msg.Chat.ID
		username := ""
		if msg.From != nil {
			username = msg.From.UserName
		}
		if _, err := r.repo.EnsureUser(ctx, chatID, username); err != nil {
			r.log.Error("ensure user failed", zap.Error(err), zap.Int64("chatID", chatID))
			return
		}

		switch strings.TrimSpace(msg.Text) {
		case "/start":
			r.handleStart(chatID)
		case "/subscribe", btnSubscribe:
			r.handleSubscribe(chatID)
		case "/list", btnList:
			r.handleList(ctx, chatID)
		case "/settings", btnSettings:
			r.handleSettings(ctx, chatID)
		case "/stats":
			r.handleStats(ctx, chatID, username)
		default:
			// Free text and unknown commands are no-ops.
		}
		return
	}

	if upd.CallbackQuery != nil {
		r.m.UpdatesTotal.WithLabelValues("callback").Inc()

		cbq := upd.CallbackQuery
		if cbq.Message == nil {
			return
		}
		chatID := cbq.Message.Chat.ID
		r.answerCallback(cbq.ID)

		cb := domain.ParseCallback(cbq.Data)
		switch cb.Kind {
		case domain.CbMode:
			r.handleModePicked(chatID, cb.Mode)
		case domain.CbPage:
			r.handlePage(chatID, cb.Mode, cb.Page)
		case domain.CbAdd:
			r.handleAdd(ctx, chatID, cb.Country, cb.Mode)
		case domain.CbRemove:
			r.handleRemove(ctx, chatID, cb.Index)
		case domain.CbSettingsTZ:
			r.handleTimezonePicker(chatID)
		case domain.CbTimezone:
			r.handleTimezone(ctx, chatID, cb.Zone)
		case domain.CbSettingsFreq:
			r.handlePresetPicker(chatID)
		case domain.CbPreset:
			r.handlePreset(ctx, chatID, cb.Preset)
		case domain.CbMute:
			r.handleMute(ctx, chatID, cb.MuteDays)
		case domain.CbUnmute:
			r.handleUnmute(ctx, chatID)
		default:
			// CbUnknown, CbNoop: nothing to do.
		}
	}
}

// SendMessage sends a Markdown text message to the given chat. This makes
// Router satisfy alert.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}

func (r *Router) answerCallback(id string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}
