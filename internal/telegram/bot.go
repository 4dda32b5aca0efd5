package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"furia-chatter/internal/analytics"
	"furia-chatter/internal/auth"
	"furia-chatter/internal/storage"
)

// telegram rejects messages longer than this many characters
const maxMessageLength = 4096

// MessageProcessor is the conversational core the bot delegates to.
type MessageProcessor interface {
	Execute(ctx context.Context, userID int64, input string) (string, error)
	Reset(userID int64)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	authSvc     *auth.Service
	processor   MessageProcessor
	recorder    storage.Recorder
	adminUserID int64
	keyboard    tgbotapi.ReplyKeyboardMarkup
	helpText    string
	dispatch    *dispatcher
	now         func() time.Time
}

func New(botToken string, authSvc *auth.Service, processor MessageProcessor, phrases []string, rec storage.Recorder, adminUserID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:         api,
		s:           botAPISender{api: api},
		authSvc:     authSvc,
		processor:   processor,
		recorder:    rec,
		adminUserID: adminUserID,
		keyboard:    suggestionKeyboard(phrases),
		helpText:    buildHelpText(phrases),
		dispatch:    newDispatcher(),
		now:         time.Now,
	}, nil
}

// Start polls updates until ctx is cancelled and waits for in-flight messages.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("Authorized on account @%s, polling updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.dispatch.wait()
			log.Println("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.dispatch.wait()
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	b.dispatch.submit(msg.From.ID, func() { b.handleSafely(ctx, msg) })
}

// handleSafely is the transport-level catch-all: any panic while handling a
// message is logged and the user gets a generic failure message.
func (b *Bot) handleSafely(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic while handling message from user_id=%d: %v", msg.From.ID, r)
			b.sendMessage(msg.Chat.ID, genericErrorText, false)
		}
	}()
	if ctx.Err() != nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleIncomingMessage(ctx, msg)
}

// SendDailyReport sends today's usage stats to the admin.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.adminUserID == 0 {
		return errors.New("admin user is not configured")
	}
	stats, err := b.dailyStats()
	if err != nil {
		return err
	}
	b.sendMessage(b.adminUserID, stats.GenerateReportSummary(), false)
	return nil
}

func (b *Bot) dailyStats() (*analytics.DailyStats, error) {
	if b.recorder == nil {
		return nil, errors.New("interaction log is disabled")
	}
	events, err := b.recorder.LoadInteractions()
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	return analytics.AnalyzeDailyLogs(events, b.now().UTC()), nil
}

func suggestionKeyboard(phrases []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(phrases); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(phrases[i])}
		if i+1 < len(phrases) {
			row = append(row, tgbotapi.NewKeyboardButton(phrases[i+1]))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func (b *Bot) sendMessage(chatID int64, text string, withKeyboard bool) {
	chunks := splitText(text, maxMessageLength)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if withKeyboard && i == len(chunks)-1 && len(b.keyboard.Keyboard) > 0 {
			msg.ReplyMarkup = b.keyboard
		}
		if _, err := b.s.Send(msg); err != nil {
			log.Printf("failed to send message: %v", err)
			return
		}
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("failed to send typing action: %v", err)
	}
}

// splitText cuts s into pieces of at most limit runes, preferring line breaks.
func splitText(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}
	var out []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
