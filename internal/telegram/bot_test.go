package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"furia-chatter/internal/auth"
	"furia-chatter/internal/chat"
	"furia-chatter/internal/commands"
	"furia-chatter/internal/history"
	"furia-chatter/internal/storage"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	actions int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.ChatActionConfig); ok {
		f.actions++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeGateway struct{ reply string }

func (f fakeGateway) GenerateResponse(context.Context, int64, string, []history.Interaction) string {
	return f.reply
}

type stubProcessor struct {
	reply  string
	err    error
	panics bool
	calls  int
	resets []int64
}

func (s *stubProcessor) Execute(context.Context, int64, string) (string, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.reply, s.err
}

func (s *stubProcessor) Reset(userID int64) { s.resets = append(s.resets, userID) }

type memRecorder struct{ events []storage.Event }

func (m *memRecorder) AppendInteraction(ev storage.Event) error {
	m.events = append(m.events, ev)
	return nil
}
func (m *memRecorder) LoadInteractions() ([]storage.Event, error) { return m.events, nil }

func newTestBot(t *testing.T, proc MessageProcessor, allowed ...int64) (*Bot, *fakeSender) {
	t.Helper()
	svc, err := auth.NewWithRepo(nil, allowed)
	if err != nil {
		t.Fatalf("auth init: %v", err)
	}
	fs := &fakeSender{}
	return &Bot{
		s:           fs,
		authSvc:     svc,
		processor:   proc,
		adminUserID: 999,
		keyboard:    suggestionKeyboard(commands.Default().Phrases()),
		helpText:    buildHelpText(commands.Default().Phrases()),
		dispatch:    newDispatcher(),
		now:         time.Now,
	}, fs
}

func textMsg(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{From: &tgbotapi.User{ID: userID, FirstName: "Gabi"}, Chat: &tgbotapi.Chat{ID: userID * 10}, Text: text}
}

func commandMsg(userID int64, text string) *tgbotapi.Message {
	m := textMsg(userID, text)
	cmdLen := len(strings.Fields(text)[0])
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return m
}

func TestHandleIncomingMessage_RepliesWithKeyboard(t *testing.T) {
	store := history.NewManager(10)
	proc := chat.NewProcessor(commands.Default(), fakeGateway{reply: "Vamos FURIA! 🐾"}, store)
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), textMsg(42, "oi"))

	if len(fs.sent) != 1 || fs.sent[0].Text != "Vamos FURIA! 🐾" {
		t.Fatalf("unexpected sent: %+v", fs.texts())
	}
	if fs.sent[0].ChatID != 420 {
		t.Fatalf("reply sent to wrong chat: %d", fs.sent[0].ChatID)
	}
	if _, ok := fs.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup); !ok {
		t.Fatalf("reply should carry the suggestion keyboard")
	}
	if fs.actions != 1 {
		t.Fatalf("typing action not sent")
	}
	if h := store.Get(42); len(h) != 1 || h[0].UserInput != "oi" {
		t.Fatalf("history not updated: %+v", h)
	}
}

func TestHandleIncomingMessage_LiteralCommand(t *testing.T) {
	proc := chat.NewProcessor(commands.Default(), fakeGateway{reply: "llm"}, history.NewManager(10))
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), textMsg(1, "Jogadores"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0].Text, "FalleN") {
		t.Fatalf("unexpected sent: %+v", fs.texts())
	}
}

func TestHandleIncomingMessage_Unauthorized(t *testing.T) {
	proc := &stubProcessor{reply: "x"}
	b, fs := newTestBot(t, proc, 1)

	b.handleSafely(context.Background(), textMsg(2, "oi"))

	if proc.calls != 0 {
		t.Fatalf("processor must not run for unauthorized users")
	}
	if len(fs.sent) != 0 {
		t.Fatalf("unexpected reply: %+v", fs.texts())
	}
}

func TestHandleIncomingMessage_ProcessingError(t *testing.T) {
	proc := &stubProcessor{err: errors.New("unexpected")}
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), textMsg(1, "oi"))

	if got := fs.texts(); len(got) != 1 || got[0] != genericErrorText {
		t.Fatalf("want generic error message, got %+v", got)
	}
}

func TestHandleIncomingMessage_PanicIsRecovered(t *testing.T) {
	proc := &stubProcessor{panics: true}
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), textMsg(1, "oi"))

	if got := fs.texts(); len(got) != 1 || got[0] != genericErrorText {
		t.Fatalf("want generic error message, got %+v", got)
	}
}

func TestStartCommand_ResetsHistoryAndGreets(t *testing.T) {
	proc := &stubProcessor{}
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), commandMsg(5, "/start"))

	if len(proc.resets) != 1 || proc.resets[0] != 5 {
		t.Fatalf("reset not called: %v", proc.resets)
	}
	got := fs.texts()
	if len(got) != 2 || !strings.Contains(got[0], "Olá, Gabi!") || got[1] != initialHelpText {
		t.Fatalf("unexpected greeting: %+v", got)
	}
	if fs.sent[1].ReplyMarkup == nil {
		t.Fatalf("help prompt should carry the keyboard")
	}
}

func TestStartCommand_Unauthorized(t *testing.T) {
	proc := &stubProcessor{}
	b, fs := newTestBot(t, proc, 1)

	b.handleSafely(context.Background(), commandMsg(5, "/start"))

	if len(proc.resets) != 0 {
		t.Fatalf("unauthorized /start must not reset")
	}
	if got := fs.texts(); len(got) != 1 || got[0] != unauthorizedText {
		t.Fatalf("unexpected reply: %+v", got)
	}
}

func TestHelpCommand(t *testing.T) {
	b, fs := newTestBot(t, &stubProcessor{})
	b.handleSafely(context.Background(), commandMsg(5, "/help"))
	got := fs.texts()
	if len(got) != 1 || got[0] != b.helpText {
		t.Fatalf("unexpected reply: %+v", got)
	}
	for _, p := range commands.Default().Phrases() {
		if !strings.Contains(got[0], p) {
			t.Fatalf("help should mention %q: %s", p, got[0])
		}
	}
}

func TestHelpText_FollowsCommandTable(t *testing.T) {
	table, err := commands.Parse([]byte("commands:\n  - phrase: História\n    prompt: Conte a história da FURIA\n  - phrase: Títulos\n    literal: Muitos!\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	text := buildHelpText(table.Phrases())
	if !strings.Contains(text, "• História\n") || !strings.Contains(text, "• Títulos\n") {
		t.Fatalf("phrases missing from help: %s", text)
	}
	if strings.Contains(text, "Jogadores") {
		t.Fatalf("help should not list phrases outside the table: %s", text)
	}
}

func TestReportCommand(t *testing.T) {
	rec := &memRecorder{}
	proc := chat.NewProcessor(commands.Default(), fakeGateway{reply: "ok"}, history.NewManager(10)).WithRecorder(rec)
	b, fs := newTestBot(t, proc)
	b.recorder = rec

	b.handleSafely(context.Background(), textMsg(1, "curiosidades"))
	b.handleSafely(context.Background(), textMsg(2, "oi"))

	// non-admin
	b.handleSafely(context.Background(), commandMsg(1, "/report"))
	if got := fs.texts(); got[len(got)-1] != adminOnlyText {
		t.Fatalf("non-admin should be refused, got %q", got[len(got)-1])
	}

	b.handleSafely(context.Background(), commandMsg(999, "/report"))
	got := fs.texts()
	report := got[len(got)-1]
	if !strings.Contains(report, "Total de mensagens: 2") || !strings.Contains(report, "Usuários únicos: 2") {
		t.Fatalf("unexpected report: %s", report)
	}
}

func TestAllowCommand(t *testing.T) {
	b, fs := newTestBot(t, &stubProcessor{}, 999)

	b.handleSafely(context.Background(), commandMsg(999, "/allow 77"))
	if !b.authSvc.IsAllowed(77) {
		t.Fatalf("user not added: %+v", fs.texts())
	}
	b.handleSafely(context.Background(), commandMsg(999, "/remove 77"))
	if b.authSvc.IsAllowed(77) {
		t.Fatalf("user not removed")
	}
	b.handleSafely(context.Background(), commandMsg(999, "/allow abc"))
	if got := fs.texts(); got[len(got)-1] != "user_id inválido" {
		t.Fatalf("unexpected reply: %q", got[len(got)-1])
	}
}

func TestRemoveLastUser_KeepsStrangersOut(t *testing.T) {
	proc := &stubProcessor{reply: "ok"}
	b, fs := newTestBot(t, proc, 77)

	b.handleSafely(context.Background(), commandMsg(999, "/remove 77"))
	b.handleSafely(context.Background(), textMsg(12345, "oi"))
	b.handleSafely(context.Background(), textMsg(77, "oi"))

	if proc.calls != 0 {
		t.Fatalf("stranger got through after the last user was removed: calls=%d, sent=%+v", proc.calls, fs.texts())
	}
}

func TestAdminCanChatAfterAllow(t *testing.T) {
	proc := &stubProcessor{reply: "ok"}
	b, fs := newTestBot(t, proc)

	b.handleSafely(context.Background(), commandMsg(999, "/allow 77"))
	b.handleSafely(context.Background(), textMsg(999, "oi"))
	b.handleSafely(context.Background(), textMsg(77, "oi"))
	b.handleSafely(context.Background(), textMsg(12345, "oi"))

	if proc.calls != 2 {
		t.Fatalf("want admin and allowed user served, got calls=%d", proc.calls)
	}
	if got := fs.texts(); got[len(got)-1] != "ok" {
		t.Fatalf("unexpected replies: %+v", got)
	}
}

func TestReportCommand_JSON(t *testing.T) {
	rec := &memRecorder{events: []storage.Event{{Timestamp: time.Now().UTC(), UserID: 3, UserMessage: "oi", Route: storage.RoutePrompt}}}
	b, fs := newTestBot(t, &stubProcessor{})
	b.recorder = rec

	b.handleSafely(context.Background(), commandMsg(999, "/report json"))

	got := fs.texts()
	if len(got) != 1 || !strings.Contains(got[0], `"total_messages": 1`) || !strings.Contains(got[0], `"prompt": 1`) {
		t.Fatalf("unexpected json report: %+v", got)
	}
}

func TestSendDailyReport(t *testing.T) {
	rec := &memRecorder{events: []storage.Event{{Timestamp: time.Now().UTC(), UserID: 3, UserMessage: "oi", Route: storage.RouteGenerated}}}
	b, fs := newTestBot(t, &stubProcessor{})
	b.recorder = rec

	if err := b.SendDailyReport(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(fs.sent) != 1 || fs.sent[0].ChatID != 999 {
		t.Fatalf("report should go to the admin: %+v", fs.sent)
	}

	b.adminUserID = 0
	if err := b.SendDailyReport(context.Background()); err == nil {
		t.Fatal("expected error without admin")
	}
}

func TestSendMessage_SplitsLongText(t *testing.T) {
	b, fs := newTestBot(t, &stubProcessor{})
	long := strings.Repeat("a", maxMessageLength) + "\n" + strings.Repeat("b", 10)

	b.sendMessage(1, long, true)

	if len(fs.sent) != 2 {
		t.Fatalf("want 2 chunks, got %d", len(fs.sent))
	}
	if fs.sent[0].ReplyMarkup != nil || fs.sent[1].ReplyMarkup == nil {
		t.Fatalf("keyboard should only be attached to the last chunk")
	}
}

func TestSplitText(t *testing.T) {
	if got := splitText("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	got := splitText("line one\nline two\nline three", 12)
	if strings.Join(got, "") != "line one\nline two\nline three" {
		t.Fatalf("chunks lost text: %q", got)
	}
	for _, c := range got {
		if len([]rune(c)) > 12 {
			t.Fatalf("chunk too long: %q", c)
		}
	}
	if got[0] != "line one\n" {
		t.Fatalf("should split on newline, got %q", got[0])
	}
	// multibyte runes are never cut in half
	for _, c := range splitText(strings.Repeat("🐾", 7), 3) {
		if !strings.HasPrefix(c, "🐾") {
			t.Fatalf("broken rune in %q", c)
		}
	}
}

func TestSuggestionKeyboard(t *testing.T) {
	kb := suggestionKeyboard([]string{"a", "b", "c"})
	if len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 2 || len(kb.Keyboard[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", kb.Keyboard)
	}
	if !kb.ResizeKeyboard {
		t.Fatal("keyboard should resize")
	}
}
