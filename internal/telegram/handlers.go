package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"furia-chatter/internal/auth"
)

const (
	greetingFormat   = "Olá, %s! Sou o assistente dos fãs de CS da FURIA 🐾"
	initialHelpText  = "Como posso te ajudar? Você pode digitar sua pergunta ou usar os botões abaixo!"
	unauthorizedText = "Desculpe, você não tem permissão para usar este bot."
	adminOnlyText    = "Comando disponível apenas para o administrador."
	genericErrorText = "Ocorreu um erro inesperado ao processar sua solicitação. Por favor, tente novamente."
	unknownCmdText   = "Comando desconhecido. Use /help para ver o que eu sei fazer."
)

// buildHelpText lists the phrases of the loaded command table.
func buildHelpText(phrases []string) string {
	var b strings.Builder
	b.WriteString("Eu sou o assistente de fãs da FURIA! 🐾\n\n")
	if len(phrases) > 0 {
		b.WriteString("Você pode me perguntar sobre:\n")
		for _, p := range phrases {
			fmt.Fprintf(&b, "• %s\n", p)
		}
		b.WriteString("\n")
	}
	b.WriteString("Ou simplesmente converse comigo sobre a FURIA! Use os botões ou digite sua pergunta.\n\n")
	b.WriteString("Use /start para reiniciar nossa conversa (limpa o histórico).")
	return b.String()
}

// isAllowed lets the admin through regardless of the allowlist.
func (b *Bot) isAllowed(userID int64) bool {
	if b.adminUserID != 0 && userID == b.adminUserID {
		return true
	}
	return b.authSvc.IsAllowed(userID)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
		return
	case "help":
		log.Printf("/help from user_id=%d", msg.From.ID)
		if !b.isAllowed(msg.From.ID) {
			b.sendMessage(msg.Chat.ID, unauthorizedText, false)
			return
		}
		b.sendMessage(msg.Chat.ID, b.helpText, true)
		return
	}

	// admin-only commands
	if msg.From.ID != b.adminUserID || b.adminUserID == 0 {
		if isAdminCommand(msg.Command()) {
			b.sendMessage(msg.Chat.ID, adminOnlyText, false)
		} else {
			b.sendMessage(msg.Chat.ID, unknownCmdText, false)
		}
		return
	}
	switch msg.Command() {
	case "report":
		stats, err := b.dailyStats()
		if err != nil {
			b.sendMessage(msg.Chat.ID, fmt.Sprintf("Relatório indisponível: %v", err), false)
			return
		}
		if strings.TrimSpace(msg.CommandArguments()) == "json" {
			data, err := stats.ToJSON()
			if err != nil {
				log.Printf("❌ failed to encode report: %v", err)
				b.sendMessage(msg.Chat.ID, genericErrorText, false)
				return
			}
			b.sendMessage(msg.Chat.ID, data, false)
			return
		}
		b.sendMessage(msg.Chat.ID, stats.GenerateReportSummary(), false)
	case "allowlist":
		var bld strings.Builder
		if b.authSvc.IsOpen() {
			bld.WriteString("Bot aberto para todos (allowlist vazia).\n")
		}
		bld.WriteString("Allowlist:\n")
		for _, u := range b.authSvc.List() {
			bld.WriteString(fmt.Sprintf("- id=%d, @%s %s\n", u.ID, u.Username, u.FirstName))
		}
		b.sendMessage(msg.Chat.ID, bld.String(), false)
	case "allow", "remove":
		uid, ok := b.parseUserIDArg(msg)
		if !ok {
			return
		}
		var err error
		if msg.Command() == "allow" {
			err = b.authSvc.Upsert(auth.User{ID: uid})
		} else {
			err = b.authSvc.Remove(uid)
		}
		if err != nil {
			log.Printf("allowlist %s %d failed: %v", msg.Command(), uid, err)
			b.sendMessage(msg.Chat.ID, genericErrorText, false)
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Allowlist atualizada (%s %d)", msg.Command(), uid), false)
	default:
		b.sendMessage(msg.Chat.ID, unknownCmdText, false)
	}
}

func isAdminCommand(cmd string) bool {
	switch cmd {
	case "report", "allowlist", "allow", "remove":
		return true
	}
	return false
}

func (b *Bot) parseUserIDArg(msg *tgbotapi.Message) (int64, bool) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 1 {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Uso: /%s <user_id>", msg.Command()), false)
		return 0, false
	}
	uid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(msg.Chat.ID, "user_id inválido", false)
		return 0, false
	}
	return uid, true
}

// handleStart resets the session and greets the user
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	log.Printf("/start from user_id=%d (@%s)", msg.From.ID, msg.From.UserName)
	if !b.isAllowed(msg.From.ID) {
		log.Printf("Unauthorized /start by user_id=%d", msg.From.ID)
		b.sendMessage(msg.Chat.ID, unauthorizedText, false)
		return
	}
	b.processor.Reset(msg.From.ID)
	b.sendMessage(msg.Chat.ID, fmt.Sprintf(greetingFormat, msg.From.FirstName), false)
	b.sendMessage(msg.Chat.ID, initialHelpText, true)
}

// handleIncomingMessage answers a plain text message. Users outside the
// allowlist are ignored without a reply.
func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		log.Printf("Unauthorized message from user_id=%d (@%s)", msg.From.ID, msg.From.UserName)
		return
	}
	log.Printf("Incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	b.sendTyping(msg.Chat.ID)
	reply, err := b.processor.Execute(ctx, msg.From.ID, msg.Text)
	if err != nil {
		log.Printf("❌ failed to process message from user_id=%d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, genericErrorText, false)
		return
	}
	b.sendMessage(msg.Chat.ID, reply, true)
	log.Printf("Reply sent to user_id=%d", msg.From.ID)
}
