package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"furia-chatter/internal/auth"
	"furia-chatter/internal/chat"
	"furia-chatter/internal/commands"
	"furia-chatter/internal/config"
	"furia-chatter/internal/history"
	"furia-chatter/internal/llm"
	"furia-chatter/internal/scheduler"
	"furia-chatter/internal/storage"
	"furia-chatter/internal/telegram"
)

const defaultSystemPrompt = `Você é um assistente chatbot amigável e MUITO entusiasmado, um grande fã do time de Counter-Strike (CS) da FURIA.
Seu objetivo é ajudar outros fãs com informações sobre o time.
Use um tom animado, inclua emojis relevantes como 🐾 (pantera), 🔥 (fogo), 🏆 (troféu) quando apropriado.
Responda sempre em português brasileiro.
Mantenha as respostas relativamente curtas e diretas, a menos que peçam detalhes.
Se não souber a resposta, diga que vai procurar ou que não tem essa informação no momento, mas sempre com entusiasmo pela FURIA!
Forneça a resposta diretamente, sem frases como "Claro!" ou "Com certeza!".
Não inclua cumprimentos genéricos como "Olá!" no início de cada resposta, vá direto ao ponto.`

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	var allowRepo auth.Repository
	if cfg.AllowlistFilePath != "" {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Printf("failed to init allowlist repo: %v", err)
		} else {
			allowRepo = repo
		}
	}
	authSvc, err := auth.NewWithRepo(allowRepo, cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

	llmClient, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}
	log.Printf("LLM provider=%s model=%s timeout=%s", cfg.LLMProvider, cfg.OpenAIModel, cfg.LLMTimeout)

	table := loadCommands(cfg.CommandsPath)
	gateway := llm.NewGateway(llmClient, readSystemPrompt(cfg.SystemPromptPath), cfg.LLMTimeout)
	store := history.NewManager(cfg.MaxHistory)
	log.Printf("In-memory history initialized (max %d interactions per user)", store.MaxSize())

	processor := chat.NewProcessor(table, gateway, store)

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
			processor.WithRecorder(fr)
		}
	}

	bot, err := telegram.New(cfg.TelegramBotToken, authSvc, processor, table.Phrases(), rec, cfg.AdminUserID)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(cfg.ReportSchedule)
	if cfg.AdminUserID != 0 && rec != nil {
		sched.SetReportFunction(bot.SendDailyReport)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Println("Starting FURIA fan bot...")
	bot.Start(ctx)
}

func loadCommands(path string) *commands.Table {
	if path == "" {
		return commands.Default()
	}
	table, err := commands.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("commands file %s not found, using built-in commands", path)
			return commands.Default()
		}
		log.Fatalf("failed to load commands: %v", err)
	}
	log.Printf("Loaded %d commands from %s", table.Len(), path)
	return table
}

func readSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s, using built-in prompt: %v", path, err)
		return defaultSystemPrompt
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return defaultSystemPrompt
}
