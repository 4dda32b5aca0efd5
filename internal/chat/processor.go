package chat

import (
	"context"
	"log"
	"time"

	"furia-chatter/internal/commands"
	"furia-chatter/internal/history"
	"furia-chatter/internal/storage"
)

// ResponseGateway produces a reply for a prompt given the user's prior turns.
// Implementations must not fail: they return a displayable fallback instead.
type ResponseGateway interface {
	GenerateResponse(ctx context.Context, userID int64, prompt string, hist []history.Interaction) string
}

// Processor routes a user message through the command table or the model
// and keeps the user's history up to date.
type Processor struct {
	commands *commands.Table
	gateway  ResponseGateway
	history  history.Store
	recorder storage.Recorder
	now      func() time.Time
}

func NewProcessor(table *commands.Table, gateway ResponseGateway, store history.Store) *Processor {
	return &Processor{
		commands: table,
		gateway:  gateway,
		history:  store,
		now:      time.Now,
	}
}

// WithRecorder enables audit logging of every interaction.
func (p *Processor) WithRecorder(rec storage.Recorder) *Processor {
	p.recorder = rec
	return p
}

// Execute answers one user message. The raw input, not a substituted prompt,
// is what ends up in the history.
func (p *Processor) Execute(ctx context.Context, userID int64, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		reply string
		route storage.Route
	)
	entry, ok := p.commands.Lookup(input)
	switch {
	case ok && entry.Kind == commands.Literal:
		log.Printf("Command %q mapped to a direct reply (user_id=%d)", commands.Normalize(input), userID)
		reply, route = entry.Text, storage.RouteLiteral
	case ok && entry.Kind == commands.Prompt:
		log.Printf("Command %q mapped to an LLM prompt (user_id=%d)", commands.Normalize(input), userID)
		reply, route = p.generate(ctx, userID, entry.Text), storage.RoutePrompt
	default:
		reply, route = p.generate(ctx, userID, input), storage.RouteGenerated
	}

	p.history.Add(userID, input, reply)
	p.record(userID, input, reply, route)
	return reply, nil
}

// Reset starts a fresh session for the user. Safe to call repeatedly.
func (p *Processor) Reset(userID int64) {
	p.history.Clear(userID)
}

func (p *Processor) generate(ctx context.Context, userID int64, prompt string) string {
	return p.gateway.GenerateResponse(ctx, userID, prompt, p.history.Get(userID))
}

func (p *Processor) record(userID int64, input, reply string, route storage.Route) {
	if p.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:         p.now().UTC(),
		UserID:            userID,
		UserMessage:       input,
		AssistantResponse: reply,
		Route:             route,
	}
	if err := p.recorder.AppendInteraction(ev); err != nil {
		log.Printf("⚠️ failed to record interaction for user_id=%d: %v", userID, err)
	}
}
