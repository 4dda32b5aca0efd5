package llm

import (
	"context"
	"log"
	"strings"
	"time"

	"furia-chatter/internal/history"
)

// FallbackMessage is shown to the user whenever generation fails.
const FallbackMessage = "Desculpe, tive um problema interno ao processar sua mensagem. Tente novamente mais tarde. 😥"

const DefaultTimeout = 60 * time.Second

// Gateway turns a prompt plus the user's history into a single model call.
// It never returns an error: failures are replaced by FallbackMessage.
type Gateway struct {
	client       Client
	systemPrompt string
	timeout      time.Duration
}

func NewGateway(client Client, systemPrompt string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{client: client, systemPrompt: systemPrompt, timeout: timeout}
}

// BuildMessages lays out the system instruction, the history as alternating
// user/assistant turns and the prompt as the final user turn.
func BuildMessages(systemPrompt, prompt string, hist []history.Interaction) []Message {
	msgs := make([]Message, 0, 2*len(hist)+2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, it := range hist {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: it.UserInput},
			Message{Role: RoleAssistant, Content: it.BotOutput},
		)
	}
	return append(msgs, Message{Role: RoleUser, Content: prompt})
}

func (g *Gateway) GenerateResponse(ctx context.Context, userID int64, prompt string, hist []history.Interaction) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msgs := BuildMessages(g.systemPrompt, prompt, hist)
	log.Printf("Sending prompt to LLM (user_id=%d, history=%d)", userID, len(hist))

	resp, err := g.client.Generate(ctx, msgs)
	if err != nil {
		log.Printf("❌ LLM generation failed for user_id=%d: %v", userID, err)
		return FallbackMessage
	}
	if strings.TrimSpace(resp.Content) == "" {
		log.Printf("❌ LLM returned empty content for user_id=%d", userID)
		return FallbackMessage
	}

	log.Printf("LLM response for user_id=%d [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		userID, resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)
	return resp.Content
}
