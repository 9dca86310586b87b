// Package assist drafts suggested admin replies from a chat
// transcript. It is optional: when Ark credentials are absent the
// server simply runs without it.
package assist

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nvthuy/salon-support/internal/model/chat"
)

const systemPrompt = "You are a support agent for a beauty salon and " +
	"service-booking storefront. Draft a short, polite reply to the " +
	"guest's latest message. Answer in the guest's language and do not " +
	"invent order or booking details."

// Service wraps a prompt-to-model chain over the configured provider.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the suggestion chain for the given model.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile suggestion chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Suggest drafts the next admin reply for the transcript.
func (s *Service) Suggest(ctx context.Context, session chat.Session, history []chat.Message) (string, error) {
	input := map[string]any{
		"system":  systemPrompt,
		"history": historyMessages(history),
		"query":   fmt.Sprintf("Suggest the next reply to guest %s.", session.GuestName),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("run suggestion chain: %w", err)
	}

	log.Printf("[assist] drafted reply for chat=%s length=%d", session.ID, len(response.Content))
	return response.Content, nil
}

// historyMessages maps the transcript onto model roles: staff turns
// become assistant messages, guest turns user messages.
func historyMessages(history []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m.SenderRole == "Admin" {
			out = append(out, schema.AssistantMessage(m.Content, nil))
			continue
		}
		out = append(out, schema.UserMessage(m.Content))
	}
	return out
}
