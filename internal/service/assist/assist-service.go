package assist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"ServiceSaathi/internal/config"
	"ServiceSaathi/internal/lib/sl"
)

const systemPrompt = "You are Service Saathi, a helpful assistant for citizens " +
	"of Kerala applying for government documents through Akshaya and CSC " +
	"centres. Answer questions about documents, required paperwork and centre " +
	"procedures. Keep answers short enough for a WhatsApp message."

const malayalamInstruction = "Reply in Malayalam. Translate any English " +
	"source material into natural Malayalam."

// Service is the chat collaborator behind menu option 1. The engine only
// needs its liveness probe and a respond(text) -> text contract.
type Service struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewAssistService(conf *config.Config, logger *slog.Logger) *Service {
	if conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Service{
		client: openai.NewClient(conf.OpenAI.ApiKey),
		model:  conf.OpenAI.Model,
		log:    logger.With(sl.Module("assist service")),
	}
}

// Ping is a lightweight liveness probe, used before switching a user into
// chat mode.
func (s *Service) Ping(ctx context.Context) error {
	_, err := s.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("assist ping: %w", err)
	}
	return nil
}

// Respond answers a free-text user query. Malayalam-language users get their
// answer translated.
func (s *Service) Respond(ctx context.Context, query string, malayalam bool) (string, error) {
	system := systemPrompt
	if malayalam {
		system += " " + malayalamInstruction
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	answer := resp.Choices[0].Message.Content

	s.log.With(
		slog.Int("query_len", len(query)),
		slog.Int("answer_len", len(answer)),
	).Debug("assist response")

	return answer, nil
}
