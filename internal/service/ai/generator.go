package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	systemKey   = "system"
	historyKey  = "chat_history"
	questionKey = "question"
)

// ErrEmptyCompletion reports a model call that returned no message at all.
var ErrEmptyCompletion = errors.New("model returned no message")

// ProviderError wraps any failure coming from the model provider.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Generator answers one question given the prior conversation.
type Generator interface {
	Generate(ctx context.Context, question string, history []*schema.Message) (string, error)
}

// ChainGenerator runs system prompt, history and question through an eino chain.
type ChainGenerator struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
	system   *schema.Message
}

// NewChainGenerator compiles the prompt template and chat model into a chain.
// The system prompt is injected as a ready-made message, so braces in a custom
// persona are sent verbatim instead of being read as template variables.
func NewChainGenerator(ctx context.Context, chatModel model.BaseChatModel, systemPrompt string) (*ChainGenerator, error) {
	if chatModel == nil {
		return nil, errors.New("chat model cannot be nil")
	}
	g := &ChainGenerator{system: schema.SystemMessage(systemPrompt)}

	tpl := prompt.FromMessages(schema.FString,
		schema.MessagesPlaceholder(systemKey, false),
		schema.MessagesPlaceholder(historyKey, true),
		schema.UserMessage("{"+questionKey+"}"),
	)
	if _, err := tpl.Format(ctx, g.variables("", nil)); err != nil {
		return nil, fmt.Errorf("render prompt template: %w", err)
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl).AppendChatModel(chatModel)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}
	g.runnable = runnable
	return g, nil
}

func (g *ChainGenerator) Generate(ctx context.Context, question string, history []*schema.Message) (string, error) {
	out, err := g.runnable.Invoke(ctx, g.variables(question, history))
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	if out == nil {
		return "", &ProviderError{Err: ErrEmptyCompletion}
	}
	return out.Content, nil
}

func (g *ChainGenerator) variables(question string, history []*schema.Message) map[string]any {
	if history == nil {
		history = []*schema.Message{}
	}
	return map[string]any{
		systemKey:   []*schema.Message{g.system},
		historyKey:  history,
		questionKey: question,
	}
}
