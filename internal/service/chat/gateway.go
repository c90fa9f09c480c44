package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"edumate/internal/service/ai"
	"edumate/internal/service/format"
)

// Fixed replies used when no formatted answer can be produced.
const (
	MsgNotUnderstood       = "Mohon maaf, saya belum dapat memahami pertanyaan Anda. Silakan coba dengan pertanyaan yang lebih spesifik."
	MsgNeedMoreTime        = "<p>Mohon maaf, saya membutuhkan waktu untuk memproses pertanyaan Anda. Silakan coba dengan pertanyaan yang lebih spesifik.</p>"
	MsgTechnicalDifficulty = "<p>Mohon maaf, terjadi kendala teknis. Silakan coba beberapa saat lagi.</p>"
)

// Gateway runs one question through the model and formats the reply.
type Gateway struct {
	generator ai.Generator
	memory    ai.Memory
	logger    zerolog.Logger
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithLogger replaces the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func NewGateway(generator ai.Generator, memory ai.Memory, opts ...Option) *Gateway {
	g := &Gateway{
		generator: generator,
		memory:    memory,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle answers question for the session. It never fails: every problem is
// turned into one of the fixed replies.
func (g *Gateway) Handle(ctx context.Context, sessionID, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return MsgNotUnderstood
	}
	logger := g.logger.With().Str("session", sessionID).Logger()

	history, err := g.memory.Load(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("load model memory failed")
		return MsgTechnicalDifficulty
	}

	result, err := g.generator.Generate(ctx, question, history)
	if err != nil {
		logger.Error().Err(err).Msg("model call failed")
		return MsgTechnicalDifficulty
	}
	result = strings.TrimSpace(result)
	if result == "" {
		logger.Error().Msg("received empty result from model")
		return MsgNeedMoreTime
	}

	answer, err := safeFormat(result)
	if err != nil {
		logger.Error().Err(err).Msg("format answer failed")
		return MsgTechnicalDifficulty
	}

	if err := g.memory.Save(ctx, sessionID, question, result); err != nil {
		logger.Warn().Err(err).Msg("save model memory failed")
	}
	return answer
}

// Forget drops the model memory of the session.
func (g *Gateway) Forget(ctx context.Context, sessionID string) error {
	return g.memory.Clear(ctx, sessionID)
}

func safeFormat(raw string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("formatter panic: %v", r)
		}
	}()
	out = format.Format(raw)
	if out == "" {
		return "", errors.New("formatter returned empty fragment")
	}
	return out, nil
}
