package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"edumate/internal/models"
)

// MaxEntries is the largest transcript kept for one session. Growing past it
// resets the whole transcript rather than trimming the oldest entries.
const MaxEntries = 1000

// ClearFunc runs after a transcript is cleared; it keeps the model's own
// conversation memory in step with what the user sees.
type ClearFunc func(ctx context.Context, sessionID string) error

// Store applies the transcript lifecycle rules on top of a Repository.
type Store struct {
	repo       Repository
	maxEntries int
	onClear    ClearFunc
}

// NewStore builds a Store. maxEntries <= 0 selects MaxEntries.
func NewStore(repo Repository, maxEntries int, onClear ClearFunc) *Store {
	if maxEntries <= 0 {
		maxEntries = MaxEntries
	}
	return &Store{repo: repo, maxEntries: maxEntries, onClear: onClear}
}

// History returns the session transcript in insertion order.
func (s *Store) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	return s.repo.Get(ctx, sessionID)
}

// Append adds one message and then enforces the size cap.
func (s *Store) Append(ctx context.Context, sessionID string, role models.Role, text, at string) error {
	return s.append(ctx, sessionID, models.Message{Role: role, Text: text, Time: at})
}

// AppendExchange records a question and its answer under the same timestamp.
func (s *Store) AppendExchange(ctx context.Context, sessionID, question, answer, at string) error {
	return s.append(ctx, sessionID,
		models.Message{Role: models.RoleUser, Text: question, Time: at},
		models.Message{Role: models.RoleBot, Text: answer, Time: at},
	)
}

func (s *Store) append(ctx context.Context, sessionID string, msgs ...models.Message) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if err := s.repo.Append(ctx, sessionID, msgs...); err != nil {
		return err
	}
	_, err := s.CheckOverflow(ctx, sessionID)
	return err
}

// Clear drops the transcript and the model memory bound to it.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return err
	}
	if s.onClear != nil {
		if err := s.onClear(ctx, sessionID); err != nil {
			return fmt.Errorf("clear model memory: %w", err)
		}
	}
	return nil
}

// CheckOverflow clears the session when its transcript holds more than the
// configured maximum. It reports whether a reset happened. An empty transcript,
// new or expired, also drops the model memory so it cannot outlive what the
// user sees.
func (s *Store) CheckOverflow(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.repo.Len(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if n == 0 && s.onClear != nil {
		if err := s.onClear(ctx, sessionID); err != nil {
			return false, fmt.Errorf("clear model memory: %w", err)
		}
		return false, nil
	}
	if n <= s.maxEntries {
		return false, nil
	}
	log.Info().Str("session", sessionID).Int("entries", n).Msg("history over capacity, resetting")
	if err := s.Clear(ctx, sessionID); err != nil {
		return false, err
	}
	return true, nil
}
