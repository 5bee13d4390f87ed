package session

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgallion1/tenderdoc/internal/knowledge"
	"github.com/dgallion1/tenderdoc/internal/llm"
)

// LimitNotice is appended to the answer that uses up the question budget.
func LimitNotice(n int) string {
	return fmt.Sprintf("\n\n[INFO: You have used all %d questions. The session will reset after this response.]", n)
}

// Chat asks one question about the attached document and streams the
// answer. The question counts against the budget as soon as it is sent.
// A session already at its budget yields ErrLimitReached and resets.
func (s *Session) Chat(ctx context.Context, p llm.Provider, log *slog.Logger, message string, lang Language) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := ValidateQuestion(message); err != nil {
			yield("", err)
			return
		}
		req, cur, err := s.beginChat(message, lang)
		if err != nil {
			yield("", err)
			return
		}
		defer s.endChat()

		if log == nil {
			log = slog.Default()
		}
		clog := log.With("session_id", s.ID, "language", string(lang))
		clog.Info("chat request",
			"model", p.Model(),
			"question", cur.count,
			"max_questions", cur.max,
			"input_tokens_est", estimateTokens(req.Messages),
		)
		if LooksLikeInjection(message) {
			clog.Warn("question resembles a prompt injection", "question", cur.count)
		}

		var answer strings.Builder
		completed := true
		for frag, err := range p.Stream(ctx, req) {
			if err != nil {
				clog.Error("chat stream failed", "error", err)
				s.abandonTurn(cur.id)
				yield("", err)
				return
			}
			answer.WriteString(frag)
			if !yield(frag, nil) {
				completed = false
				break
			}
		}
		if !completed {
			clog.Info("chat abandoned by client", "response_chars", answer.Len())
			s.abandonTurn(cur.id)
			return
		}

		last := s.finishTurn(cur.id, answer.String())
		clog.Info("chat completed", "response_chars", answer.Len())
		if last {
			yield(LimitNotice(cur.max), nil)
		}
	}
}

type turn struct {
	id    int
	count int
	max   int
}

// beginChat validates the session state, records the question, and builds
// the provider request.
func (s *Session) beginChat(message string, lang Language) (llm.ChatRequest, turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()

	if s.busy {
		return llm.ChatRequest{}, turn{}, ErrBusy
	}
	if s.count >= s.maxQuestions {
		s.resetLocked()
		return llm.ChatRequest{}, turn{}, ErrLimitReached
	}

	msgs := make([]llm.Message, 0, len(s.history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt(lang)})
	msgs = append(msgs, s.history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: withContext(s.kb.Context(), message)})

	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: message})
	s.count++
	s.busy = true
	return llm.ChatRequest{Messages: msgs}, turn{id: s.gen, count: s.count, max: s.maxQuestions}, nil
}

func (s *Session) endChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.UpdatedAt = time.Now()
}

// finishTurn records the answer and reports whether the budget is now used up.
func (s *Session) finishTurn(gen int, answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: answer})
	return s.count >= s.maxQuestions
}

// abandonTurn drops the unanswered question from the history so user and
// assistant turns keep alternating. The question still counts.
func (s *Session) abandonTurn(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	if n := len(s.history); n > 0 && s.history[n-1].Role == llm.RoleUser {
		s.history = slices.Delete(s.history, n-1, n)
	}
}

func withContext(ctx, message string) string {
	if ctx == "" {
		return message
	}
	return "Use the following context to answer the question:\n\n" + ctx + "\n\nQuestion: " + message
}

func estimateTokens(msgs []llm.Message) int {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = m.Content
	}
	return knowledge.EstimateTokens(strings.Join(parts, "\n"))
}
