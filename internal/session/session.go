// Package session holds per-user chat state over one parsed tender
// document: the conversation, the selected sections, and the question
// budget.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/dgallion1/tenderdoc/internal/knowledge"
	"github.com/dgallion1/tenderdoc/internal/llm"
)

// DefaultMaxQuestions is the per-session question budget.
const DefaultMaxQuestions = 10

var (
	ErrBusy           = errors.New("a chat is already in progress for this session")
	ErrLimitReached   = errors.New("session limit reached; the session has been reset")
	ErrUnknownSection = errors.New("unknown section")
)

// Session is one conversation. All methods are safe for concurrent use;
// at most one Chat runs at a time.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	maxQuestions int
	count        int
	history      []llm.Message
	kb           knowledge.Base

	doc      *doctree.Document
	docName  string
	docHash  string
	selected []string

	busy bool
	// gen changes on every conversation reset so an in-flight chat does
	// not write into a conversation that was cleared under it.
	gen int
}

// Options configure a new session.
type Options struct {
	MaxQuestions  int
	MaxItemTokens int
}

// New creates an empty session.
func New(id string, opts Options) *Session {
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = DefaultMaxQuestions
	}
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		UpdatedAt:    now,
		maxQuestions: opts.MaxQuestions,
		kb:           knowledge.Base{MaxItemTokens: opts.MaxItemTokens},
	}
}

// AttachDocument stores a parsed document under its content hash. Attaching
// the same content again keeps all state and reports reused. A new document
// resets the selection to the default sections and rebuilds the knowledge
// base; a session that had used its whole budget starts a fresh
// conversation.
func (s *Session) AttachDocument(name, hash string, doc *doctree.Document) (reused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()

	if s.doc != nil && hash != "" && hash == s.docHash {
		return true
	}
	s.doc = doc
	s.docName = name
	s.docHash = hash
	s.selected = slices.Clone(catalog.DefaultSelection)
	s.rebuildKnowledgeLocked()
	if s.count >= s.maxQuestions {
		s.resetConversationLocked()
	}
	return false
}

// SelectSections replaces the selection and rebuilds the knowledge base
// from it. Identifiers must be catalog entries; sections absent from the
// document are kept in the selection but contribute nothing.
func (s *Session) SelectSections(ids []string) error {
	for _, id := range ids {
		if !catalog.Contains(id) {
			return fmt.Errorf("%w: %q", ErrUnknownSection, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()

	s.selected = dedupe(ids)
	s.rebuildKnowledgeLocked()
	if s.count >= s.maxQuestions {
		s.resetConversationLocked()
	}
	return nil
}

// Reset clears the conversation, knowledge, document and selection. The
// session keeps its ID.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.resetConversationLocked()
	s.kb.Clear()
	s.doc = nil
	s.docName = ""
	s.docHash = ""
	s.selected = nil
}

func (s *Session) resetConversationLocked() {
	s.history = nil
	s.count = 0
	s.gen++
}

func (s *Session) rebuildKnowledgeLocked() {
	if s.doc == nil {
		s.kb.Clear()
		return
	}
	source := s.docName
	if source == "" {
		source = "PDF"
	}
	s.kb.Replace(s.doc.Select(s.selected), source)
}

// Document returns the attached document, or nil. The document is shared
// and must not be modified.
func (s *Session) Document() *doctree.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// DocumentSummary describes the attached document without its content.
type DocumentSummary struct {
	Name          string   `json:"name"`
	ContentHash   string   `json:"content_hash"`
	TotalSections int      `json:"total_sections"`
	Found         []string `json:"found_sections"`
	Missing       []string `json:"missing_sections"`
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID            string           `json:"session_id"`
	QuestionCount int              `json:"question_count"`
	MaxQuestions  int              `json:"max_questions"`
	LimitReached  bool             `json:"limit_reached"`
	Selected      []string         `json:"selected_sections"`
	Knowledge     []knowledge.Item `json:"knowledge"`
	History       []llm.Message    `json:"history"`
	Document      *DocumentSummary `json:"document,omitempty"`
	Busy          bool             `json:"busy"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.ID,
		QuestionCount: s.count,
		MaxQuestions:  s.maxQuestions,
		LimitReached:  s.count >= s.maxQuestions,
		Selected:      slices.Clone(s.selected),
		Knowledge:     s.kb.Items(),
		History:       slices.Clone(s.history),
		Busy:          s.busy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if snap.Selected == nil {
		snap.Selected = []string{}
	}
	if snap.History == nil {
		snap.History = []llm.Message{}
	}
	if s.doc != nil {
		found := make([]string, 0, len(s.doc.Sections))
		for _, sec := range s.doc.Sections {
			found = append(found, sec.ID)
		}
		snap.Document = &DocumentSummary{
			Name:          s.docName,
			ContentHash:   s.docHash,
			TotalSections: s.doc.TotalSections,
			Found:         found,
			Missing:       slices.Clone(s.doc.Missing),
		}
	}
	return snap
}

// dedupe drops repeated ids and returns the rest in catalog order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b string) int {
		return catalog.Order(a) - catalog.Order(b)
	})
	return out
}
