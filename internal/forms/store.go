package forms

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-erp/meridian/internal/docform"
)

// Session is one open form. Each session has exactly one writer (the user),
// but the HTTP server is concurrent, so access to the form goes through the
// session mutex.
type Session struct {
	ID        string
	Form      *docform.FormState
	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.Mutex
}

// draft is the autosaved shape of a session. Derived amounts are saved too
// but are recomputed on recovery; the engine never trusts stored aggregates.
type draft struct {
	DocType   string                 `json:"doc_type"`
	Header    docform.DocumentHeader `json:"header"`
	Lines     []docform.LineItem     `json:"lines"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Store keeps live sessions in memory and autosaves drafts to Redis so an
// interrupted session can be recovered. Redis is best effort: a failed
// autosave is logged, never surfaced to the editing flow.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore constructs a session store. redisClient may be nil; drafts are
// then kept in memory only.
func NewStore(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger,
	}
}

func draftKey(id string) string { return "forms:draft:" + id }

// Put registers a session.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// Get returns a live session.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

// Delete discards a session and its draft.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if s.redis != nil {
		if err := s.redis.Del(ctx, draftKey(id)).Err(); err != nil && s.logger != nil {
			s.logger.Warn("draft delete failed", slog.String("form_id", id), slog.Any("error", err))
		}
	}
}

// SaveDraft autosaves the session contents. Caller must hold the session lock.
func (s *Store) SaveDraft(ctx context.Context, sess *Session) {
	if s.redis == nil {
		return
	}
	d := draft{
		DocType:   sess.Form.DocType().Kind,
		Header:    sess.Form.Header(),
		Lines:     sess.Form.Lines(),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("draft encode failed", slog.String("form_id", sess.ID), slog.Any("error", err))
		}
		return
	}
	if err := s.redis.Set(ctx, draftKey(sess.ID), raw, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("draft autosave failed", slog.String("form_id", sess.ID), slog.Any("error", err))
	}
}

// LoadDraft fetches an autosaved draft for recovery.
func (s *Store) LoadDraft(ctx context.Context, id string) (draft, bool) {
	if s.redis == nil {
		return draft{}, false
	}
	raw, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		return draft{}, false
	}
	var d draft
	if err := json.Unmarshal(raw, &d); err != nil {
		if s.logger != nil {
			s.logger.Warn("draft decode failed", slog.String("form_id", id), slog.Any("error", err))
		}
		return draft{}, false
	}
	return d, true
}
