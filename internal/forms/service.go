// Package forms orchestrates form sessions: it opens forms (blank or derived
// from a source document), routes edits into the document engine, and drives
// validation and submission against the remote ERP service.
package forms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian/internal/catalog"
	"github.com/meridian-erp/meridian/internal/docform"
	"github.com/meridian-erp/meridian/internal/gateway"
)

// ErrSessionNotFound indicates an unknown or expired form session.
var ErrSessionNotFound = errors.New("forms: session not found")

// Gateway is the slice of the ERP client the service needs.
type Gateway interface {
	FetchDocument(ctx context.Context, kind, number string) (docform.SourceDocument, error)
	Submit(ctx context.Context, req gateway.SubmitRequest) (gateway.SubmitResult, error)
}

// SnapshotProvider supplies the catalog snapshot a new session pins.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// Service owns form sessions.
type Service struct {
	registry *docform.Registry
	catalog  SnapshotProvider
	gateway  Gateway
	store    *Store
	logger   *slog.Logger

	now func() time.Time
}

// NewService wires the form service.
func NewService(registry *docform.Registry, snapshots SnapshotProvider, gw Gateway, store *Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		catalog:  snapshots,
		gateway:  gw,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// DeriveRef names the source document a new form is derived from.
type DeriveRef struct {
	DocumentNumber string
}

// Open creates a new session for the given document type. When from is
// non-nil the form is seeded by derivation; a fetch failure aborts the whole
// open so no half-seeded session ever exists.
func (s *Service) Open(ctx context.Context, docTypeKind string, from *DeriveRef) (*Session, error) {
	dt, err := s.registry.Get(docTypeKind)
	if err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("forms: open %s: %w", docTypeKind, err)
	}

	form := docform.NewFormState(dt, snap)
	if from != nil {
		if dt.DerivesFrom == "" {
			return nil, fmt.Errorf("%w: %s does not derive from another document", docform.ErrSourceKindMismatch, dt.Kind)
		}
		src, err := s.gateway.FetchDocument(ctx, dt.DerivesFrom, from.DocumentNumber)
		if err != nil {
			return nil, fmt.Errorf("forms: derive %s from %s: %w", docTypeKind, from.DocumentNumber, err)
		}
		if err := form.SeedFromSource(src, s.now()); err != nil {
			return nil, fmt.Errorf("forms: derive %s from %s: %w", docTypeKind, from.DocumentNumber, err)
		}
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Form:      form,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.Put(sess)
	s.store.SaveDraft(ctx, sess)

	s.logger.Info("form opened",
		slog.String("form_id", sess.ID),
		slog.String("doc_type", docTypeKind),
		slog.Bool("derived", from != nil))
	return sess, nil
}

// Get returns a live session, recovering it from an autosaved draft if the
// in-memory copy is gone. Recovered drafts are reseeded through the engine so
// every derived amount is recomputed against a fresh snapshot.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if sess, ok := s.store.Get(id); ok {
		return sess, nil
	}

	d, ok := s.store.LoadDraft(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	dt, err := s.registry.Get(d.DocType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("forms: recover %s: %w", id, err)
	}

	form := docform.NewFormState(dt, snap)
	if err := form.Seed(d.Header, d.Lines); err != nil {
		return nil, fmt.Errorf("forms: recover %s: %w", id, err)
	}
	sess := &Session{
		ID:        id,
		Form:      form,
		CreatedAt: d.CreatedAt,
		UpdatedAt: s.now(),
	}
	s.store.Put(sess)
	s.logger.Info("form recovered from draft", slog.String("form_id", id))
	return sess, nil
}

// PatchHeader applies header edits.
func (s *Service) PatchHeader(ctx context.Context, id string, patch docform.HeaderPatch) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Form.ApplyHeader(patch)
	})
}

// AddLine appends a blank line and returns it along with the session.
func (s *Service) AddLine(ctx context.Context, id string) (*Session, docform.LineItem, error) {
	var line docform.LineItem
	sess, err := s.mutate(ctx, id, func(sess *Session) error {
		var err error
		line, err = sess.Form.AddLine()
		return err
	})
	return sess, line, err
}

// PatchLine applies field edits to one line.
func (s *Service) PatchLine(ctx context.Context, id, lineID string, patch docform.LinePatch) (*Session, docform.LineItem, error) {
	var line docform.LineItem
	sess, err := s.mutate(ctx, id, func(sess *Session) error {
		var err error
		line, err = sess.Form.UpdateLine(lineID, patch)
		return err
	})
	return sess, line, err
}

// RemoveLine deletes one line.
func (s *Service) RemoveLine(ctx context.Context, id, lineID string) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.Form.RemoveLine(lineID)
	})
}

// Validate runs validation and returns the current error map.
func (s *Service) Validate(ctx context.Context, id string) (*Session, docform.ErrorMap, error) {
	var errs docform.ErrorMap
	sess, err := s.mutate(ctx, id, func(sess *Session) error {
		var err error
		errs, err = sess.Form.Validate()
		return err
	})
	return sess, errs, err
}

// Submit validates, sends the document to the remote service, and records the
// outcome. On rejection or transport failure the form keeps every edit and
// moves to SubmissionFailed so the user can correct and retry.
func (s *Service) Submit(ctx context.Context, id string, attachments []gateway.Attachment) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	form := sess.Form
	if _, err := form.Validate(); err != nil {
		return sess, err
	}
	if err := form.BeginSubmit(); err != nil {
		return sess, err
	}

	result, submitErr := s.gateway.Submit(ctx, gateway.SubmitRequest{
		DocType:     form.DocType().Kind,
		Header:      form.Header(),
		Lines:       form.Lines(),
		Totals:      form.Totals(),
		Attachments: attachments,
	})
	if submitErr != nil {
		_ = form.MarkSubmissionFailed()
		sess.UpdatedAt = s.now()
		s.store.SaveDraft(ctx, sess)
		s.logger.Warn("form submission failed",
			slog.String("form_id", sess.ID),
			slog.Any("error", submitErr))
		return sess, submitErr
	}

	if err := form.MarkSubmitted(result.DocumentNumber); err != nil {
		return sess, err
	}
	sess.UpdatedAt = s.now()
	s.store.SaveDraft(ctx, sess)
	s.logger.Info("form submitted",
		slog.String("form_id", sess.ID),
		slog.String("document_number", result.DocumentNumber))
	return sess, nil
}

// Discard drops a session and its draft.
func (s *Service) Discard(ctx context.Context, id string) error {
	if _, ok := s.store.Get(id); !ok {
		if _, draftOK := s.store.LoadDraft(ctx, id); !draftOK {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
	}
	s.store.Delete(ctx, id)
	return nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return sess, err
	}
	sess.UpdatedAt = s.now()
	s.store.SaveDraft(ctx, sess)
	return sess, nil
}
