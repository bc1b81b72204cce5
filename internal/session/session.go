package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/chainguard-dev/clog"

	"github.com/dshills/snapreview/internal/kv"
)

// Key is the storage key of the session record.
const Key = "codeReviewerSession"

// DefaultLanguage is used when a stored record has no language.
const DefaultLanguage = "javascript"

// Record is the persisted session.
type Record struct {
	Code         string `json:"code"`
	Language     string `json:"language"`
	ReviewResult string `json:"reviewResult"`
}

// Store persists a Record through a kv.Store.
type Store struct {
	kv    kv.Store
	saved atomic.Bool
}

// Open creates a Store and initialises IsSaved from whether a record exists.
func Open(ctx context.Context, store kv.Store) (*Store, error) {
	s := &Store{kv: store}
	ok, err := s.Exists(ctx)
	if err != nil {
		return nil, err
	}
	s.saved.Store(ok)
	return s, nil
}

// IsSaved reports whether a session is known to be stored.
func (s *Store) IsSaved() bool {
	return s.saved.Load()
}

// Exists checks for a stored record without decoding it. An unreadable
// entry still counts as present so that it can be cleared.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	_, ok, err := s.kv.Get(ctx, Key)
	if errors.Is(err, kv.ErrCorrupt) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	return ok, nil
}

// Save writes rec as one value under Key.
func (s *Store) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.saved.Store(true)
	clog.FromContext(ctx).With("language", rec.Language).Debug("session saved")
	return nil
}

// Load returns the stored record, or nil when there is none. Missing fields
// take their defaults.
func (s *Store) Load(ctx context.Context) (*Record, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if errors.Is(err, kv.ErrCorrupt) {
		clog.FromContext(ctx).Warnf("ignoring unreadable session: %v", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var stored struct {
		Code         *string `json:"code"`
		Language     *string `json:"language"`
		ReviewResult *string `json:"reviewResult"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		clog.FromContext(ctx).Warnf("ignoring unreadable session: %v", err)
		return nil, nil
	}
	rec := &Record{Language: DefaultLanguage}
	if stored.Code != nil {
		rec.Code = *stored.Code
	}
	if stored.Language != nil && *stored.Language != "" {
		rec.Language = *stored.Language
	}
	if stored.ReviewResult != nil {
		rec.ReviewResult = *stored.ReviewResult
	}
	return rec, nil
}

// Clear removes the record. Clearing an absent session is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, Key); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.saved.Store(false)
	return nil
}
