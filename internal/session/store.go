package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pennyledger/backend/internal/model/convo"
)

// BlobStore is the durable per-key collaborator backing session
// histories. Get returns an empty string for an unknown key.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, blob string) error
}

// Store serializes all history access per session key: operations on one
// key run strictly one at a time in arrival order, while distinct keys
// proceed in parallel. The key's lock is held across load, mutate and
// persist, so no two requests ever observe and mutate the same history
// concurrently.
type Store struct {
	blobs BlobStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(blobs BlobStore) *Store {
	return &Store{
		blobs: blobs,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex owned by key, creating it on first contact.
// The registry lock is never held across storage or model calls.
func (s *Store) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Update runs fn inside key's critical section. fn receives the current
// decoded history and returns entries to append; the full updated
// sequence is persisted before the lock is released, so the append is
// all-or-nothing relative to other operations on the same key. A blob
// that fails to decode is treated as a fresh session, not an error.
func (s *Store) Update(ctx context.Context, key string, fn func(history []convo.Entry) ([]convo.Entry, error)) ([]convo.Entry, error) {
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	blob, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}

	history, err := convo.DecodeHistory(blob)
	if err != nil {
		slog.WarnContext(ctx, "stored history unreadable, starting fresh", "session", key, "error", err)
		history = nil
	}

	appended, err := fn(history)
	if err != nil {
		return nil, err
	}
	if len(appended) == 0 {
		return history, nil
	}

	// Timestamps never go backwards within a history, even if the wall
	// clock does.
	last := lastTimestamp(history)
	for i := range appended {
		if appended[i].Timestamp.Before(last) {
			appended[i].Timestamp = last
		}
		last = appended[i].Timestamp
	}
	history = append(history, appended...)

	encoded, err := convo.EncodeHistory(history)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, encoded); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", key, err)
	}
	return history, nil
}

// History returns the session's entries in append order. Unknown keys
// and corrupt blobs both yield an empty history.
func (s *Store) History(ctx context.Context, key string) ([]convo.Entry, error) {
	return s.Update(ctx, key, func(history []convo.Entry) ([]convo.Entry, error) {
		return nil, nil
	})
}

// Append adds entries to the session's history and persists the result.
func (s *Store) Append(ctx context.Context, key string, entries ...convo.Entry) ([]convo.Entry, error) {
	return s.Update(ctx, key, func([]convo.Entry) ([]convo.Entry, error) {
		return entries, nil
	})
}

// Reset replaces the history with the empty sequence. The key itself
// survives; resetting an already-empty session succeeds the same way.
func (s *Store) Reset(ctx context.Context, key string) error {
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	if err := s.blobs.Put(ctx, key, convo.EmptyHistory); err != nil {
		return fmt.Errorf("reset session %s: %w", key, err)
	}
	return nil
}

func lastTimestamp(history []convo.Entry) time.Time {
	if len(history) == 0 {
		return time.Time{}
	}
	return history[len(history)-1].Timestamp
}
