package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/disruption/pkg/domain/entities"
	"github.com/vsinha/disruption/pkg/domain/repositories"
)

// Session holds the snapshot loaded from a source. Planning calls read the
// current snapshot; Refresh swaps in a freshly loaded one.
type Session struct {
	source repositories.SnapshotSource

	mu       sync.RWMutex
	snapshot *entities.Snapshot
}

// NewSession creates a session and performs the initial load
func NewSession(ctx context.Context, source repositories.SnapshotSource) (*Session, error) {
	if source == nil {
		return nil, fmt.Errorf("snapshot source cannot be nil")
	}

	s := &Session{source: source}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current snapshot. Callers must not mutate it.
func (s *Session) Snapshot() *entities.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh reloads the snapshot from the source. On failure the previous
// snapshot is kept.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot from %s: %w", s.source.Name(), err)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return nil
}

// SourceName reports where the snapshot comes from
func (s *Session) SourceName() string {
	return s.source.Name()
}

// StaticSource serves a prebuilt snapshot
type StaticSource struct {
	snapshot *entities.Snapshot
}

// Verify interface compliance
var _ repositories.SnapshotSource = (*StaticSource)(nil)

// NewStaticSource wraps a snapshot as a source
func NewStaticSource(snapshot *entities.Snapshot) *StaticSource {
	return &StaticSource{snapshot: snapshot}
}

// LoadSnapshot returns a copy of the wrapped snapshot
func (s *StaticSource) LoadSnapshot(ctx context.Context) (*entities.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.snapshot == nil {
		return entities.NewSnapshot(nil, nil, nil, nil, nil), nil
	}
	return s.snapshot.Clone(), nil
}

// Name identifies the source in logs
func (s *StaticSource) Name() string {
	return "memory"
}
