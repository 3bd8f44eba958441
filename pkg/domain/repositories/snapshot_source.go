package repositories

import (
	"context"

	"github.com/vsinha/disruption/pkg/domain/entities"
)

// SnapshotSource provides the normalized tables a planning call consumes.
// Implementations load everything up front; the engine never re-reads them.
type SnapshotSource interface {
	LoadSnapshot(ctx context.Context) (*entities.Snapshot, error)
	Name() string
}
