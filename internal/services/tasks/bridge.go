package tasks

import (
	"context"

	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/models"
)

// Bridge reconciles externally produced snapshots with a long-lived Engine.
// Each snapshot replaces the engine's collection wholesale: no merging, no
// diffing. An optimistic mutation still in flight when a snapshot lands is
// discarded with the rest of the old collection; that race is accepted,
// last write wins.
//
// The bridge never touches loading, error, or selection.
type Bridge struct {
	engine *Engine
	logger *events.Logger
}

// NewBridge binds a bridge to one engine and applies the initial snapshot.
// Applying the snapshot the engine was constructed with is a no-op.
func NewBridge(engine *Engine, initial []models.Task, logger *events.Logger) *Bridge {
	b := &Bridge{
		engine: engine,
		logger: logger.WithField("component", "sync_bridge"),
	}
	b.Apply(initial)
	return b
}

// Apply replaces the engine's collection with snapshot unless the engine
// already holds exactly these records, which makes repeated identical
// snapshots idempotent.
func (b *Bridge) Apply(snapshot []models.Task) {
	if b.engine.snapshotEquals(snapshot) {
		b.logger.WithField("count", len(snapshot)).Debug("Snapshot unchanged, skipping")
		return
	}

	b.logger.WithField("count", len(snapshot)).Debug("Applying external snapshot")
	b.engine.replaceAll(snapshot)
}

// Run consumes a snapshot stream and applies every frame until the stream
// closes or ctx is cancelled.
func (b *Bridge) Run(ctx context.Context, snapshots <-chan []models.Task) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				b.logger.Info("Snapshot stream closed")
				return
			}
			b.Apply(snapshot)
		}
	}
}
