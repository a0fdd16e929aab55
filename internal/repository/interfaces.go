package repository

import (
	"context"
	"time"
)

// KVStore is the durable key/value mirror the Persistence Manager writes
// through. Values are JSON documents; keys are the fixed storage keys
// (projectManifest, rackParameters, configurMepItems,
// tradeRackConfigurations, rackTemporaryState).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// ChangeEntry is one audited change appended alongside the manifest's
// in-memory change ring. Unlike the ring it is never evicted.
type ChangeEntry struct {
	ChangeID    int64
	Component   string
	RackID      string
	Action      string
	SessionID   string
	Description string
	Details     []byte // JSON payload, action-specific
	CreatedAt   time.Time
}

// ChangeLog is the append-only audit trail behind the change history.
type ChangeLog interface {
	Append(ctx context.Context, entry ChangeEntry) error
	List(ctx context.Context, limit int) ([]ChangeEntry, error)
}
