package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

const (
	// StorageKey is the key-value entry holding the POS snapshot.
	StorageKey = "celtis.pos.v1"
	// SchemaVersion is the only snapshot version this build understands.
	SchemaVersion = 1
)

// ErrNoSnapshot is returned when no usable snapshot exists.
var ErrNoSnapshot = errors.New("pos: no snapshot")

// Snapshot is the persisted shape of State. The tax rate is configuration and
// is not stored.
type Snapshot struct {
	Version    int    `json:"version"`
	ActiveSale *Sale  `json:"activeSale"`
	Drafts     []Sale `json:"drafts"`
	History    []Sale `json:"history"`
}

// SnapshotOf captures st in its persisted shape.
func SnapshotOf(st State) Snapshot {
	active := st.ActiveSale.clone()
	return Snapshot{
		Version:    SchemaVersion,
		ActiveSale: &active,
		Drafts:     nonNilSales(cloneSales(st.Drafts)),
		History:    nonNilSales(cloneSales(st.History)),
	}
}

func nonNilSales(sales []Sale) []Sale {
	if sales == nil {
		return []Sale{}
	}
	return sales
}

// Repository loads and saves snapshots.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// KVRepository stores the snapshot as one JSON document in a kv.Store.
type KVRepository struct {
	store kv.Store
	key   string
}

// NewRepository returns a repository writing under StorageKey.
func NewRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store, key: StorageKey}
}

// Load returns ErrNoSnapshot when the document is absent, unreadable or
// written by a different schema version. Other read errors are wrapped.
func (r *KVRepository) Load(ctx context.Context) (Snapshot, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, kv.ErrNotFound) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("pos: load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode: %v", ErrNoSnapshot, err)
	}
	if snap.Version != SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrNoSnapshot, snap.Version)
	}
	return snap, nil
}

// Save writes snap as JSON.
func (r *KVRepository) Save(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("pos: encode snapshot: %w", err)
	}
	if err := r.store.Set(ctx, r.key, payload); err != nil {
		return fmt.Errorf("pos: save snapshot: %w", err)
	}
	return nil
}
