package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

// SnapshotLoader produces configuration snapshots.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Provider hands out the current snapshot and swaps it on Refresh.
type Provider struct {
	current atomic.Pointer[Snapshot]
	loader  SnapshotLoader
	mu      sync.Mutex
}

// NewProvider loads the first snapshot. A failed load falls back to defaults.
func NewProvider(ctx context.Context, loader SnapshotLoader) *Provider {
	p := &Provider{loader: loader}
	if _, err := p.Refresh(ctx); err != nil {
		logger.Config.Error("initial config load failed, using defaults", slog.String("event", "config.load_failed"), slog.Any("error", err))
		p.current.Store(Defaults())
	}
	return p
}

// NewStaticProvider serves a fixed snapshot. Refresh is a no-op.
func NewStaticProvider(snap *Snapshot) *Provider {
	p := &Provider{}
	p.current.Store(snap)
	return p
}

// Current returns the active snapshot.
func (p *Provider) Current() *Snapshot {
	if s := p.current.Load(); s != nil {
		return s
	}
	return Defaults()
}

// Refresh reloads the configuration. On error the previous snapshot stays.
func (p *Provider) Refresh(ctx context.Context) (*Snapshot, error) {
	if p.loader == nil {
		return p.Current(), nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.current.Store(snap)
	logger.Config.Info("configuration loaded",
		slog.String("event", "config.loaded"),
		slog.String("source", snap.Source),
		slog.Int("products", len(snap.Products)),
		slog.Any("missing", snap.Missing),
	)
	return snap, nil
}

// SeedProducts writes the snapshot's products into the product store.
func SeedProducts(ctx context.Context, store storage.ProductStore, snap *Snapshot) error {
	for i := range snap.Products {
		p := snap.Products[i]
		if err := store.UpsertProduct(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
