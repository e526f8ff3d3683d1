package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the manifest store Graft node.
	NodeID graft.ID = "adapter.manifest_store"
	// ArchiveCacheNodeID is the unique identifier for the archive cache Graft node.
	ArchiveCacheNodeID graft.ID = "adapter.archive_cache"
)

func init() {
	graft.Register(graft.Node[ports.ManifestStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ManifestStore, error) {
			return NewStore(), nil
		},
	})

	graft.Register(graft.Node[ports.ArchiveCache]{
		ID:        ArchiveCacheNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArchiveCache, error) {
			return NewArchiveCache(), nil
		},
	})
}
