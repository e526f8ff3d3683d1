package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/archive"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/fetch"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/toolchain" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// BinaryNodeID is the unique identifier for the binary installer Graft node.
	BinaryNodeID graft.ID = "engine.installer.binary"
	// SourceNodeID is the unique identifier for the source installer Graft node.
	SourceNodeID graft.ID = "engine.installer.source"
)

func init() {
	graft.Register(graft.Node[ports.BinaryInstaller]{
		ID:        BinaryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fetch.NodeID, archive.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.BinaryInstaller, error) {
			fetcher, err := graft.Dep[ports.Fetcher](ctx)
			if err != nil {
				return nil, err
			}

			extractor, err := graft.Dep[ports.Extractor](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewBinary(fetcher, extractor, log), nil
		},
	})

	graft.Register(graft.Node[ports.SourceInstaller]{
		ID:        SourceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fetch.NodeID,
			archive.NodeID,
			cas.ArchiveCacheNodeID,
			toolchain.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.SourceInstaller, error) {
			fetcher, err := graft.Dep[ports.Fetcher](ctx)
			if err != nil {
				return nil, err
			}

			extractor, err := graft.Dep[ports.Extractor](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.ArchiveCache](ctx)
			if err != nil {
				return nil, err
			}

			chain, err := graft.Dep[ports.BuildToolchain](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewSource(fetcher, extractor, cache, chain, log), nil
		},
	})
}
