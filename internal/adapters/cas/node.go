package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/memo/internal/core/ports"
)

// NodeID is the unique identifier for the store opener Graft node.
const NodeID graft.ID = "adapter.cas.opener"

// Opener implements ports.StoreOpener. The cache root and mode are only
// known after configuration loading, so wiring provides an opener rather
// than a bound store.
type Opener struct{}

// Open constructs a Store handle for the given root.
func (Opener) Open(root string, readOnly bool) (ports.Store, error) {
	return NewStore(root, readOnly)
}

func init() {
	graft.Register(graft.Node[ports.StoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StoreOpener, error) {
			return Opener{}, nil
		},
	})
}
