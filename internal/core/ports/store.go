package ports

import "go.trai.ch/memo/internal/core/domain"

// Store is the content-addressed cache repository.
// A Store is an explicit handle bound to one cache root and one mode at
// construction time; nothing in the core reaches for ambient state.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type Store interface {
	// PutFile stores the given content, addressed by the hash of its
	// original bytes, and returns that hash. Storing content that is
	// already present is an idempotent no-op. In read-only mode the hash is
	// computed and returned without writing.
	PutFile(data []byte, originalPath string) (string, error)

	// GetFile returns the original bytes of the blob with the given hash.
	// Returns domain.ErrFileNotCached if no such blob exists and
	// domain.ErrStoreCorrupt if the entry cannot be read back.
	GetFile(hash string) ([]byte, error)

	// PutCommand stores the record keyed by its fingerprint, overwriting
	// any existing record with the same key. No-op in read-only mode.
	PutCommand(rec domain.CommandRecord) error

	// GetCommand returns the record for the given fingerprint, or
	// domain.ErrCommandNotCached / domain.ErrStoreCorrupt.
	GetCommand(fingerprint string) (*domain.CommandRecord, error)
}

// StoreOpener constructs a Store handle for a resolved cache root.
// Construction is separate from graph wiring because the root and mode are
// only known after the configuration has been loaded.
type StoreOpener interface {
	Open(root string, readOnly bool) (Store, error)
}
