package ports

// InputResolver expands glob patterns into concrete file paths.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// Resolve expands the given patterns relative to root into a
	// deduplicated, byte-wise sorted list of regular files. Patterns that
	// match nothing contribute zero files and are not an error; a
	// syntactically invalid pattern is.
	Resolve(patterns []string, root string) ([]string, error)
}
