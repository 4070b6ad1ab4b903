package domain

// Compression identifies the algorithm a blob payload was stored with.
// The set is closed: new algorithms require a new release anyway, so this is
// a plain enum rather than a pluggable strategy.
type Compression string

const (
	// CompressionNone stores the payload byte-for-byte.
	CompressionNone Compression = "none"
	// CompressionBrotli is used for textual and source-like files.
	CompressionBrotli Compression = "brotli"
	// CompressionZlib is the default for everything else.
	CompressionZlib Compression = "zlib"
)

// Valid reports whether c names a known algorithm.
func (c Compression) Valid() bool {
	switch c {
	case CompressionNone, CompressionBrotli, CompressionZlib:
		return true
	}
	return false
}
