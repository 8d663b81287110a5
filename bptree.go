package bptree

// Entry is a single (key, payload) pair as supplied to Construct. Entries
// must be strictly ascending by Key.
type Entry struct {
	Key   uint64
	Value []byte
}

// Compression is the codec applied to whole payloads before they are
// split into data-block fragments.
type Compression byte

func (c Compression) isValid() bool {
	return c >= NoCompression && c <= SnappyCompression
}

// Supported compression codecs. The codec is chosen once, for the whole
// tree, at construction time and recorded in the meta block.
const (
	NoCompression Compression = iota
	SnappyCompression
)

// BuildOptions configure Construct.
type BuildOptions struct {
	// Compression codec applied to payloads before chunking.
	// Default: NoCompression.
	Compression Compression
}

func (o *BuildOptions) norm() *BuildOptions {
	var oo BuildOptions
	if o != nil {
		oo = *o
	}
	if !oo.Compression.isValid() {
		oo.Compression = NoCompression
	}
	return &oo
}
