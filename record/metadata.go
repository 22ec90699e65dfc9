package record

// DetailKind tags the variant carried by a Detail.
type DetailKind int

const (
	// DetailText carries a UTF-8 string.
	DetailText DetailKind = iota
	// DetailInteger carries a signed 64-bit integer.
	DetailInteger
	// DetailBytes carries an opaque byte blob.
	DetailBytes
	// DetailTimestamp carries a Unix-seconds timestamp.
	DetailTimestamp
	// DetailBoolean carries a boolean flag.
	DetailBoolean
)

// Detail is one typed annotation attached to a record or a block. It mirrors
// original_source's `Detail` enum (Text/Integer/Bytes/Timestamp/Boolean).
type Detail struct {
	Kind      DetailKind
	Text      string
	Integer   int64
	Bytes     []byte
	Timestamp int64 // unix seconds
	Boolean   bool
}

// NewTextDetail builds a text Detail.
func NewTextDetail(v string) Detail { return Detail{Kind: DetailText, Text: v} }

// NewIntegerDetail builds an integer Detail.
func NewIntegerDetail(v int64) Detail { return Detail{Kind: DetailInteger, Integer: v} }

// NewBytesDetail builds a byte-blob Detail.
func NewBytesDetail(v []byte) Detail { return Detail{Kind: DetailBytes, Bytes: v} }

// NewTimestampDetail builds a Detail from Unix seconds.
func NewTimestampDetail(secs int64) Detail { return Detail{Kind: DetailTimestamp, Timestamp: secs} }

// NewBooleanDetail builds a boolean Detail.
func NewBooleanDetail(v bool) Detail { return Detail{Kind: DetailBoolean, Boolean: v} }

// Metadata is an ordered sequence of Details attached to a record or block.
// It is never covered by a signature (see spec.md §9) — it is annotational
// and may be mutated by the server after signing without invalidating
// verification.
type Metadata struct {
	Items []Detail `cbor:"items"`
}

// EmptyMetadata returns metadata with no details.
func EmptyMetadata() Metadata {
	return Metadata{}
}

// Push appends a Detail.
func (m *Metadata) Push(d Detail) {
	m.Items = append(m.Items, d)
}

// Pop removes and returns the last Detail, if any.
func (m *Metadata) Pop() (Detail, bool) {
	if len(m.Items) == 0 {
		return Detail{}, false
	}
	last := m.Items[len(m.Items)-1]
	m.Items = m.Items[:len(m.Items)-1]
	return last, true
}

// Details returns the ordered details. The returned slice must not be
// mutated by the caller.
func (m Metadata) Details() []Detail {
	return m.Items
}

// Len returns the number of details.
func (m Metadata) Len() int {
	return len(m.Items)
}
