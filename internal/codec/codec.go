// Package codec defines the serialization boundary between in-memory
// entities and their wire representation. Callers inject a concrete
// implementation, which keeps the rest of the codebase independent of the
// chosen encoding.
package codec

// Codec converts values to and from a byte-level wire representation.
type Codec interface {
	// Marshal encodes v into the codec's wire format.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v, which must be a pointer.
	Unmarshal(data []byte, v any) error

	// ContentType reports the MIME type of the wire format.
	ContentType() string
}
