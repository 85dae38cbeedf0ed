package value

import "sync/atomic"

// DataInlineThreshold is the largest DATA payload that is copied directly
// into the arena on append. Anything larger is wrapped in a SharedBlob so
// the bytes are not duplicated as the value moves between a Values
// container and whatever produced it.
const DataInlineThreshold = 1024

// liveSharedBlobs counts SharedBlob instances currently holding at least
// one reference, across the whole process. Backs the
// frt_shared_blob_count gauge (see pkg/metrics).
var liveSharedBlobs atomic.Int64

// LiveSharedBlobCount returns the current number of live SharedBlob
// instances.
func LiveSharedBlobCount() int {
	return int(liveSharedBlobs.Load())
}

// SharedBlob is a reference-counted byte payload. It backs DATA values
// larger than DataInlineThreshold so that large payloads can be handed off
// between a Values container and an external holder (a cache entry, a
// decoded packet, a detached handler) without a copy.
//
// A SharedBlob is safe for concurrent AddRef/SubRef from multiple
// goroutines; Bytes is only safe to read while at least one reference is
// held.
type SharedBlob struct {
	refs atomic.Int32
	data []byte
}

// NewSharedBlob wraps buf in a SharedBlob with one outstanding reference.
// buf is taken over by the blob; the caller must not mutate it afterward
// unless it still holds the only reference.
func NewSharedBlob(buf []byte) *SharedBlob {
	b := &SharedBlob{data: buf}
	b.refs.Store(1)
	liveSharedBlobs.Add(1)
	return b
}

// AddRef increments the reference count and returns the same blob, so it
// can be used inline at the point a new holder takes a reference.
func (b *SharedBlob) AddRef() *SharedBlob {
	b.refs.Add(1)
	return b
}

// SubRef decrements the reference count. The blob's backing storage
// becomes eligible for garbage collection once the count reaches zero;
// there is no explicit free, Go's allocator reclaims it.
func (b *SharedBlob) SubRef() {
	if b.refs.Add(-1) == 0 {
		liveSharedBlobs.Add(-1)
	}
}

// RefCount returns the current reference count. Intended for diagnostics
// and tests, not for synchronization.
func (b *SharedBlob) RefCount() int32 {
	return b.refs.Load()
}

// Length returns the number of bytes held by the blob.
func (b *SharedBlob) Length() uint32 {
	return uint32(len(b.data))
}

// Bytes returns the blob's backing storage. Valid as long as the caller
// holds a reference.
func (b *SharedBlob) Bytes() []byte {
	return b.data
}
