package value

import "github.com/marmos91/frtrpc/pkg/bufpool"

// Arena is the per-Request byte allocator: it holds DATA payloads at or
// below DataInlineThreshold, uint8 array elements, and DATA array
// elements. Reset releases it all at once instead of requiring every
// pointer handed out to be freed individually. The Values bookkeeping
// slices (kinds and values) and the elements of 16/32/64-bit, float and
// string arrays are ordinary Go allocations, not arena storage.
//
// Arena only pools raw byte storage. Go strings are immutable, so a string
// value can't be carved out of a reused buffer without aliasing memory the
// arena might later overwrite; building a genuinely zero-copy arena string
// would require unsafe string-from-bytes conversion, which this runtime
// does not use. String values are therefore ordinary Go allocations owned
// by the garbage collector, not by the arena; only the byte payloads
// listed above are bump-allocated out of the pooled buffer below.
//
// An Arena is not safe for concurrent use: a Request, and therefore its
// Arena, belongs to exactly one goroutine at a time.
type Arena struct {
	buf  []byte // pooled backing storage, reused across Reset
	used int     // bytes of buf handed out so far
}

// NewArena returns an Arena with no storage yet reserved. The first
// allocation lazily pulls a buffer from the shared pool.
func NewArena() *Arena {
	return &Arena{}
}

// CopyBytes bump-allocates len(src) bytes from the arena and copies src
// into them, returning a slice backed by arena storage. Used for DATA
// payloads at or below DataInlineThreshold and for the elements of uint8
// and DATA arrays, whether appended locally or decoded off the wire.
func (a *Arena) CopyBytes(src []byte) []byte {
	dst := a.alloc(len(src))
	copy(dst, src)
	return dst
}

// alloc returns an n-byte slice carved out of the arena's backing buffer,
// growing it (via the shared buffer pool) if there isn't enough room left.
func (a *Arena) alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	if cap(a.buf)-a.used < n {
		a.grow(n)
	}
	start := a.used
	a.used += n
	return a.buf[start:a.used:a.used]
}

// grow replaces the arena's backing buffer with a fresh one from the
// shared pool, sized to hold at least n bytes. Slices already handed out
// by alloc point into the old buffer object, so they stay valid; that
// buffer is simply not returned to the pool and is reclaimed by the
// garbage collector once the live slices referencing it are gone. Only
// the newest buffer is tracked for an explicit Put on Reset.
func (a *Arena) grow(n int) {
	size := n
	if size < 2*bufpool.DefaultSmallSize {
		size = 2 * bufpool.DefaultSmallSize
	}
	a.buf = bufpool.Get(size)
	a.used = 0
}

// BytesInUse reports how many bytes of the current backing buffer have
// been handed out. Used for the arena_bytes_in_use gauge.
func (a *Arena) BytesInUse() int {
	return a.used
}

// Reset returns the arena's backing buffer to the shared pool and clears
// its bookkeeping so it can be reused by a recycled Request. Every slice
// previously handed out by CopyBytes becomes invalid the moment the
// backing buffer it aliases is returned to the pool and reused.
func (a *Arena) Reset() {
	if a.buf != nil {
		bufpool.Put(a.buf)
	}
	a.buf = nil
	a.used = 0
}
