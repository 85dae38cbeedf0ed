package value

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Value is a tagged union over the sixteen kinds in Kind. Unlike the
// original C++ union, Go gives every field its own storage; this costs a
// few wasted words per Value but keeps the type memory-safe and lets the
// race detector and garbage collector reason about it normally. Only the
// field matching Kind is meaningful; the rest are zero.
type Value struct {
	kind Kind

	u8    uint8
	u8arr []uint8

	u16    uint16
	u16arr []uint16

	u32    uint32
	u32arr []uint32

	u64    uint64
	u64arr []uint64

	f32    float32
	f32arr []float32

	f64    float64
	f64arr []float64

	str    string
	strarr []string

	data    []byte
	dataarr [][]byte

	// blob is non-nil when a scalar DATA value's bytes are backed by a
	// SharedBlob rather than copied into the arena (see DataInlineThreshold).
	blob *SharedBlob
}

// Kind reports the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Values is an ordered sequence of Values paired with a type-string: the
// concatenation of the per-value Kind bytes. All storage handed out by
// appends to a Values container not already backed by the garbage
// collector (small DATA payloads) comes from the associated Arena.
type Values struct {
	kinds []Kind
	vals  []Value
	arena *Arena
}

// NewValues returns an empty Values container backed by arena.
func NewValues(arena *Arena) *Values {
	return &Values{arena: arena}
}

// NumValues returns the number of values currently held.
func (vs *Values) NumValues() int { return len(vs.kinds) }

// TypeString returns the concatenation of the kind tags, in order.
func (vs *Values) TypeString() string {
	b := make([]byte, len(vs.kinds))
	for i, k := range vs.kinds {
		b[i] = byte(k)
	}
	return string(b)
}

// GetKind returns the kind stored at idx.
func (vs *Values) GetKind(idx int) Kind { return vs.kinds[idx] }

// GetValue returns the value stored at idx.
func (vs *Values) GetValue(idx int) Value { return vs.vals[idx] }

// ensureFree grows the backing slices so at least need more values can be
// appended without reallocating again, following the container's growth
// formula: max(16, 2*cap, len+need). Previously-returned Value pointers
// (from GetValue's by-value copies there are none, but index-based access
// into vals) are not stable across a reallocation boundary; callers hold
// them only for short operations, per the invariant.
func (vs *Values) ensureFree(need int) {
	if cap(vs.kinds)-len(vs.kinds) >= need {
		return
	}

	oldCap := cap(vs.kinds)
	newCap := 16
	if 2*oldCap > newCap {
		newCap = 2 * oldCap
	}
	if want := len(vs.kinds) + need; want > newCap {
		newCap = want
	}

	newKinds := make([]Kind, len(vs.kinds), newCap)
	copy(newKinds, vs.kinds)
	newVals := make([]Value, len(vs.vals), newCap)
	copy(newVals, vs.vals)

	vs.kinds = newKinds
	vs.vals = newVals
}

// add appends one value of kind k, growing storage if necessary, and
// returns its index.
func (vs *Values) add(k Kind, v Value) int {
	vs.ensureFree(1)
	vs.kinds = vs.kinds[:len(vs.kinds)+1]
	vs.vals = vs.vals[:len(vs.vals)+1]
	idx := len(vs.kinds) - 1
	v.kind = k
	vs.kinds[idx] = k
	vs.vals[idx] = v
	return idx
}

// Scalar appenders.

func (vs *Values) AddInt8(x uint8) int    { return vs.add(KindInt8, Value{u8: x}) }
func (vs *Values) AddInt16(x uint16) int  { return vs.add(KindInt16, Value{u16: x}) }
func (vs *Values) AddInt32(x uint32) int  { return vs.add(KindInt32, Value{u32: x}) }
func (vs *Values) AddInt64(x uint64) int  { return vs.add(KindInt64, Value{u64: x}) }
func (vs *Values) AddFloat(x float32) int { return vs.add(KindFloat, Value{f32: x}) }
func (vs *Values) AddDouble(x float64) int { return vs.add(KindDouble, Value{f64: x}) }

// Array appenders. Element storage for non-byte arrays is an ordinary Go
// allocation, as are the kinds/values bookkeeping slices above; only raw
// byte payloads (uint8 array and DATA array elements, and small DATA
// values) come from the arena, since typed-array pooling would
// require a pool per element width for negligible benefit at RPC scale.

func (vs *Values) AddInt8Array(arr []uint8) int {
	return vs.add(KindInt8Array, Value{u8arr: vs.arena.CopyBytes(arr)})
}

func (vs *Values) AddInt16Array(arr []uint16) int {
	cp := make([]uint16, len(arr))
	copy(cp, arr)
	return vs.add(KindInt16Array, Value{u16arr: cp})
}

func (vs *Values) AddInt32Array(arr []uint32) int {
	cp := make([]uint32, len(arr))
	copy(cp, arr)
	return vs.add(KindInt32Array, Value{u32arr: cp})
}

func (vs *Values) AddInt64Array(arr []uint64) int {
	cp := make([]uint64, len(arr))
	copy(cp, arr)
	return vs.add(KindInt64Array, Value{u64arr: cp})
}

func (vs *Values) AddFloatArray(arr []float32) int {
	cp := make([]float32, len(arr))
	copy(cp, arr)
	return vs.add(KindFloatArray, Value{f32arr: cp})
}

func (vs *Values) AddDoubleArray(arr []float64) int {
	cp := make([]float64, len(arr))
	copy(cp, arr)
	return vs.add(KindDoubleArray, Value{f64arr: cp})
}

// AddString appends a UTF-8 string value. Go strings are already immutable
// and already own their bytes, so there is nothing for the arena to do
// here; see the Arena doc comment.
func (vs *Values) AddString(s string) int {
	return vs.add(KindString, Value{str: s})
}

func (vs *Values) AddStringArray(arr []string) int {
	cp := make([]string, len(arr))
	copy(cp, arr)
	return vs.add(KindStringArray, Value{strarr: cp})
}

// AddData appends an opaque byte blob. Payloads at or below
// DataInlineThreshold are copied into the arena; larger payloads are
// wrapped in a SharedBlob instead, so passing a large buffer through a
// Values container never copies it.
func (vs *Values) AddData(buf []byte) int {
	if len(buf) > DataInlineThreshold {
		blob := NewSharedBlob(buf)
		return vs.add(KindData, Value{data: blob.Bytes(), blob: blob})
	}
	return vs.add(KindData, Value{data: vs.arena.CopyBytes(buf)})
}

// AddSharedData appends a DATA value backed directly by an
// already-constructed SharedBlob, taking over the caller's reference.
func (vs *Values) AddSharedData(blob *SharedBlob) int {
	return vs.add(KindData, Value{data: blob.Bytes(), blob: blob})
}

func (vs *Values) AddDataArray(arr [][]byte) int {
	cp := make([][]byte, len(arr))
	for i, b := range arr {
		cp[i] = vs.arena.CopyBytes(b)
	}
	return vs.add(KindDataArray, Value{dataarr: cp})
}

// Scalar and array accessors. Reading a value through the wrong accessor
// returns the zero value for that field, mirroring the original union's
// lack of a runtime type check; callers that care must consult GetKind.

func (vs *Values) Int8(idx int) uint8        { return vs.vals[idx].u8 }
func (vs *Values) Int8Array(idx int) []uint8 { return vs.vals[idx].u8arr }

func (vs *Values) Int16(idx int) uint16        { return vs.vals[idx].u16 }
func (vs *Values) Int16Array(idx int) []uint16 { return vs.vals[idx].u16arr }

func (vs *Values) Int32(idx int) uint32        { return vs.vals[idx].u32 }
func (vs *Values) Int32Array(idx int) []uint32 { return vs.vals[idx].u32arr }

func (vs *Values) Int64(idx int) uint64        { return vs.vals[idx].u64 }
func (vs *Values) Int64Array(idx int) []uint64 { return vs.vals[idx].u64arr }

func (vs *Values) Float(idx int) float32        { return vs.vals[idx].f32 }
func (vs *Values) FloatArray(idx int) []float32 { return vs.vals[idx].f32arr }

func (vs *Values) Double(idx int) float64         { return vs.vals[idx].f64 }
func (vs *Values) DoubleArray(idx int) []float64 { return vs.vals[idx].f64arr }

func (vs *Values) String(idx int) string         { return vs.vals[idx].str }
func (vs *Values) StringArray(idx int) []string { return vs.vals[idx].strarr }

func (vs *Values) Data(idx int) []byte          { return vs.vals[idx].data }
func (vs *Values) DataArray(idx int) [][]byte  { return vs.vals[idx].dataarr }

// Reset discards every value, releasing any SharedBlob references held by
// DATA values. The backing kinds/vals slices are retained (truncated to
// zero length) so a recycled Request reuses their capacity.
func (vs *Values) Reset() {
	for i := range vs.vals {
		if vs.vals[i].blob != nil {
			vs.vals[i].blob.SubRef()
			vs.vals[i].blob = nil
		}
	}
	vs.kinds = vs.kinds[:0]
	vs.vals = vs.vals[:0]
}

// CopyAll appends a copy of every value in vs to dst, preserving shape and
// content but not SharedBlob identity: a large DATA value is re-threshold-
// checked against dst's own arena rather than having its blob reference
// shared. This is enough for consumers (e.g. frt.rpc.echo) that only need
// value equality, not storage-sharing, between source and destination.
func (vs *Values) CopyAll(dst *Values) {
	for i, k := range vs.kinds {
		v := vs.vals[i]
		switch k {
		case KindInt8:
			dst.AddInt8(v.u8)
		case KindInt8Array:
			dst.AddInt8Array(v.u8arr)
		case KindInt16:
			dst.AddInt16(v.u16)
		case KindInt16Array:
			dst.AddInt16Array(v.u16arr)
		case KindInt32:
			dst.AddInt32(v.u32)
		case KindInt32Array:
			dst.AddInt32Array(v.u32arr)
		case KindInt64:
			dst.AddInt64(v.u64)
		case KindInt64Array:
			dst.AddInt64Array(v.u64arr)
		case KindFloat:
			dst.AddFloat(v.f32)
		case KindFloatArray:
			dst.AddFloatArray(v.f32arr)
		case KindDouble:
			dst.AddDouble(v.f64)
		case KindDoubleArray:
			dst.AddDoubleArray(v.f64arr)
		case KindString:
			dst.AddString(v.str)
		case KindStringArray:
			dst.AddStringArray(v.strarr)
		case KindData:
			dst.AddData(v.data)
		case KindDataArray:
			dst.AddDataArray(v.dataarr)
		}
	}
}

// CheckTypes reports whether actual satisfies the expected spec. A spec of
// exactly "*" matches any actual type-string; otherwise the two strings
// must be byte-identical.
func CheckTypes(spec, actual string) bool {
	if spec == "*" {
		return true
	}
	return spec == actual
}

// Equal compares two Values containers by type-string shape and then by
// per-tag structural content (array values compared element-wise).
func (vs *Values) Equal(other *Values) bool {
	if other == nil {
		return false
	}
	if vs.TypeString() != other.TypeString() {
		return false
	}
	for i, k := range vs.kinds {
		if !valueEqual(k, vs.vals[i], other.vals[i]) {
			return false
		}
	}
	return true
}

func valueEqual(k Kind, a, b Value) bool {
	switch k {
	case KindInt8:
		return a.u8 == b.u8
	case KindInt8Array:
		return bytesEqual(a.u8arr, b.u8arr)
	case KindInt16:
		return a.u16 == b.u16
	case KindInt16Array:
		return uint16sEqual(a.u16arr, b.u16arr)
	case KindInt32:
		return a.u32 == b.u32
	case KindInt32Array:
		return uint32sEqual(a.u32arr, b.u32arr)
	case KindInt64:
		return a.u64 == b.u64
	case KindInt64Array:
		return uint64sEqual(a.u64arr, b.u64arr)
	case KindFloat:
		return a.f32 == b.f32
	case KindFloatArray:
		return float32sEqual(a.f32arr, b.f32arr)
	case KindDouble:
		return a.f64 == b.f64
	case KindDoubleArray:
		return float64sEqual(a.f64arr, b.f64arr)
	case KindString:
		return a.str == b.str
	case KindStringArray:
		return stringsEqual(a.strarr, b.strarr)
	case KindData:
		return bytesEqual(a.data, b.data)
	case KindDataArray:
		if len(a.dataarr) != len(b.dataarr) {
			return false
		}
		for i := range a.dataarr {
			if !bytesEqual(a.dataarr[i], b.dataarr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uint16sEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uint32sEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uint64sEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float32sEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float64sEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Print renders the container in a human-readable, indented form used
// only for status reporting (e.g. the return dump of "frtctl call").
func (vs *Values) Print(indent int) string {
	var b strings.Builder
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(&b, "%svalues[%d] {\n", pad, len(vs.kinds))
	for i, k := range vs.kinds {
		fmt.Fprintf(&b, "%s  [%d] %s = %s\n", pad, i, k, printValue(k, vs.vals[i]))
	}
	fmt.Fprintf(&b, "%s}\n", pad)
	return b.String()
}

func printValue(k Kind, v Value) string {
	switch k {
	case KindInt8:
		return fmt.Sprintf("%d", v.u8)
	case KindInt8Array:
		return fmt.Sprintf("%v", v.u8arr)
	case KindInt16:
		return fmt.Sprintf("%d", v.u16)
	case KindInt16Array:
		return fmt.Sprintf("%v", v.u16arr)
	case KindInt32:
		return fmt.Sprintf("%d", v.u32)
	case KindInt32Array:
		return fmt.Sprintf("%v", v.u32arr)
	case KindInt64:
		return fmt.Sprintf("%d", v.u64)
	case KindInt64Array:
		return fmt.Sprintf("%v", v.u64arr)
	case KindFloat:
		return fmt.Sprintf("%g", v.f32)
	case KindFloatArray:
		return fmt.Sprintf("%v", v.f32arr)
	case KindDouble:
		return fmt.Sprintf("%g", v.f64)
	case KindDoubleArray:
		return fmt.Sprintf("%v", v.f64arr)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindStringArray:
		return fmt.Sprintf("%q", v.strarr)
	case KindData:
		return fmt.Sprintf("<%d bytes>", len(v.data))
	case KindDataArray:
		return fmt.Sprintf("<%d blobs>", len(v.dataarr))
	default:
		return "?"
	}
}

// Endian selects the byte order a Values container is encoded in or
// decoded from. EndianCopy uses host byte order (a bulk-memcpy transcoder
// in the original C++); EndianBig and EndianLittle always use network and
// little-endian order respectively regardless of host.
type Endian int

const (
	EndianCopy Endian = iota
	EndianBig
	EndianLittle
)

// ByteOrder returns the encoding/binary.ByteOrder implementing e.
func (e Endian) ByteOrder() binary.ByteOrder {
	switch e {
	case EndianBig:
		return binary.BigEndian
	case EndianLittle:
		return binary.LittleEndian
	default:
		return binary.NativeEndian
	}
}

// GetLength returns the number of bytes Encode would produce for this
// container: 4 (count) + len(typeString) + the per-value encoded size.
func (vs *Values) GetLength() uint32 {
	n := uint32(4 + len(vs.kinds))
	for i, k := range vs.kinds {
		n += valueLength(k, vs.vals[i])
	}
	return n
}

func valueLength(k Kind, v Value) uint32 {
	switch k {
	case KindInt8:
		return 1
	case KindInt8Array:
		return 4 + uint32(len(v.u8arr))
	case KindInt16:
		return 2
	case KindInt16Array:
		return 4 + 2*uint32(len(v.u16arr))
	case KindInt32:
		return 4
	case KindInt32Array:
		return 4 + 4*uint32(len(v.u32arr))
	case KindInt64:
		return 8
	case KindInt64Array:
		return 4 + 8*uint32(len(v.u64arr))
	case KindFloat:
		return 4
	case KindFloatArray:
		return 4 + 4*uint32(len(v.f32arr))
	case KindDouble:
		return 8
	case KindDoubleArray:
		return 4 + 8*uint32(len(v.f64arr))
	case KindString:
		return 4 + uint32(len(v.str))
	case KindStringArray:
		n := uint32(4)
		for _, s := range v.strarr {
			n += 4 + uint32(len(s))
		}
		return n
	case KindData:
		return 4 + uint32(len(v.data))
	case KindDataArray:
		n := uint32(4)
		for _, d := range v.dataarr {
			n += 4 + uint32(len(d))
		}
		return n
	default:
		return 0
	}
}

// Encode appends the wire form of vs to dst using the given endian choice
// and returns the extended slice.
func (vs *Values) Encode(dst []byte, e Endian) []byte {
	order := e.ByteOrder()

	var u32buf [8]byte
	order.PutUint32(u32buf[:4], uint32(len(vs.kinds)))
	dst = append(dst, u32buf[:4]...)

	for _, k := range vs.kinds {
		dst = append(dst, byte(k))
	}

	for i, k := range vs.kinds {
		dst = encodeValue(dst, order, k, vs.vals[i])
	}
	return dst
}

func encodeValue(dst []byte, order binary.ByteOrder, k Kind, v Value) []byte {
	var buf [8]byte
	putU32 := func(x uint32) {
		order.PutUint32(buf[:4], x)
		dst = append(dst, buf[:4]...)
	}
	putU16 := func(x uint16) {
		order.PutUint16(buf[:2], x)
		dst = append(dst, buf[:2]...)
	}
	putU64 := func(x uint64) {
		order.PutUint64(buf[:8], x)
		dst = append(dst, buf[:8]...)
	}

	switch k {
	case KindInt8:
		dst = append(dst, v.u8)
	case KindInt8Array:
		putU32(uint32(len(v.u8arr)))
		dst = append(dst, v.u8arr...)
	case KindInt16:
		putU16(v.u16)
	case KindInt16Array:
		putU32(uint32(len(v.u16arr)))
		for _, x := range v.u16arr {
			putU16(x)
		}
	case KindInt32:
		putU32(v.u32)
	case KindInt32Array:
		putU32(uint32(len(v.u32arr)))
		for _, x := range v.u32arr {
			putU32(x)
		}
	case KindInt64:
		putU64(v.u64)
	case KindInt64Array:
		putU32(uint32(len(v.u64arr)))
		for _, x := range v.u64arr {
			putU64(x)
		}
	case KindFloat:
		putU32(math.Float32bits(v.f32))
	case KindFloatArray:
		putU32(uint32(len(v.f32arr)))
		for _, x := range v.f32arr {
			putU32(math.Float32bits(x))
		}
	case KindDouble:
		putU64(math.Float64bits(v.f64))
	case KindDoubleArray:
		putU32(uint32(len(v.f64arr)))
		for _, x := range v.f64arr {
			putU64(math.Float64bits(x))
		}
	case KindString:
		putU32(uint32(len(v.str)))
		dst = append(dst, v.str...)
	case KindStringArray:
		putU32(uint32(len(v.strarr)))
		for _, s := range v.strarr {
			putU32(uint32(len(s)))
			dst = append(dst, s...)
		}
	case KindData:
		putU32(uint32(len(v.data)))
		dst = append(dst, v.data...)
	case KindDataArray:
		putU32(uint32(len(v.dataarr)))
		for _, d := range v.dataarr {
			putU32(uint32(len(d)))
			dst = append(dst, d...)
		}
	}
	return dst
}

// decoder reads sequentially from a fixed buffer, tracking how much of it
// has been consumed so Decode can enforce the "no residual bytes" rule.
type decoder struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func (d *decoder) remaining() int { return len(d.buf) - d.pos }

func (d *decoder) take(n int) ([]byte, bool) {
	if n < 0 || d.remaining() < n {
		return nil, false
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, true
}

func (d *decoder) u16() (uint16, bool) {
	b, ok := d.take(2)
	if !ok {
		return 0, false
	}
	return d.order.Uint16(b), true
}

func (d *decoder) u32() (uint32, bool) {
	b, ok := d.take(4)
	if !ok {
		return 0, false
	}
	return d.order.Uint32(b), true
}

func (d *decoder) u64() (uint64, bool) {
	b, ok := d.take(8)
	if !ok {
		return 0, false
	}
	return d.order.Uint64(b), true
}

// Decode reads a Values container from buf using the given endian choice
// and the given arena for DATA/array storage. It requires that decoding
// consumes buf exactly; any under-run or residual bytes is a decode
// failure, in which case ok is false and the returned Values is nil.
func Decode(buf []byte, arena *Arena, e Endian) (vs *Values, ok bool) {
	d := &decoder{buf: buf, order: e.ByteOrder()}

	count, ok := d.u32()
	if !ok {
		return nil, false
	}
	typeString, ok := d.take(int(count))
	if !ok {
		return nil, false
	}

	out := NewValues(arena)
	for i := 0; i < int(count); i++ {
		k := Kind(typeString[i])
		if !k.Valid() {
			return nil, false
		}
		if !decodeValue(d, arena, out, k) {
			return nil, false
		}
	}

	if d.remaining() != 0 {
		return nil, false
	}
	return out, true
}

func decodeValue(d *decoder, arena *Arena, out *Values, k Kind) bool {
	switch k {
	case KindInt8:
		b, ok := d.take(1)
		if !ok {
			return false
		}
		out.AddInt8(b[0])
	case KindInt8Array:
		n, ok := d.u32()
		if !ok {
			return false
		}
		b, ok := d.take(int(n))
		if !ok {
			return false
		}
		out.AddInt8Array(b)
	case KindInt16:
		x, ok := d.u16()
		if !ok {
			return false
		}
		out.AddInt16(x)
	case KindInt16Array:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]uint16, n)
		for i := range arr {
			x, ok := d.u16()
			if !ok {
				return false
			}
			arr[i] = x
		}
		out.AddInt16Array(arr)
	case KindInt32:
		x, ok := d.u32()
		if !ok {
			return false
		}
		out.AddInt32(x)
	case KindInt32Array:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]uint32, n)
		for i := range arr {
			x, ok := d.u32()
			if !ok {
				return false
			}
			arr[i] = x
		}
		out.AddInt32Array(arr)
	case KindInt64:
		x, ok := d.u64()
		if !ok {
			return false
		}
		out.AddInt64(x)
	case KindInt64Array:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]uint64, n)
		for i := range arr {
			x, ok := d.u64()
			if !ok {
				return false
			}
			arr[i] = x
		}
		out.AddInt64Array(arr)
	case KindFloat:
		x, ok := d.u32()
		if !ok {
			return false
		}
		out.AddFloat(math.Float32frombits(x))
	case KindFloatArray:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]float32, n)
		for i := range arr {
			x, ok := d.u32()
			if !ok {
				return false
			}
			arr[i] = math.Float32frombits(x)
		}
		out.AddFloatArray(arr)
	case KindDouble:
		x, ok := d.u64()
		if !ok {
			return false
		}
		out.AddDouble(math.Float64frombits(x))
	case KindDoubleArray:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]float64, n)
		for i := range arr {
			x, ok := d.u64()
			if !ok {
				return false
			}
			arr[i] = math.Float64frombits(x)
		}
		out.AddDoubleArray(arr)
	case KindString:
		n, ok := d.u32()
		if !ok {
			return false
		}
		b, ok := d.take(int(n))
		if !ok {
			return false
		}
		out.AddString(string(b))
	case KindStringArray:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([]string, n)
		for i := range arr {
			sl, ok := d.u32()
			if !ok {
				return false
			}
			b, ok := d.take(int(sl))
			if !ok {
				return false
			}
			arr[i] = string(b)
		}
		out.AddStringArray(arr)
	case KindData:
		n, ok := d.u32()
		if !ok {
			return false
		}
		b, ok := d.take(int(n))
		if !ok {
			return false
		}
		out.AddData(b)
	case KindDataArray:
		n, ok := d.u32()
		if !ok {
			return false
		}
		arr := make([][]byte, n)
		for i := range arr {
			dl, ok := d.u32()
			if !ok {
				return false
			}
			b, ok := d.take(int(dl))
			if !ok {
				return false
			}
			arr[i] = b
		}
		out.AddDataArray(arr)
	default:
		return false
	}
	return true
}
