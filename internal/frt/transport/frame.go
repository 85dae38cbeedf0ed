package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// frameHeaderBytes is the outer framing the spec leaves to "the transport":
// a 4-byte body length followed by the 4-byte packet code, both always
// network-byte-order regardless of the packet body's own LITTLE_ENDIAN
// flag (that flag only governs how the Values payload inside the body is
// encoded).
const frameHeaderBytes = 8

// defaultMaxFrameBytes bounds a single frame body, guarding against a
// corrupt or hostile length prefix causing an unbounded allocation.
const defaultMaxFrameBytes = 64 << 20

func writeFrame(w io.Writer, pcode uint32, body []byte) error {
	var hdr [frameHeaderBytes]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(body)))
	binary.BigEndian.PutUint32(hdr[4:8], pcode)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader, maxBytes uint32) (pcode uint32, body []byte, err error) {
	var hdr [frameHeaderBytes]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	length := binary.BigEndian.Uint32(hdr[0:4])
	pcode = binary.BigEndian.Uint32(hdr[4:8])
	if length > maxBytes {
		return 0, nil, fmt.Errorf("transport: frame body of %d bytes exceeds limit of %d", length, maxBytes)
	}
	if length == 0 {
		return pcode, nil, nil
	}
	body = make([]byte, length)
	if _, err = io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return pcode, body, nil
}
