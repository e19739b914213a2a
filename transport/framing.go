package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// writeFrame writes a length-delimited frame onto w: a 4-byte
// little-endian size prefix followed by payload, mirroring the
// teacher's app/networking/listen.go WriteTo framing.
func writeFrame(w *bufio.Writer, payload []byte) error {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return w.Flush()
}

// readFrame reads one length-delimited frame written by writeFrame,
// mirroring the teacher's ReadFrom framing.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(prefix[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("transport: frame of %d bytes exceeds limit", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
