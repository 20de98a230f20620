package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Every wire message, either direction, is a 4-byte big-endian length prefix
// followed by that many payload bytes.

const lengthPrefixSize = 4

// ErrFrameTooLarge is returned when a declared length exceeds the limit.
var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// ReadFrame reads one length-prefixed message. Partial reads are handled by
// io.ReadFull; end-of-stream at any point — before the prefix completes or
// mid-body — surfaces as an error so the caller treats it as a disconnect.
func ReadFrame(r io.Reader, maxBytes int) ([]byte, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 {
		return nil, nil
	}
	if maxBytes > 0 && int(length) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed message.
func WriteFrame(w io.Writer, payload []byte) error {
	var prefix [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
