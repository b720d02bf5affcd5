package insim

import (
	"fmt"
	"io"
)

// Packets are framed by a leading size byte counting 4-byte units, so the
// smallest legal frame is 4 bytes and every frame length is a multiple of 4.

// ReadFrame reads one complete packet including its size byte.
func ReadFrame(r io.Reader) ([]byte, error) {
	var sizeByte [1]byte
	if _, err := io.ReadFull(r, sizeByte[:]); err != nil {
		return nil, err
	}
	size := int(sizeByte[0]) * 4
	if size < 4 {
		return nil, fmt.Errorf("invalid packet size byte %d", sizeByte[0])
	}

	frame := make([]byte, size)
	frame[0] = sizeByte[0]
	if _, err := io.ReadFull(r, frame[1:]); err != nil {
		return nil, err
	}
	return frame, nil
}

// WriteFrame writes one encoded packet, validating its declared size.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) < 4 || len(frame)%4 != 0 {
		return fmt.Errorf("frame length %d is not a positive multiple of 4", len(frame))
	}
	if int(frame[0])*4 != len(frame) {
		return fmt.Errorf("size byte %d disagrees with frame length %d", frame[0], len(frame))
	}
	_, err := w.Write(frame)
	return err
}
