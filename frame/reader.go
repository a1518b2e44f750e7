package frame

import (
	"io"
	"time"
)

// deadlineStream is the subset of net.Conn the decoder uses to bound
// mid-frame stalls. Streams that do not implement it (bytes.Reader, pipes
// in tests) decode without a deadline.
type deadlineStream interface {
	SetReadDeadline(t time.Time) error
}

// Reader reads exact byte counts from a stream, tolerating partial
// deliveries. It keeps no state across calls beyond its configuration.
type Reader struct {
	chunkSize int
}

// NewReader creates a Reader. chunkSize bounds a single underlying read
// call; zero or negative selects DefaultChunkSize. The bound never changes
// the total number of bytes returned.
func NewReader(chunkSize int) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader{chunkSize: chunkSize}
}

// ReadFull reads exactly size bytes from the stream.
//
// A zero-byte underlying read means the peer half-closed the stream; it and
// every other underlying read error surface as ErrConnectionClosed. This is
// the only channel through which disconnection is detected.
func (r *Reader) ReadFull(stream io.Reader, size int) ([]byte, error) {
	return r.readFull(stream, size, 0)
}

// readFull is ReadFull with an optional idle deadline, refreshed before
// each underlying read so that only a stall, not total transfer time, is
// bounded. The deadline is applied only when the stream supports one.
func (r *Reader) readFull(stream io.Reader, size int, idle time.Duration) ([]byte, error) {
	buf := make([]byte, size)
	ds, hasDeadline := stream.(deadlineStream)

	read := 0
	for read < size {
		chunk := size - read
		if chunk > r.chunkSize {
			chunk = r.chunkSize
		}

		if idle > 0 && hasDeadline {
			if err := ds.SetReadDeadline(time.Now().Add(idle)); err != nil {
				return nil, ErrConnectionClosed
			}
		}

		n, err := stream.Read(buf[read : read+chunk])
		read += n
		if read == size {
			break
		}
		if n == 0 || err != nil {
			return nil, ErrConnectionClosed
		}
	}

	return buf, nil
}
