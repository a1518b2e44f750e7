package frame

import (
	"encoding/binary"
	"io"
	"math"
	"time"
)

// DecoderConfig configures a Decoder. The zero value is usable: default
// chunk size, no idle deadline.
type DecoderConfig struct {
	// ChunkSize bounds a single underlying stream read. Zero selects
	// DefaultChunkSize.
	ChunkSize int

	// IdleTimeout bounds stalls between reads once a frame has started
	// arriving. There is no limit on the gap between frames; the deadline
	// is armed the moment the first byte of a frame is read and cleared
	// when the frame completes. Zero disables it. It only takes effect on
	// streams that support read deadlines (net.Conn does).
	IdleTimeout time.Duration
}

// Decoder reconstructs frames from a live stream. Decode blocks until a
// complete frame arrives, the stream closes, or a mid-frame stall exceeds
// the idle deadline. A Decoder holds no frame state between calls, so one
// decoder may serve many streams as long as calls do not overlap per
// stream.
type Decoder struct {
	reader      *Reader
	idleTimeout time.Duration
}

// NewDecoder creates a Decoder.
func NewDecoder(cfg DecoderConfig) *Decoder {
	return &Decoder{
		reader:      NewReader(cfg.ChunkSize),
		idleTimeout: cfg.IdleTimeout,
	}
}

// Decode reads exactly one frame off the stream.
//
// Field order is fixed: status byte, version byte, file count, the files,
// then the message. A clear validity bit in the first byte fails with
// *ProtocolError before any other field is read. Stream closure or a stall
// at any point fails with ErrConnectionClosed. On any error the partial
// frame is discarded; no resynchronization is attempted.
func (d *Decoder) Decode(stream io.Reader) (*Frame, error) {
	// No deadline while waiting for a frame to begin.
	first, err := d.reader.ReadFull(stream, StatusSize)
	if err != nil {
		return nil, err
	}

	if first[0]&ValidityBit == 0 {
		return nil, &ProtocolError{StatusByte: first[0]}
	}

	f := &Frame{Status: first[0] & StatusMask}

	version, err := d.readFull(stream, VersionSize)
	if err != nil {
		return nil, err
	}
	f.Version = version[0]

	count, err := d.readUint64(stream)
	if err != nil {
		return nil, err
	}

	for i := uint64(0); i < count; i++ {
		file, err := d.readFile(stream)
		if err != nil {
			return nil, err
		}
		f.Files = append(f.Files, file)
	}

	messageLen, err := d.readUint64(stream)
	if err != nil {
		return nil, err
	}
	if messageLen > math.MaxInt {
		return nil, &DataLengthError{Length: messageLen}
	}
	if messageLen > 0 {
		f.Message, err = d.readFull(stream, int(messageLen))
		if err != nil {
			return nil, err
		}
	}

	// Frame complete: wait indefinitely for the next one.
	if d.idleTimeout > 0 {
		if ds, ok := stream.(deadlineStream); ok {
			if err := ds.SetReadDeadline(time.Time{}); err != nil {
				return nil, ErrConnectionClosed
			}
		}
	}

	return f, nil
}

// readFile reads one file entry: name length, name, data length, data.
func (d *Decoder) readFile(stream io.Reader) (File, error) {
	lenBytes, err := d.readFull(stream, NameLengthSize)
	if err != nil {
		return File{}, err
	}

	name, err := d.readFull(stream, int(binary.BigEndian.Uint16(lenBytes)))
	if err != nil {
		return File{}, err
	}

	size, err := d.readUint64(stream)
	if err != nil {
		return File{}, err
	}
	if size > math.MaxInt {
		return File{}, &DataLengthError{Length: size}
	}

	data, err := d.readFull(stream, int(size))
	if err != nil {
		return File{}, err
	}

	return File{Name: string(name), Data: data}, nil
}

func (d *Decoder) readUint64(stream io.Reader) (uint64, error) {
	b, err := d.readFull(stream, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readFull reads with the intra-frame idle deadline applied.
func (d *Decoder) readFull(stream io.Reader, size int) ([]byte, error) {
	return d.reader.readFull(stream, size, d.idleTimeout)
}
