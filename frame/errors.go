package frame

import (
	"errors"
	"fmt"
)

// ErrConnectionClosed reports that the peer closed the stream, reset it, or
// stalled past the idle deadline while a frame was mid-decode. The framing
// layer does not distinguish these transport failures: the connection is
// unusable either way and the owner should tear it down.
var ErrConnectionClosed = errors.New("tejproto: connection closed")

// ProtocolError reports that the incoming stream did not start a frame with
// the validity bit set. The stream is desynced or the peer does not speak
// TEJ; it cannot be repaired mid-stream and should be abandoned.
type ProtocolError struct {
	StatusByte byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("tejproto: invalid frame start byte %#02x: validity bit not set", e.StatusByte)
}

// StatusCodeError reports a custom status code outside [0, 127] supplied by
// the caller at build time. It is never triggered by incoming data.
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("tejproto: status code %d out of range [0, %d]", e.Code, MaxStatus)
}

// ProtocolVersionError reports a protocol version outside [0, 255] supplied
// by the caller at build time.
type ProtocolVersionError struct {
	Version int
}

func (e *ProtocolVersionError) Error() string {
	return fmt.Sprintf("tejproto: protocol version %d out of range [0, %d]", e.Version, MaxVersion)
}

// DataLengthError reports an incoming frame declaring a file data or
// message length too large to allocate on this platform. The stream is
// treated like any other desync: the remaining payload cannot be skipped,
// so the connection should be abandoned.
type DataLengthError struct {
	Length uint64
}

func (e *DataLengthError) Error() string {
	return fmt.Sprintf("tejproto: declared length %d exceeds the addressable limit", e.Length)
}

// FileNameError reports a file name whose byte length does not fit the
// 2-byte name length field.
type FileNameError struct {
	Name   string
	Length int
}

func (e *FileNameError) Error() string {
	return fmt.Sprintf("tejproto: file name length %d exceeds %d bytes", e.Length, MaxNameLength)
}
