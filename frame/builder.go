package frame

import "encoding/binary"

// Builder accumulates the fields of one frame and serializes them.
//
// Mutation and serialization are separate phases: Add/Set calls only record
// state, and Bytes emits a fresh byte slice from that state. Calling Bytes
// twice without mutating the builder in between yields identical bytes.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	status  byte
	version byte
	files   []File
	message []byte
}

// NewBuilder creates a builder for a frame with the given custom status
// code. The code must be in [0, 127]; the validity bit is added at
// serialization time and is not part of the code.
func NewBuilder(statusCode int) (*Builder, error) {
	if statusCode < 0 || statusCode > MaxStatus {
		return nil, &StatusCodeError{Code: statusCode}
	}

	return &Builder{
		status:  byte(statusCode),
		version: DefaultVersion,
	}, nil
}

// SetProtocolVersion sets the version byte. The version must be in [0, 255].
func (b *Builder) SetProtocolVersion(version int) error {
	if version < 0 || version > MaxVersion {
		return &ProtocolVersionError{Version: version}
	}

	b.version = byte(version)
	return nil
}

// AddFile appends a named payload. Call order is wire order. The name is
// validated at serialization time.
func (b *Builder) AddFile(name string, data []byte) *Builder {
	b.files = append(b.files, File{Name: name, Data: data})
	return b
}

// SetMessage sets the optional message body. The last call wins. A nil or
// empty message encodes as length zero, which the decoder reports as no
// message.
func (b *Builder) SetMessage(message []byte) *Builder {
	b.message = message
	return b
}

// Bytes serializes the accumulated fields into one frame.
//
// The builder is not consumed: it can be mutated and serialized again.
func (b *Builder) Bytes() ([]byte, error) {
	size := EmptyFrameSize + len(b.message)
	for _, f := range b.files {
		if len(f.Name) > MaxNameLength {
			return nil, &FileNameError{Name: f.Name, Length: len(f.Name)}
		}
		size += NameLengthSize + len(f.Name) + DataLengthSize + len(f.Data)
	}

	out := make([]byte, 0, size)
	out = append(out, b.status|ValidityBit)
	out = append(out, b.version)

	out = binary.BigEndian.AppendUint64(out, uint64(len(b.files)))
	for _, f := range b.files {
		out = binary.BigEndian.AppendUint16(out, uint16(len(f.Name)))
		out = append(out, f.Name...)
		out = binary.BigEndian.AppendUint64(out, uint64(len(f.Data)))
		out = append(out, f.Data...)
	}

	out = binary.BigEndian.AppendUint64(out, uint64(len(b.message)))
	out = append(out, b.message...)

	return out, nil
}

// Heartbeat returns the serialized heartbeat frame: reserved status, default
// version, no files, no message.
func Heartbeat() []byte {
	b := Builder{status: StatusHeartbeat, version: DefaultVersion}

	// The heartbeat builder state cannot fail validation.
	out, _ := b.Bytes()
	return out
}
