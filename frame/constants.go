package frame

// Wire format field sizes in bytes.
const (
	StatusSize     = 1
	VersionSize    = 1
	FileCountSize  = 8
	NameLengthSize = 2
	DataLengthSize = 8
	MessageLenSize = 8
	EmptyFrameSize = StatusSize + VersionSize + FileCountSize + MessageLenSize
)

const (
	// ValidityBit is the most significant bit of the status byte. It must
	// be set on every well-formed frame; a clear bit means the stream does
	// not carry TEJ frames (or has desynced).
	ValidityBit = 0b10000000

	// StatusMask extracts the 7-bit custom status from the status byte.
	StatusMask = 0b01111111

	// MaxStatus is the largest custom status code.
	MaxStatus = 127

	// MaxVersion is the largest protocol version.
	MaxVersion = 255

	// MaxNameLength is the largest file name, in bytes, that fits the
	// 2-byte name length field.
	MaxNameLength = 65535
)

// StatusHeartbeat is the custom status reserved by convention for
// heartbeat frames. The framing layer treats heartbeat frames like any
// other frame; the connection layer gives them keepalive semantics.
const StatusHeartbeat = MaxStatus

// DefaultVersion is the protocol version a Builder emits unless
// SetProtocolVersion is called.
const DefaultVersion = 1

// DefaultChunkSize bounds a single underlying stream read. It does not
// change how many bytes a read operation returns in total.
const DefaultChunkSize = 8 * 1024
