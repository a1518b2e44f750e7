package frame

// File is a named byte payload embedded in a frame. Order is significant:
// files decode in the order they were added.
type File struct {
	Name string
	Data []byte
}

// Frame is one complete TEJ protocol message.
//
// A nil Message means the frame carried no message; the wire format encodes
// absence as length zero, so a zero-length message decodes to nil.
type Frame struct {
	Status  byte
	Version byte
	Files   []File
	Message []byte
}

// IsHeartbeat reports whether the frame uses the reserved heartbeat status
// and carries no payload.
func (f *Frame) IsHeartbeat() bool {
	return f.Status == StatusHeartbeat && len(f.Files) == 0 && f.Message == nil
}
