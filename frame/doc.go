// Package frame implements the TEJ wire format: a length-delimited binary
// frame carrying a status code, a protocol version, an ordered list of named
// file payloads, and an optional message body.
//
// All multi-byte integers are big-endian and unsigned. One frame on the wire:
//
//	1 byte   status (bit 7 = validity, must be 1; bits 6-0 = custom status)
//	1 byte   protocol version
//	8 bytes  file count
//	per file:
//	  2 bytes  name length
//	  N bytes  name (UTF-8)
//	  8 bytes  data length
//	  N bytes  data
//	8 bytes  message length (0 = no message)
//	N bytes  message
//
// Every variable-length field is length-prefixed, so decoding one frame
// consumes exactly the bytes that encoding produced and no outer delimiter
// is needed.
//
// Build a frame with Builder, decode one with Decoder:
//
//	b, err := frame.NewBuilder(20)
//	b.AddFile("report.txt", data).SetMessage([]byte("done"))
//	wire, err := b.Bytes()
//
//	dec := frame.NewDecoder(frame.DecoderConfig{IdleTimeout: 30 * time.Second})
//	f, err := dec.Decode(conn)
//
// The package performs no I/O of its own beyond reading the stream handed to
// Decode, and holds no state across frames.
package frame
