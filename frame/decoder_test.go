package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func buildFrame(t *testing.T, status int, files []File, message []byte) []byte {
	t.Helper()

	b, err := NewBuilder(status)
	require.NoError(t, err)
	for _, f := range files {
		b.AddFile(f.Name, f.Data)
	}
	if message != nil {
		b.SetMessage(message)
	}

	out, err := b.Bytes()
	require.NoError(t, err)
	return out
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		files   []File
		message []byte
	}{
		{
			name:   "empty frame",
			status: 0,
		},
		{
			name:   "files only",
			status: 20,
			files: []File{
				{Name: "a.txt", Data: []byte("alpha")},
				{Name: "b.bin", Data: []byte{0x00, 0xFF, 0x10}},
			},
		},
		{
			name:    "message only",
			status:  1,
			message: []byte("hello"),
		},
		{
			name:   "files and message",
			status: 127,
			files: []File{
				{Name: "x", Data: bytes.Repeat([]byte("data"), 100)},
			},
			message: []byte("done"),
		},
		{
			name:   "zero length file data",
			status: 5,
			files:  []File{{Name: "empty", Data: nil}},
		},
		{
			name:   "empty file name",
			status: 5,
			files:  []File{{Name: "", Data: []byte("anonymous")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := buildFrame(t, tt.status, tt.files, tt.message)

			f, err := NewDecoder(DecoderConfig{}).Decode(bytes.NewReader(wire))
			require.NoError(t, err)

			require.Equal(t, byte(tt.status), f.Status)
			require.Equal(t, byte(DefaultVersion), f.Version)
			require.Len(t, f.Files, len(tt.files))
			for i, want := range tt.files {
				require.Equal(t, want.Name, f.Files[i].Name, "file %d name", i)
				require.Equal(t, string(want.Data), string(f.Files[i].Data), "file %d data", i)
			}
			if len(tt.message) == 0 {
				require.Nil(t, f.Message, "zero-length message must decode as absent")
			} else {
				require.Equal(t, tt.message, f.Message)
			}
		})
	}
}

func TestDecodeVersionRoundTrip(t *testing.T) {
	b, err := NewBuilder(9)
	require.NoError(t, err)
	require.NoError(t, b.SetProtocolVersion(255))
	wire, err := b.Bytes()
	require.NoError(t, err)

	f, err := NewDecoder(DecoderConfig{}).Decode(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Equal(t, byte(255), f.Version)
}

func TestDecodeInvalidValidityBit(t *testing.T) {
	// A frame whose first byte has bit 7 clear is not TEJ traffic.
	stream := bytes.NewReader([]byte{0x15, 0x01, 0, 0, 0, 0, 0, 0, 0, 0})

	_, err := NewDecoder(DecoderConfig{}).Decode(stream)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, byte(0x15), protoErr.StatusByte)

	// Nothing past the first byte was consumed.
	require.Equal(t, 9, stream.Len())
}

func TestDecodePartialDelivery(t *testing.T) {
	files := make([]File, 5)
	for i := range files {
		files[i] = File{
			Name: string(rune('a'+i)) + ".dat",
			Data: bytes.Repeat([]byte{byte(i)}, 64*(i+1)),
		}
	}
	wire := buildFrame(t, 33, files, []byte("trailer"))

	stream := &chunkedReader{r: bytes.NewReader(wire), chunk: 1}
	f, err := NewDecoder(DecoderConfig{}).Decode(stream)
	require.NoError(t, err)

	require.Equal(t, byte(33), f.Status)
	require.Len(t, f.Files, 5)
	for i, want := range files {
		require.Equal(t, want.Name, f.Files[i].Name)
		require.True(t, bytes.Equal(want.Data, f.Files[i].Data))
	}
	require.Equal(t, []byte("trailer"), f.Message)
}

func TestDecodeClosureMidFrame(t *testing.T) {
	// Stream closes after status and version, before the file count.
	stream := bytes.NewReader([]byte{0x80 | 9, 0x01})

	f, err := NewDecoder(DecoderConfig{}).Decode(stream)
	require.ErrorIs(t, err, ErrConnectionClosed)
	require.Nil(t, f)
}

func TestDecodeChunkBoundary(t *testing.T) {
	sizes := []int{DefaultChunkSize, DefaultChunkSize + 1}

	for _, size := range sizes {
		data := bytes.Repeat([]byte{0x5A}, size)
		wire := buildFrame(t, 2, []File{{Name: "blob", Data: data}}, nil)

		f, err := NewDecoder(DecoderConfig{}).Decode(bytes.NewReader(wire))
		require.NoError(t, err)
		require.Len(t, f.Files, 1)
		require.Len(t, f.Files[0].Data, size)
		require.True(t, bytes.Equal(data, f.Files[0].Data), "size %d", size)
	}
}

func TestDecodeConsumesExactlyOneFrame(t *testing.T) {
	first := buildFrame(t, 1, nil, []byte("one"))
	second := buildFrame(t, 2, []File{{Name: "f", Data: []byte("two")}}, nil)

	stream := bytes.NewReader(append(append([]byte{}, first...), second...))
	dec := NewDecoder(DecoderConfig{})

	f1, err := dec.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, byte(1), f1.Status)

	f2, err := dec.Decode(stream)
	require.NoError(t, err)
	require.Equal(t, byte(2), f2.Status)
	require.Equal(t, "f", f2.Files[0].Name)

	require.Zero(t, stream.Len(), "decoder consumed bytes past the frame boundary")
}

func TestDecodeIdleTimeoutMidFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		// Valid start byte, then stall forever.
		client.Write([]byte{0x80 | 5})
	}()

	dec := NewDecoder(DecoderConfig{IdleTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := dec.Decode(server)
	require.ErrorIs(t, err, ErrConnectionClosed)
	require.Less(t, time.Since(start), 5*time.Second, "idle deadline did not fire")
}

func TestDecodeNoInterFrameDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	wire := buildFrame(t, 3, nil, []byte("ping"))

	go func() {
		client.Write(wire)
		// Inter-frame gap far beyond the idle deadline.
		time.Sleep(200 * time.Millisecond)
		client.Write(wire)
	}()

	dec := NewDecoder(DecoderConfig{IdleTimeout: 50 * time.Millisecond})

	f1, err := dec.Decode(server)
	require.NoError(t, err)
	require.Equal(t, byte(3), f1.Status)

	f2, err := dec.Decode(server)
	require.NoError(t, err, "deadline must be cleared between frames")
	require.Equal(t, byte(3), f2.Status)
}

func TestDecodeHeartbeat(t *testing.T) {
	f, err := NewDecoder(DecoderConfig{}).Decode(bytes.NewReader(Heartbeat()))
	require.NoError(t, err)
	require.True(t, f.IsHeartbeat())
	require.Equal(t, byte(StatusHeartbeat), f.Status)
	require.Empty(t, f.Files)
	require.Nil(t, f.Message)
}

func TestDecodeGarbageAfterValidStart(t *testing.T) {
	// Valid status byte but the stream ends inside the file count field.
	stream := bytes.NewReader([]byte{0x80, 0x01, 0x00, 0x00, 0x00})

	_, err := NewDecoder(DecoderConfig{}).Decode(stream)
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestDecodeHostileLengths(t *testing.T) {
	// A declared length with the top bit set would go negative when
	// narrowed to int; the decoder must fail, not panic allocating.
	hostile := binary.BigEndian.AppendUint64(nil, 1<<63)

	tests := []struct {
		name string
		wire []byte
	}{
		{
			name: "message length",
			// status, version, file count 0, then the hostile message length.
			wire: append([]byte{0x80 | 1, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}, hostile...),
		},
		{
			name: "file data length",
			// status, version, file count 1, empty name, hostile data length.
			wire: append([]byte{0x80 | 1, 0x01, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0}, hostile...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(DecoderConfig{}).Decode(bytes.NewReader(tt.wire))

			var lenErr *DataLengthError
			require.ErrorAs(t, err, &lenErr)
			require.Equal(t, uint64(1)<<63, lenErr.Length)
		})
	}
}

func TestErrorsDoNotMatchEachOther(t *testing.T) {
	protoErr := &ProtocolError{StatusByte: 0x00}
	require.False(t, errors.Is(protoErr, ErrConnectionClosed))
}
