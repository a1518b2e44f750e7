// Package tejproto provides TCP endpoints for the TEJ framing protocol:
// a connection wrapper, a callback-driven server and client, a periodic
// heartbeat sender, and a pooled multi-endpoint dispatcher for outbound
// frames.
//
// The wire format itself lives in the frame subpackage; this package only
// moves frames between sockets and handlers.
//
// Minimal server:
//
//	type sink struct{ tejproto.BaseHandler }
//
//	func (sink) Received(c *tejproto.Connection, f *frame.Frame) {
//		for _, file := range f.Files {
//			fmt.Println(file.Name, len(file.Data))
//		}
//	}
//
//	srv := tejproto.NewServer(sink{}, tejproto.ServerConfig{})
//	srv.Listen("localhost:8000")
//
// Minimal client:
//
//	cl, err := tejproto.Dial("localhost:8000", handler, tejproto.ClientConfig{})
//	b, _ := frame.NewBuilder(20)
//	b.AddFile("a.txt", data)
//	cl.SendFrame(b)
package tejproto
