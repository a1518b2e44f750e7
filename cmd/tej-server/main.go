// Command tej-server runs a TEJ sink server: it logs every received frame
// and answers with a short acknowledgment frame.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tejproto/tejproto"
	"github.com/tejproto/tejproto/frame"
)

type sinkHandler struct {
	tejproto.BaseHandler
	log zerolog.Logger
}

func (h *sinkHandler) Connected(c *tejproto.Connection) {
	h.log.Info().Str("remote", c.RemoteAddr().String()).Msg("client connected")
}

func (h *sinkHandler) Received(c *tejproto.Connection, f *frame.Frame) {
	evt := h.log.Info().
		Str("remote", c.RemoteAddr().String()).
		Uint8("status", f.Status).
		Uint8("version", f.Version).
		Int("files", len(f.Files))
	if f.Message != nil {
		evt = evt.Str("message", string(f.Message))
	}
	evt.Msg("frame received")

	for _, file := range f.Files {
		h.log.Debug().Str("name", file.Name).Int("size", len(file.Data)).Msg("file")
	}

	ack, err := frame.NewBuilder(1)
	if err != nil {
		return
	}
	ack.SetMessage([]byte("ok"))
	if err := c.SendFrame(ack); err != nil {
		h.log.Warn().Err(err).Msg("ack failed")
	}
}

func (h *sinkHandler) Disconnected(c *tejproto.Connection, err error) {
	h.log.Info().Str("remote", c.RemoteAddr().String()).Err(err).Msg("client disconnected")
}

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides config)")
		configPath = flag.String("config", "", "path to TOML config file")
	)
	flag.Parse()

	cfg := defaultServerConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadServerConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tej-server: %v\n", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tej-server: bad log level %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	server := tejproto.NewServer(&sinkHandler{log: log}, tejproto.ServerConfig{
		ChunkSize:         cfg.ChunkSize,
		IdleTimeout:       cfg.IdleTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Logger:            &log,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		server.Close()
	}()

	if err := server.Listen(cfg.Addr); err != nil && err != tejproto.ErrServerClosed {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}
