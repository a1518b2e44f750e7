// Command tej-bench measures frame delivery throughput against one or
// more TEJ servers using the pooled dispatcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tejproto/tejproto"
	"github.com/tejproto/tejproto/frame"
)

func main() {
	var (
		endpoints   = flag.String("endpoints", "localhost:8000", "comma-separated server addresses")
		frames      = flag.Int("n", 10000, "number of frames to send")
		fileSize    = flag.Int("size", 4096, "file payload size in bytes")
		concurrency = flag.Int("c", 8, "concurrent senders")
		poolSize    = flag.Int("pool", 8, "connections per endpoint")
		usePuddle   = flag.Bool("puddle", false, "use the puddle pool instead of the channel pool")
	)
	flag.Parse()

	cfg := tejproto.DispatcherConfig{
		MaxPoolSize: int32(*poolSize),
	}
	if *usePuddle {
		cfg.Pool = tejproto.NewPuddlePool
	}

	dispatcher, err := tejproto.NewDispatcher(strings.Split(*endpoints, ","), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tej-bench: %v\n", err)
		os.Exit(1)
	}
	defer dispatcher.Close()

	builder, err := frame.NewBuilder(42)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tej-bench: %v\n", err)
		os.Exit(1)
	}
	builder.AddFile("payload.bin", make([]byte, *fileSize))
	wire, err := builder.Bytes()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tej-bench: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sending %d frames of %d bytes with %d senders...\n", *frames, len(wire), *concurrency)

	var (
		wg       sync.WaitGroup
		failures sync.Map
	)
	perSender := *frames / *concurrency
	start := time.Now()

	for s := 0; s < *concurrency; s++ {
		wg.Add(1)
		go func(sender int) {
			defer wg.Done()
			ctx := context.Background()
			for i := 0; i < perSender; i++ {
				key := fmt.Sprintf("sender-%d", sender)
				if err := dispatcher.Dispatch(ctx, key, wire); err != nil {
					failures.Store(err.Error(), true)
				}
			}
		}(s)
	}
	wg.Wait()

	elapsed := time.Since(start)
	sent := perSender * *concurrency
	stats := dispatcher.Stats()

	fmt.Printf("\nDone in %v\n", elapsed)
	fmt.Printf("  frames/sec:  %.0f\n", float64(sent)/elapsed.Seconds())
	fmt.Printf("  MB/sec:      %.2f\n", float64(sent)*float64(len(wire))/elapsed.Seconds()/(1<<20))
	fmt.Printf("  dispatched:  %d\n", stats.Dispatched)
	fmt.Printf("  errors:      %d\n", stats.Errors)

	failures.Range(func(key, _ any) bool {
		fmt.Printf("  failure: %s\n", key)
		return true
	})

	for _, ps := range dispatcher.AllPoolStats() {
		fmt.Printf("  pool %s: created=%d acquires=%d\n",
			ps.Endpoint, ps.PoolStats.CreatedConns, ps.PoolStats.AcquireCount)
	}
}
