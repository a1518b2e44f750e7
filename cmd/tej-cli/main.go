// Command tej-cli is an interactive TEJ client for poking at a server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tejproto/tejproto"
	"github.com/tejproto/tejproto/frame"
)

type printHandler struct {
	tejproto.BaseHandler
}

func (printHandler) Received(c *tejproto.Connection, f *frame.Frame) {
	fmt.Printf("< frame status=%d version=%d files=%d\n", f.Status, f.Version, len(f.Files))
	for _, file := range f.Files {
		fmt.Printf("<   file %q (%d bytes)\n", file.Name, len(file.Data))
	}
	if f.Message != nil {
		fmt.Printf("<   message: %s\n", f.Message)
	}
	fmt.Print("> ")
}

func (printHandler) Disconnected(c *tejproto.Connection, err error) {
	fmt.Printf("\ndisconnected: %v\n", err)
	os.Exit(0)
}

func main() {
	addr := flag.String("addr", "localhost:8000", "server address")
	flag.Parse()

	client, err := tejproto.Dial(*addr, printHandler{}, tejproto.ClientConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tej-cli: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	go client.Listen()

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Commands: msg <text>, file <path>, send <status> [message], ping, quit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		parts := strings.Fields(line)
		switch strings.ToLower(parts[0]) {
		case "msg":
			if len(parts) < 2 {
				fmt.Println("Usage: msg <text>")
				break
			}
			handleErr(sendMessage(client, 0, strings.Join(parts[1:], " ")))

		case "file":
			if len(parts) != 2 {
				fmt.Println("Usage: file <path>")
				break
			}
			handleErr(sendFile(client, parts[1]))

		case "send":
			if len(parts) < 2 {
				fmt.Println("Usage: send <status> [message]")
				break
			}
			status, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Printf("bad status: %v\n", err)
				break
			}
			handleErr(sendMessage(client, status, strings.Join(parts[2:], " ")))

		case "ping":
			handleErr(client.Connection().Ping())

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command: %s\n", parts[0])
		}

		fmt.Print("> ")
	}
}

func sendMessage(client *tejproto.Client, status int, text string) error {
	b, err := frame.NewBuilder(status)
	if err != nil {
		return err
	}
	if text != "" {
		b.SetMessage([]byte(text))
	}
	return client.SendFrame(b)
}

func sendFile(client *tejproto.Client, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	b, err := frame.NewBuilder(0)
	if err != nil {
		return err
	}
	b.AddFile(filepath.Base(path), data)
	if err := client.SendFrame(b); err != nil {
		return err
	}

	fmt.Printf("sent %q (%d bytes)\n", filepath.Base(path), len(data))
	return nil
}

func handleErr(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
