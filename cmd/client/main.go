// Command client is a terminal chat client for the chat server. It renders
// the server's JSON record stream with per-type colors and forwards stdin
// lines as commands and messages.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

type record struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

var styles = map[string]color.Color{
	"message": color.FgWhite,
	"system":  color.FgYellow,
	"error":   color.FgRed,
	"dm":      color.FgMagenta,
	"echo":    color.FgGray,
}

func main() {
	host := flag.String("host", "127.0.0.1", "chat server host")
	port := flag.Int("port", 5555, "chat server port")
	flag.Parse()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		color.Red.Printf("Could not connect to %s. Is the server running?\n", addr)
		os.Exit(1)
	}
	defer conn.Close()
	color.Green.Printf("Connected to %s\n", addr)

	go receive(conn)

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		msg := strings.TrimSpace(stdin.Text())
		if msg == "" {
			continue
		}
		if _, err := fmt.Fprintln(conn, msg); err != nil {
			break
		}
		if strings.EqualFold(msg, "/quit") {
			break
		}
	}
	fmt.Println("Disconnected.")
}

// receive renders server records until the connection drops. Malformed
// lines are discarded so one bad record never kills the session.
func receive(conn net.Conn) {
	lines := bufio.NewScanner(conn)
	for lines.Scan() {
		var rec record
		if err := json.Unmarshal(lines.Bytes(), &rec); err != nil {
			continue
		}
		render(rec)
	}
	fmt.Println("\n[Disconnected from server]")
	os.Exit(0)
}

func render(rec record) {
	style, ok := styles[rec.Type]
	if !ok {
		style = styles["message"]
	}
	switch rec.Type {
	case "message":
		style.Printf("[%s] %s: %s\n", rec.Time, rec.Sender, rec.Message)
	case "echo":
		style.Println(rec.Message)
	case "dm":
		style.Printf("[DM from %s]: %s\n", rec.Sender, rec.Message)
	default:
		style.Printf(">>> %s\n", rec.Message)
	}
}
