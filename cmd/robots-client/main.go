package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"

	"robots/internal/clientnet"
	"robots/internal/cliopts"
	"robots/internal/wire"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("robots-client", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		guiAddress    string
		playerName    string
		port          uint
		serverAddress string
	)
	cliopts.String(fs, &guiAddress, "gui-address", "d", "", "GUI's HOST:PORT for draw datagrams")
	cliopts.String(fs, &playerName, "player-name", "n", "", "player name sent on Join")
	cliopts.Uint(fs, &port, "port", "p", 0, "UDP listen port for GUI input datagrams")
	cliopts.String(fs, &serverAddress, "server-address", "s", "", "server's HOST:PORT")

	if err := cliopts.Parse(fs, args); err != nil {
		if err == cliopts.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if guiAddress == "" || playerName == "" || port == 0 || serverAddress == "" {
		fmt.Fprintln(os.Stderr, "gui-address, player-name, port and server-address are all required")
		return 1
	}

	logger := log.New(os.Stderr, "robots-client: ", log.LstdFlags)

	serverHost, serverPort, err := splitHostPort(serverAddress)
	if err != nil {
		logger.Printf("invalid server address %q: %v", serverAddress, err)
		return 1
	}
	serverConn, err := net.Dial("tcp", net.JoinHostPort(serverHost, serverPort))
	if err != nil {
		logger.Printf("dial server %q: %v", serverAddress, err)
		return 1
	}
	if tc, ok := serverConn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	defer serverConn.Close()

	guiSock, err := net.ListenPacket("udp", net.JoinHostPort("::", fmt.Sprint(port)))
	if err != nil {
		logger.Printf("listen udp port %d: %v", port, err)
		return 1
	}
	defer guiSock.Close()

	guiHost, guiPort, err := splitHostPort(guiAddress)
	if err != nil {
		logger.Printf("invalid gui address %q: %v", guiAddress, err)
		return 1
	}
	guiAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(guiHost, guiPort))
	if err != nil {
		logger.Printf("resolve gui address %q: %v", guiAddress, err)
		return 1
	}

	guiBuf := wire.NewUDPBuffer(guiSock)
	guiBuf.SetPeer(guiAddr)
	serverBuf := wire.NewTCPBuffer(serverConn)

	client := clientnet.New(playerName, serverBuf, guiBuf, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Printf("interrupted")
		os.Exit(1)
	}()

	if err := client.Run(); err != nil {
		if wire.Is(err, wire.BadRead) || wire.Is(err, wire.BadWrite) {
			logger.Printf("connection lost: %v", err)
			return 1
		}
		logger.Printf("unexpected error: %v", err)
		return 2
	}
	return 0
}

// splitHostPort splits addr at its last colon, matching the documented
// limitation that bracketed IPv6 literals are not supported.
func splitHostPort(addr string) (host, port string, err error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return "", "", fmt.Errorf("missing port in address %q", addr)
	}
	return addr[:i], addr[i+1:], nil
}
