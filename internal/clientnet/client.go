// Package clientnet drives the client program: a GUI-listener goroutine
// (UDP receive -> translate -> TCP send) and a server-listener goroutine
// (TCP receive -> fold -> UDP send), sharing one DrawState under a single
// mutex held only across the fold/translate step, never across I/O. Fatal
// errors on either side are posted to a single-slot channel the owner
// drains to decide when to shut both sockets.
package clientnet

import (
	"log"
	"sync"

	"robots/internal/clientstate"
	"robots/internal/protocol"
	"robots/internal/wire"
)

// Client wires one server TCP connection to one GUI UDP socket.
type Client struct {
	playerName string
	server     *wire.TCPBuffer
	gui        *wire.UDPBuffer
	log        *log.Logger

	mu    sync.Mutex
	state *clientstate.DrawState

	errOnce sync.Once
	errCh   chan error

	wg sync.WaitGroup
}

func New(playerName string, server *wire.TCPBuffer, gui *wire.UDPBuffer, logger *log.Logger) *Client {
	return &Client{
		playerName: playerName,
		server:     server,
		gui:        gui,
		log:        logger,
		state:      clientstate.New(),
		errCh:      make(chan error, 1),
	}
}

// Run starts both listener goroutines and blocks until either posts a
// fatal error, then closes both sockets to force the other out and waits
// for both to exit.
func (c *Client) Run() error {
	c.wg.Add(2)
	go c.serverListener()
	go c.guiListener()

	err := <-c.errCh
	c.close()
	c.wg.Wait()
	return err
}

func (c *Client) fail(err error) {
	c.errOnce.Do(func() { c.errCh <- err })
}

func (c *Client) close() {
	_ = c.server.Close()
	_ = c.gui.Close()
}

// serverListener receives ServerMessages, folds them into the shared draw
// state, and forwards a snapshot to the GUI for every message except
// GameStarted (the immediately-following Turn 0 triggers the next send).
func (c *Client) serverListener() {
	defer c.wg.Done()
	for {
		msg, err := protocol.DecodeServerMessage(c.server)
		if err != nil {
			c.fail(err)
			return
		}

		c.mu.Lock()
		c.state.Fold(msg)
		var draw protocol.DrawMessage
		send := msg.Type != protocol.ServerGameStarted
		if send {
			draw = c.state.ToMessage()
		}
		c.mu.Unlock()

		if !send || !c.gui.HasPeer() {
			continue
		}
		if err := protocol.EncodeDrawMessage(c.gui, draw); err != nil {
			c.log.Printf("encode draw message: %v", err)
			continue
		}
		if err := c.gui.ForceSend(); err != nil {
			c.log.Printf("send draw message: %v", err)
		}
	}
}

// guiListener receives InputMessages, translates the current one into a
// ClientMessage under the shared lock, and forwards it to the server.
// Per-message decode failures are dropped silently; only a fatal error
// from the underlying socket tears the client down.
func (c *Client) guiListener() {
	defer c.wg.Done()
	for {
		if err := c.gui.ForceReceive(); err != nil {
			c.fail(err)
			return
		}

		input, err := protocol.DecodeInputMessage(c.gui)
		if err != nil {
			continue
		}

		c.mu.Lock()
		clientMsg := c.state.Translate(c.playerName, input)
		c.mu.Unlock()

		if err := protocol.EncodeClientMessage(c.server, clientMsg); err != nil {
			c.fail(err)
			return
		}
		if err := c.server.ForceSend(); err != nil {
			c.fail(err)
			return
		}
	}
}
