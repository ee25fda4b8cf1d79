package servernet

import (
	"net"
	"sync"

	"github.com/google/uuid"

	"robots/internal/protocol"
	"robots/internal/wire"
)

// connection is one accepted client: a listener goroutine reads
// ClientMessages into a single-slot "pending message", an emitter goroutine
// walks the shared broadcast log from its own head cursor.
type connection struct {
	id       uint64
	logID    string // uuid, for correlating listener/emitter log lines
	sock     net.Conn
	in       *wire.TCPBuffer
	out      *wire.TCPBuffer
	address  string

	inMu      sync.Mutex
	inMessage protocol.ClientMessage
	inPending bool

	joined       bool
	disconnected bool

	head *msgNode // this connection's cursor into the broadcast log; guarded by Server.mu
}

func newConnection(id uint64, sock net.Conn) *connection {
	return &connection{
		id:      id,
		logID:   uuid.New().String(),
		sock:    sock,
		in:      wire.NewTCPBuffer(sock),
		out:     wire.NewTCPBuffer(sock),
		address: sock.RemoteAddr().String(),
	}
}

func (c *connection) close() {
	_ = c.sock.Close()
}
