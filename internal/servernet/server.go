// Package servernet drives the engine: the accept loop, per-connection
// listener/emitter goroutines, the append-only broadcast log with
// per-connection head cursors, the lobby collector, and shutdown. The
// engine itself is mutated from exactly one goroutine (the game loop
// below), mirroring the single-writer discipline of the source; Server.mu
// only protects state shared with the per-connection goroutines: the
// connection map, the broadcast log cursors, and the pending-message
// counter.
package servernet

import (
	"errors"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"robots/internal/engine"
	"robots/internal/protocol"
)

var ErrShutdown = errors.New("server shut down")

type Server struct {
	cfg    engine.Config
	engine *engine.Engine
	log    *log.Logger

	listener net.Listener

	mu         sync.Mutex
	queueCond  *sync.Cond
	pendingCond *sync.Cond

	conns       map[uint64]*connection
	nextConnID  uint64

	tail               *msgNode
	acceptedPlayerHead *msgNode
	gameStartedHead    *msgNode

	pendingCount int
	shuttingDown bool

	connWG sync.WaitGroup
}

func New(cfg engine.Config, logger *log.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine.New(cfg),
		log:    logger,
		conns:  map[uint64]*connection{},
	}
	s.queueCond = sync.NewCond(&s.mu)
	s.pendingCond = sync.NewCond(&s.mu)
	return s
}

// Listen binds the TCP listener on IPv6 "::", which by OS policy also
// accepts IPv4-mapped connections. Separate from Run so main() can report
// bind failures before spawning any goroutines.
func (s *Server) Listen(port uint16) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("::", strconv.Itoa(int(port))))
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Run starts the accept loop and the game loop; blocks until Shutdown is
// called or an unrecoverable error occurs.
func (s *Server) Run() error {
	go s.acceptLoop()
	return s.gameLoop()
}

func (s *Server) acceptLoop() {
	for {
		sock, err := s.listener.Accept()
		if err != nil {
			return // listener closed by Shutdown
		}
		if tc, ok := sock.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}
		s.acceptConnection(sock)
	}
}

func (s *Server) acceptConnection(sock net.Conn) {
	s.mu.Lock()
	id := s.nextConnID
	s.nextConnID++
	c := newConnection(id, sock)

	switch s.engine.Phase() {
	case engine.Game:
		c.head = s.gameStartedHead
	default:
		c.head = s.acceptedPlayerHead
	}
	s.conns[id] = c
	s.mu.Unlock()

	s.log.Printf("connection %s from %s accepted", c.logID, c.address)

	if err := protocol.EncodeServerMessage(c.out, s.engine.Hello()); err != nil {
		s.log.Printf("connection %s: hello encode failed: %v", c.logID, err)
		s.dropConnection(c)
		return
	}
	if err := c.out.ForceSend(); err != nil {
		s.log.Printf("connection %s: hello send failed: %v", c.logID, err)
		s.dropConnection(c)
		return
	}

	s.connWG.Add(2)
	go s.listen(c)
	go s.emit(c)
}

func (s *Server) listen(c *connection) {
	defer s.connWG.Done()
	defer s.dropConnection(c)
	for {
		msg, err := protocol.DecodeClientMessage(c.in)
		if err != nil {
			s.log.Printf("connection %s: read failed: %v", c.logID, err)
			return
		}
		s.setPending(c, msg)
	}
}

func (s *Server) setPending(c *connection, msg protocol.ClientMessage) {
	c.inMu.Lock()
	wasPending := c.inPending
	c.inMessage = msg
	c.inPending = true
	c.inMu.Unlock()

	if !wasPending {
		s.mu.Lock()
		s.pendingCount++
		s.mu.Unlock()
		s.pendingCond.Signal()
	}
}

// takePending implements engine.PendingProvider against the live connection
// set, keyed by connection ID (the engine never sees sockets directly).
func (s *Server) takePending(connID uint64) (protocol.ClientMessage, bool) {
	s.mu.Lock()
	c, ok := s.conns[connID]
	s.mu.Unlock()
	if !ok {
		return protocol.ClientMessage{}, false
	}
	c.inMu.Lock()
	if !c.inPending {
		c.inMu.Unlock()
		return protocol.ClientMessage{}, false
	}
	m := c.inMessage
	c.inPending = false
	c.inMu.Unlock()

	s.mu.Lock()
	s.pendingCount--
	s.mu.Unlock()
	return m, true
}

type pendingSource struct{ s *Server }

func (p pendingSource) TakePending(connID uint64) (protocol.ClientMessage, bool) {
	return p.s.takePending(connID)
}

func (s *Server) emit(c *connection) {
	defer s.connWG.Done()
	for {
		s.mu.Lock()
		for c.head == nil && !c.disconnected && !s.shuttingDown {
			s.queueCond.Wait()
		}
		if c.disconnected || s.shuttingDown {
			s.mu.Unlock()
			return
		}
		node := c.head
		c.head = node.next
		s.mu.Unlock()

		if err := protocol.EncodeServerMessage(c.out, node.msg); err != nil {
			s.log.Printf("connection %s: encode failed: %v", c.logID, err)
			s.dropConnection(c)
			return
		}
		if err := c.out.ForceSend(); err != nil {
			s.log.Printf("connection %s: write failed: %v", c.logID, err)
			s.dropConnection(c)
			return
		}
	}
}

func (s *Server) dropConnection(c *connection) {
	s.mu.Lock()
	if c.disconnected {
		s.mu.Unlock()
		return
	}
	c.disconnected = true
	if _, stillInMap := s.conns[c.id]; stillInMap {
		delete(s.conns, c.id)
	}
	c.inMu.Lock()
	if c.inPending {
		c.inPending = false
		s.pendingCount--
	}
	c.inMu.Unlock()
	s.mu.Unlock()

	c.close()
	s.queueCond.Broadcast()
	s.pendingCond.Broadcast()
}

// appendLocked appends msg to the broadcast log, updating acceptedPlayerHead
// / gameStartedHead bookkeeping and pointing any connection with nothing
// left to send (head == nil) at it. Caller holds s.mu.
func (s *Server) appendLocked(msg protocol.ServerMessage) {
	node := &msgNode{msg: msg}
	if s.tail != nil {
		s.tail.next = node
	}
	for _, c := range s.conns {
		if c.head == nil {
			c.head = node
		}
	}
	s.tail = node

	switch msg.Type {
	case protocol.ServerAcceptedPlayer:
		if s.acceptedPlayerHead == nil {
			s.acceptedPlayerHead = node
		}
	case protocol.ServerGameStarted:
		s.gameStartedHead = node
	}

	s.queueCond.Broadcast()
}

// gameLoop is the single goroutine that owns the engine: lobby collection,
// game start, tick processing, end-of-game reset, repeating forever until
// shutdown.
func (s *Server) gameLoop() error {
	for {
		if err := s.collectPlayers(); err != nil {
			return err
		}
		s.startGame()
		if err := s.runGame(); err != nil {
			return err
		}
		s.clearGame()
	}
}

func (s *Server) collectPlayers() error {
	for !s.engine.ReadyToStart() {
		s.mu.Lock()
		for s.pendingCount == 0 && !s.shuttingDown {
			s.pendingCond.Wait()
		}
		if s.shuttingDown {
			s.mu.Unlock()
			return ErrShutdown
		}

		var target *connection
		for _, c := range s.conns {
			c.inMu.Lock()
			pending := c.inPending
			c.inMu.Unlock()
			if pending {
				target = c
				break
			}
		}
		s.mu.Unlock()
		if target == nil {
			continue
		}

		msg, ok := s.takePending(target.id)
		if !ok {
			continue
		}
		if msg.Type == protocol.ClientJoin && !target.joined {
			target.joined = true
			_, accepted := s.engine.JoinPlayer(target.id, msg.Name, target.address)
			s.log.Printf("player %q joined as connection %s", msg.Name, target.logID)
			s.mu.Lock()
			s.appendLocked(accepted)
			s.mu.Unlock()
		}
	}
	return nil
}

func (s *Server) startGame() {
	s.log.Printf("starting game with %d players", s.cfg.PlayerCount)
	gameStarted, turn0 := s.engine.StartGame()
	s.mu.Lock()
	s.appendLocked(gameStarted)
	s.appendLocked(turn0)
	s.mu.Unlock()
}

// runGame sleeps turnDuration between ticks; per the cancellation model, an
// in-flight sleep is not interrupted early — shutdown takes effect once the
// current tick completes, same as the listener/emitter loops.
func (s *Server) runGame() error {
	src := pendingSource{s}
	for turn := uint16(1); turn <= s.cfg.GameLength; turn++ {
		time.Sleep(time.Duration(s.cfg.TurnDuration) * time.Millisecond)

		s.mu.Lock()
		shuttingDown := s.shuttingDown
		s.mu.Unlock()
		if shuttingDown {
			return ErrShutdown
		}

		turnMsg := s.engine.Tick(turn, src)
		s.mu.Lock()
		s.appendLocked(turnMsg)
		s.mu.Unlock()
	}

	ended := s.engine.GameEnded()
	s.mu.Lock()
	s.appendLocked(ended)
	s.mu.Unlock()
	s.log.Printf("game ended: %+v", ended.Scores)
	return nil
}

func (s *Server) clearGame() {
	s.engine.Reset()
	s.mu.Lock()
	s.tail = nil
	s.acceptedPlayerHead = nil
	s.gameStartedHead = nil
	for _, c := range s.conns {
		c.joined = false
		c.head = nil
		c.inMu.Lock()
		if c.inPending {
			c.inPending = false
			s.pendingCount--
		}
		c.inMu.Unlock()
	}
	s.mu.Unlock()
}

// Shutdown closes the acceptor and every client socket, forcing listener
// and emitter goroutines to fail out, then waits for them to finish.
func (s *Server) Shutdown() {
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	s.shuttingDown = true
	conns := make([]*connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}

	s.mu.Lock()
	s.queueCond.Broadcast()
	s.pendingCond.Broadcast()
	s.mu.Unlock()

	s.connWG.Wait()
}
