package servernet

import (
	"io"
	"log"
	"net"
	"testing"
	"time"

	"robots/internal/engine"
	"robots/internal/protocol"
	"robots/internal/wire"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func startTestServer(t *testing.T, cfg engine.Config) (*Server, string) {
	t.Helper()
	s := New(cfg, testLogger())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s.listener = ln
	go func() { _ = s.Run() }()
	t.Cleanup(s.Shutdown)
	return s, ln.Addr().String()
}

func dial(t *testing.T, addr string) (net.Conn, *wire.TCPBuffer, *wire.TCPBuffer) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn, wire.NewTCPBuffer(conn), wire.NewTCPBuffer(conn)
}

func recvServerMsg(t *testing.T, buf *wire.TCPBuffer) protocol.ServerMessage {
	t.Helper()
	m, err := protocol.DecodeServerMessage(buf)
	if err != nil {
		t.Fatalf("decode server message: %v", err)
	}
	return m
}

func sendClientMsg(t *testing.T, buf *wire.TCPBuffer, m protocol.ClientMessage) {
	t.Helper()
	if err := protocol.EncodeClientMessage(buf, m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := buf.ForceSend(); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func testConfig() engine.Config {
	return engine.Config{
		ServerName:      "srv",
		PlayerCount:     2,
		SizeX:           10,
		SizeY:           10,
		GameLength:      2,
		ExplosionRadius: 1,
		BombTimer:       1,
		TurnDuration:    10,
		InitialBlocks:   0,
		Seed:            1,
	}
}

// Property 9 / S5 — every client sees broadcasts in the same order, and a
// late joiner during Game gets Hello, GameStarted, every Turn so far, then
// subsequent Turns and GameEnded.
func TestLateJoinReplay(t *testing.T) {
	_, addr := startTestServer(t, testConfig())

	connA, _, outA := dial(t, addr)
	defer connA.Close()
	inA := wire.NewTCPBuffer(connA)
	recvServerMsg(t, inA) // Hello
	sendClientMsg(t, outA, protocol.ClientMessage{Type: protocol.ClientJoin, Name: "a"})

	connB, _, outB := dial(t, addr)
	defer connB.Close()
	inB := wire.NewTCPBuffer(connB)
	recvServerMsg(t, inB) // Hello
	sendClientMsg(t, outB, protocol.ClientMessage{Type: protocol.ClientJoin, Name: "b"})

	// A and B each see an AcceptedPlayer for themselves, possibly two
	// (their own and the other's) before GameStarted.
	seenAccepted := 0
	for seenAccepted < 2 {
		m := recvServerMsg(t, inA)
		if m.Type == protocol.ServerAcceptedPlayer {
			seenAccepted++
		}
	}

	started := recvServerMsg(t, inA)
	if started.Type != protocol.ServerGameStarted {
		t.Fatalf("got %v, want GameStarted", started.Type)
	}
	turn0 := recvServerMsg(t, inA)
	if turn0.Type != protocol.ServerTurn || turn0.Turn != 0 {
		t.Fatalf("got %+v, want Turn 0", turn0)
	}

	// Late joiner C connects mid-game.
	time.Sleep(5 * time.Millisecond)
	connC, _, _ := dial(t, addr)
	defer connC.Close()
	inC := wire.NewTCPBuffer(connC)

	hello := recvServerMsg(t, inC)
	if hello.Type != protocol.ServerHello {
		t.Fatalf("got %v, want Hello", hello.Type)
	}
	gs := recvServerMsg(t, inC)
	if gs.Type != protocol.ServerGameStarted {
		t.Fatalf("got %v, want GameStarted", gs.Type)
	}
	firstTurn := recvServerMsg(t, inC)
	if firstTurn.Type != protocol.ServerTurn || firstTurn.Turn != 0 {
		t.Fatalf("got %+v, want Turn 0 replay", firstTurn)
	}
}

func TestBroadcastOrderIsConsistentAcrossClients(t *testing.T) {
	_, addr := startTestServer(t, testConfig())

	connA, _, outA := dial(t, addr)
	defer connA.Close()
	inA := wire.NewTCPBuffer(connA)
	recvServerMsg(t, inA)
	sendClientMsg(t, outA, protocol.ClientMessage{Type: protocol.ClientJoin, Name: "a"})

	connB, _, outB := dial(t, addr)
	defer connB.Close()
	inB := wire.NewTCPBuffer(connB)
	recvServerMsg(t, inB)
	sendClientMsg(t, outB, protocol.ClientMessage{Type: protocol.ClientJoin, Name: "b"})

	var seqA, seqB []protocol.ServerMessageType
	for i := 0; i < 3; i++ {
		seqA = append(seqA, recvServerMsg(t, inA).Type)
	}
	for i := 0; i < 3; i++ {
		seqB = append(seqB, recvServerMsg(t, inB).Type)
	}
	for i := range seqA {
		if seqA[i] != seqB[i] {
			t.Fatalf("order mismatch at %d: A=%v B=%v", i, seqA, seqB)
		}
	}
}

// S6 — SIGINT-equivalent shutdown with unjoined clients: both sockets
// close, collector wakes and returns, no goroutine is left blocked.
func TestShutdownWithUnjoinedClients(t *testing.T) {
	s, addr := startTestServer(t, testConfig())

	connA, _, _ := dial(t, addr)
	defer connA.Close()
	connB, _, _ := dial(t, addr)
	defer connB.Close()

	time.Sleep(5 * time.Millisecond)
	done := make(chan struct{})
	go func() { s.Shutdown(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("shutdown did not complete")
	}
}
