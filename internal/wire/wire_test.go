package wire

import (
	"net"
	"testing"
)

func tcpPipe(t *testing.T) (*TCPBuffer, *TCPBuffer) {
	t.Helper()
	a, b := net.Pipe()
	return NewTCPBuffer(a), NewTCPBuffer(b)
}

func TestTCPBigEndianRoundTrip(t *testing.T) {
	writer, reader := tcpPipe(t)
	done := make(chan error, 1)
	go func() {
		if err := writer.WriteU16(0x0102); err != nil {
			done <- err
			return
		}
		if err := writer.WriteU32(0xAABBCCDD); err != nil {
			done <- err
			return
		}
		done <- writer.ForceSend()
	}()

	u16, err := reader.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if u16 != 0x0102 {
		t.Fatalf("got %x, want 0x0102", u16)
	}
	u32, err := reader.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if u32 != 0xAABBCCDD {
		t.Fatalf("got %x, want 0xAABBCCDD", u32)
	}
	if err := <-done; err != nil {
		t.Fatalf("writer side: %v", err)
	}
}

func TestTCPStringRoundTrip(t *testing.T) {
	writer, reader := tcpPipe(t)
	go func() {
		_ = writer.WriteStr("srv")
		_ = writer.ForceSend()
	}()
	s, err := reader.ReadStr(3)
	if err != nil {
		t.Fatalf("ReadStr: %v", err)
	}
	if s != "srv" {
		t.Fatalf("got %q, want %q", s, "srv")
	}
}

func TestTCPReadEOF(t *testing.T) {
	a, b := net.Pipe()
	reader := NewTCPBuffer(a)
	_ = b.Close()
	_, err := reader.ReadU8()
	if !Is(err, BadRead) {
		t.Fatalf("expected BadRead, got %v", err)
	}
}

func TestUDPPullNeverBlocks(t *testing.T) {
	ub := &UDPBuffer{}
	ub.buf = make([]byte, udpBufferSize)
	ub.pull = ub.pullUDP
	ub.push = ub.pushUDP
	// Nothing has been received; pull must fail immediately, not block.
	_, err := ub.ReadU8()
	if !Is(err, BadRead) {
		t.Fatalf("expected BadRead, got %v", err)
	}
}

func TestUDPForceSendRequiresPeer(t *testing.T) {
	ub := &UDPBuffer{}
	ub.buf = make([]byte, udpBufferSize)
	ub.pull = ub.pullUDP
	ub.push = ub.pushUDP
	_ = ub.WriteU8(1)
	if err := ub.ForceSend(); !Is(err, BadWrite) {
		t.Fatalf("expected BadWrite, got %v", err)
	}
}

func TestUDPRoundTripOverLoopback(t *testing.T) {
	serverConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer serverConn.Close()
	clientConn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer clientConn.Close()

	sendBuf := NewUDPBuffer(clientConn)
	sendBuf.SetPeer(serverConn.LocalAddr())
	_ = sendBuf.WriteU16(0x0102)
	if err := sendBuf.ForceSend(); err != nil {
		t.Fatalf("ForceSend: %v", err)
	}

	recvBuf := NewUDPBuffer(serverConn)
	if err := recvBuf.ForceReceive(); err != nil {
		t.Fatalf("ForceReceive: %v", err)
	}
	v, err := recvBuf.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if v != 0x0102 {
		t.Fatalf("got %x, want 0x0102", v)
	}
}
