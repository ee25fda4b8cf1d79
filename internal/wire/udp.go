package wire

import "net"

const udpBufferSize = 65507

// UDPBuffer is a datagram buffer: a single message is a single datagram.
// pull/push never perform I/O; if the requested bytes aren't already
// buffered (or don't fit), they fail immediately instead of blocking.
type UDPBuffer struct {
	base
	conn net.PacketConn

	// sendTo is the fixed destination configured via SetPeer; nil if none.
	sendTo net.Addr
	// lastFrom is the sender address of the most recent ForceReceive.
	lastFrom net.Addr
}

func NewUDPBuffer(conn net.PacketConn) *UDPBuffer {
	ub := &UDPBuffer{conn: conn}
	ub.buf = make([]byte, udpBufferSize)
	ub.pull = ub.pullUDP
	ub.push = ub.pushUDP
	return ub
}

// Peer returns the address the last ForceReceive read from. This tracks the
// sender of the most recent datagram, not the configured ForceSend
// destination — see SetPeer.
func (ub *UDPBuffer) Peer() net.Addr { return ub.lastFrom }

// SetPeer fixes the destination ForceSend writes to, for a buffer used to
// talk to a single known peer (e.g. the client's connection to the GUI).
// Once set, ForceSend always writes here regardless of what ForceReceive
// has most recently read from.
func (ub *UDPBuffer) SetPeer(addr net.Addr) { ub.sendTo = addr }

// HasPeer reports whether SetPeer has configured a ForceSend destination.
func (ub *UDPBuffer) HasPeer() bool { return ub.sendTo != nil }

func (ub *UDPBuffer) pullUDP(n int) error {
	if ub.right-ub.left < n {
		return ErrBadRead("short datagram", nil)
	}
	return nil
}

func (ub *UDPBuffer) pushUDP(n int) error {
	if ub.right+n > len(ub.buf) {
		return ErrBadWrite("message too large for datagram", nil)
	}
	return nil
}

// ForceReceive performs exactly one datagram receive into the buffer,
// resetting cursors so the datagram is the entire message.
func (ub *UDPBuffer) ForceReceive() error {
	n, addr, err := ub.conn.ReadFrom(ub.buf)
	if err != nil {
		return ErrBadRead("receive failed", err)
	}
	ub.lastFrom = addr
	ub.left, ub.right = 0, n
	return nil
}

// ForceSend emits exactly one datagram containing the buffered bytes, then
// clears the buffer. It always writes to the address configured via
// SetPeer, never to the sender of the last received datagram.
func (ub *UDPBuffer) ForceSend() error {
	if ub.sendTo == nil {
		return ErrBadWrite("no destination address", nil)
	}
	_, err := ub.conn.WriteTo(ub.buf[ub.left:ub.right], ub.sendTo)
	ub.left, ub.right = 0, 0
	if err != nil {
		return ErrBadWrite("send failed", err)
	}
	return nil
}

// Close closes the underlying socket, unblocking any goroutine parked in
// ForceReceive.
func (ub *UDPBuffer) Close() error { return ub.conn.Close() }
