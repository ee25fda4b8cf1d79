package servernet

import "robots/internal/protocol"

// msgNode is one link in the append-only broadcast log: the engine only
// ever appends to the tail, and once msg is set it is never mutated, so
// readers need no lock on the node itself — only on the tail/head cursors
// that point into the log.
type msgNode struct {
	msg  protocol.ServerMessage
	next *msgNode
}
