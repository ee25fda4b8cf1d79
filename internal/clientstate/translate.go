package clientstate

import "robots/internal/protocol"

// Translate converts one GUI InputMessage into the ClientMessage the client
// sends the server. In Lobby every input becomes a Join, since the server
// admits at most one player per connection and ignores repeat Joins.
func (d *DrawState) Translate(playerName string, m protocol.InputMessage) protocol.ClientMessage {
	if d.Phase == Lobby {
		return protocol.ClientMessage{Type: protocol.ClientJoin, Name: playerName}
	}
	switch m.Type {
	case protocol.InputPlaceBomb:
		return protocol.ClientMessage{Type: protocol.ClientPlaceBomb}
	case protocol.InputPlaceBlock:
		return protocol.ClientMessage{Type: protocol.ClientPlaceBlock}
	case protocol.InputMove:
		return protocol.ClientMessage{Type: protocol.ClientMove, Direction: m.Direction}
	default:
		return protocol.ClientMessage{}
	}
}
