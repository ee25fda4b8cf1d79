package protocol

import "robots/internal/wire"

type ClientMessageType uint8

const (
	ClientJoin ClientMessageType = iota
	ClientPlaceBomb
	ClientPlaceBlock
	ClientMove
)

func (t ClientMessageType) valid() bool { return t <= ClientMove }

// ClientMessage is what a client sends the server over TCP.
type ClientMessage struct {
	Type      ClientMessageType
	Name      string    // Join only
	Direction Direction // Move only
}

func EncodeClientMessage(b wire.Buffer, m ClientMessage) error {
	if err := b.WriteU8(uint8(m.Type)); err != nil {
		return err
	}
	switch m.Type {
	case ClientJoin:
		return EncodeString(b, m.Name)
	case ClientMove:
		return EncodeDirection(b, m.Direction)
	case ClientPlaceBomb, ClientPlaceBlock:
		return nil
	default:
		return wire.ErrBadType("unknown client message type")
	}
}

func DecodeClientMessage(b wire.Buffer) (ClientMessage, error) {
	tag, err := b.ReadU8()
	if err != nil {
		return ClientMessage{}, err
	}
	t := ClientMessageType(tag)
	if !t.valid() {
		return ClientMessage{}, wire.ErrBadType("client message tag out of range")
	}
	m := ClientMessage{Type: t}
	switch t {
	case ClientJoin:
		if m.Name, err = DecodeString(b); err != nil {
			return ClientMessage{}, err
		}
	case ClientMove:
		if m.Direction, err = DecodeDirection(b); err != nil {
			return ClientMessage{}, err
		}
	}
	return m, nil
}
