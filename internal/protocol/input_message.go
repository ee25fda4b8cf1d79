package protocol

import "robots/internal/wire"

type InputMessageType uint8

const (
	InputPlaceBomb InputMessageType = iota
	InputPlaceBlock
	InputMove
)

func (t InputMessageType) valid() bool { return t <= InputMove }

// InputMessage is what the GUI sends the client over UDP.
type InputMessage struct {
	Type      InputMessageType
	Direction Direction // Move only
}

func EncodeInputMessage(b wire.Buffer, m InputMessage) error {
	if err := b.WriteU8(uint8(m.Type)); err != nil {
		return err
	}
	switch m.Type {
	case InputMove:
		return EncodeDirection(b, m.Direction)
	case InputPlaceBomb, InputPlaceBlock:
		return nil
	default:
		return wire.ErrBadType("unknown input message type")
	}
}

func DecodeInputMessage(b wire.Buffer) (InputMessage, error) {
	tag, err := b.ReadU8()
	if err != nil {
		return InputMessage{}, err
	}
	t := InputMessageType(tag)
	if !t.valid() {
		return InputMessage{}, wire.ErrBadType("input message tag out of range")
	}
	m := InputMessage{Type: t}
	if t == InputMove {
		if m.Direction, err = DecodeDirection(b); err != nil {
			return InputMessage{}, err
		}
	}
	return m, nil
}
