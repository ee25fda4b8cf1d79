package protocol

import "robots/internal/wire"

type EventType uint8

const (
	EventBombPlaced EventType = iota
	EventBombExploded
	EventPlayerMoved
	EventBlockPlaced
)

func (t EventType) valid() bool { return t <= EventBlockPlaced }

// Event is a tagged union over the four kinds of thing that can happen in
// a turn. Only the fields relevant to Type are meaningful.
type Event struct {
	Type EventType

	BombID uint32
	Position Position

	PlayersDestroyed []uint8
	BlocksDestroyed  []Position

	PlayerID uint8
}

func EncodeEvent(b wire.Buffer, e Event) error {
	if err := b.WriteU8(uint8(e.Type)); err != nil {
		return err
	}
	switch e.Type {
	case EventBombPlaced:
		if err := b.WriteU32(e.BombID); err != nil {
			return err
		}
		return EncodePosition(b, e.Position)
	case EventBombExploded:
		if err := b.WriteU32(e.BombID); err != nil {
			return err
		}
		if err := EncodeList(b, e.PlayersDestroyed, encodeU8); err != nil {
			return err
		}
		return EncodeList(b, e.BlocksDestroyed, EncodePosition)
	case EventPlayerMoved:
		if err := b.WriteU8(e.PlayerID); err != nil {
			return err
		}
		return EncodePosition(b, e.Position)
	case EventBlockPlaced:
		return EncodePosition(b, e.Position)
	default:
		return wire.ErrBadType("unknown event type")
	}
}

func DecodeEvent(b wire.Buffer) (Event, error) {
	tag, err := b.ReadU8()
	if err != nil {
		return Event{}, err
	}
	t := EventType(tag)
	if !t.valid() {
		return Event{}, wire.ErrBadType("event tag out of range")
	}
	e := Event{Type: t}
	switch t {
	case EventBombPlaced:
		if e.BombID, err = b.ReadU32(); err != nil {
			return Event{}, err
		}
		if e.Position, err = DecodePosition(b); err != nil {
			return Event{}, err
		}
	case EventBombExploded:
		if e.BombID, err = b.ReadU32(); err != nil {
			return Event{}, err
		}
		if e.PlayersDestroyed, err = DecodeList(b, decodeU8); err != nil {
			return Event{}, err
		}
		if e.BlocksDestroyed, err = DecodeList(b, DecodePosition); err != nil {
			return Event{}, err
		}
	case EventPlayerMoved:
		if e.PlayerID, err = b.ReadU8(); err != nil {
			return Event{}, err
		}
		if e.Position, err = DecodePosition(b); err != nil {
			return Event{}, err
		}
	case EventBlockPlaced:
		if e.Position, err = DecodePosition(b); err != nil {
			return Event{}, err
		}
	}
	return e, nil
}
