package protocol

import "robots/internal/wire"

type DrawMessageType uint8

const (
	DrawLobby DrawMessageType = iota
	DrawGame
)

func (t DrawMessageType) valid() bool { return t <= DrawGame }

// DrawMessage is what the client sends the GUI over UDP: a full snapshot
// of the cumulative draw state, not a delta.
type DrawMessage struct {
	Type DrawMessageType

	ServerName      string
	PlayerCount     uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[uint8]Player

	Turn            uint16
	PlayerPositions map[uint8]Position
	Blocks          []Position
	Bombs           []Bomb
	Explosions      []Position
	Scores          map[uint8]uint32
}

func EncodeDrawMessage(b wire.Buffer, m DrawMessage) error {
	if err := b.WriteU8(uint8(m.Type)); err != nil {
		return err
	}
	switch m.Type {
	case DrawLobby:
		if err := EncodeString(b, m.ServerName); err != nil {
			return err
		}
		if err := b.WriteU8(m.PlayerCount); err != nil {
			return err
		}
		if err := b.WriteU16(m.SizeX); err != nil {
			return err
		}
		if err := b.WriteU16(m.SizeY); err != nil {
			return err
		}
		if err := b.WriteU16(m.GameLength); err != nil {
			return err
		}
		if err := b.WriteU16(m.ExplosionRadius); err != nil {
			return err
		}
		if err := b.WriteU16(m.BombTimer); err != nil {
			return err
		}
		return EncodeMap(b, m.Players, lessU8, encodeU8, EncodePlayer)
	case DrawGame:
		if err := EncodeString(b, m.ServerName); err != nil {
			return err
		}
		if err := b.WriteU16(m.SizeX); err != nil {
			return err
		}
		if err := b.WriteU16(m.SizeY); err != nil {
			return err
		}
		if err := b.WriteU16(m.GameLength); err != nil {
			return err
		}
		if err := b.WriteU16(m.Turn); err != nil {
			return err
		}
		if err := EncodeMap(b, m.Players, lessU8, encodeU8, EncodePlayer); err != nil {
			return err
		}
		if err := EncodeMap(b, m.PlayerPositions, lessU8, encodeU8, EncodePosition); err != nil {
			return err
		}
		if err := EncodeList(b, m.Blocks, EncodePosition); err != nil {
			return err
		}
		if err := EncodeList(b, m.Bombs, EncodeBomb); err != nil {
			return err
		}
		if err := EncodeList(b, m.Explosions, EncodePosition); err != nil {
			return err
		}
		return EncodeMap(b, m.Scores, lessU8, encodeU8, encodeU32)
	default:
		return wire.ErrBadType("unknown draw message type")
	}
}

func DecodeDrawMessage(b wire.Buffer) (DrawMessage, error) {
	tag, err := b.ReadU8()
	if err != nil {
		return DrawMessage{}, err
	}
	t := DrawMessageType(tag)
	if !t.valid() {
		return DrawMessage{}, wire.ErrBadType("draw message tag out of range")
	}
	m := DrawMessage{Type: t}
	switch t {
	case DrawLobby:
		if m.ServerName, err = DecodeString(b); err != nil {
			return DrawMessage{}, err
		}
		if m.PlayerCount, err = b.ReadU8(); err != nil {
			return DrawMessage{}, err
		}
		if m.SizeX, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.SizeY, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.GameLength, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.ExplosionRadius, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.BombTimer, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.Players, err = DecodeMap(b, decodeU8, DecodePlayer); err != nil {
			return DrawMessage{}, err
		}
	case DrawGame:
		if m.ServerName, err = DecodeString(b); err != nil {
			return DrawMessage{}, err
		}
		if m.SizeX, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.SizeY, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.GameLength, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.Turn, err = b.ReadU16(); err != nil {
			return DrawMessage{}, err
		}
		if m.Players, err = DecodeMap(b, decodeU8, DecodePlayer); err != nil {
			return DrawMessage{}, err
		}
		if m.PlayerPositions, err = DecodeMap(b, decodeU8, DecodePosition); err != nil {
			return DrawMessage{}, err
		}
		if m.Blocks, err = DecodeList(b, DecodePosition); err != nil {
			return DrawMessage{}, err
		}
		if m.Bombs, err = DecodeList(b, DecodeBomb); err != nil {
			return DrawMessage{}, err
		}
		if m.Explosions, err = DecodeList(b, DecodePosition); err != nil {
			return DrawMessage{}, err
		}
		if m.Scores, err = DecodeMap(b, decodeU8, decodeU32); err != nil {
			return DrawMessage{}, err
		}
	}
	return m, nil
}
