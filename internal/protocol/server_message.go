package protocol

import "robots/internal/wire"

type ServerMessageType uint8

const (
	ServerHello ServerMessageType = iota
	ServerAcceptedPlayer
	ServerGameStarted
	ServerTurn
	ServerGameEnded
)

func (t ServerMessageType) valid() bool { return t <= ServerGameEnded }

// ServerMessage is what the server sends every client over TCP.
type ServerMessage struct {
	Type ServerMessageType

	// Hello
	ServerName      string
	PlayerCount     uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16

	// AcceptedPlayer
	PlayerID uint8
	Player   Player

	// GameStarted
	Players map[uint8]Player

	// Turn
	Turn   uint16
	Events []Event

	// GameEnded
	Scores map[uint8]uint32
}

func EncodeServerMessage(b wire.Buffer, m ServerMessage) error {
	if err := b.WriteU8(uint8(m.Type)); err != nil {
		return err
	}
	switch m.Type {
	case ServerHello:
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
		return b.WriteU16(m.BombTimer)
	case ServerAcceptedPlayer:
		if err := b.WriteU8(m.PlayerID); err != nil {
			return err
		}
		return EncodePlayer(b, m.Player)
	case ServerGameStarted:
		return EncodeMap(b, m.Players, lessU8, encodeU8, EncodePlayer)
	case ServerTurn:
		if err := b.WriteU16(m.Turn); err != nil {
			return err
		}
		return EncodeList(b, m.Events, EncodeEvent)
	case ServerGameEnded:
		return EncodeMap(b, m.Scores, lessU8, encodeU8, encodeU32)
	default:
		return wire.ErrBadType("unknown server message type")
	}
}

func DecodeServerMessage(b wire.Buffer) (ServerMessage, error) {
	tag, err := b.ReadU8()
	if err != nil {
		return ServerMessage{}, err
	}
	t := ServerMessageType(tag)
	if !t.valid() {
		return ServerMessage{}, wire.ErrBadType("server message tag out of range")
	}
	m := ServerMessage{Type: t}
	switch t {
	case ServerHello:
		if m.ServerName, err = DecodeString(b); err != nil {
			return ServerMessage{}, err
		}
		if m.PlayerCount, err = b.ReadU8(); err != nil {
			return ServerMessage{}, err
		}
		if m.SizeX, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
		if m.SizeY, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
		if m.GameLength, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
		if m.ExplosionRadius, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
		if m.BombTimer, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
	case ServerAcceptedPlayer:
		if m.PlayerID, err = b.ReadU8(); err != nil {
			return ServerMessage{}, err
		}
		if m.Player, err = DecodePlayer(b); err != nil {
			return ServerMessage{}, err
		}
	case ServerGameStarted:
		if m.Players, err = DecodeMap(b, decodeU8, DecodePlayer); err != nil {
			return ServerMessage{}, err
		}
	case ServerTurn:
		if m.Turn, err = b.ReadU16(); err != nil {
			return ServerMessage{}, err
		}
		if m.Events, err = DecodeList(b, DecodeEvent); err != nil {
			return ServerMessage{}, err
		}
	case ServerGameEnded:
		if m.Scores, err = DecodeMap(b, decodeU8, decodeU32); err != nil {
			return ServerMessage{}, err
		}
	}
	return m, nil
}
