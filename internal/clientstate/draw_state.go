// Package clientstate owns the client's cumulative "draw state": the
// derived view built by replaying server turn deltas, since the server
// itself only ever sends what changed.
package clientstate

import "robots/internal/protocol"

type Phase int

const (
	Lobby Phase = iota
	Game
)

// DrawState is the client-owned struct that used to live in function-static
// accumulators on the source side; here it is an explicit, owned value
// passed by reference into Fold.
type DrawState struct {
	Phase Phase

	ServerName      string
	PlayerCount     uint8
	SizeX, SizeY    uint16
	GameLength      uint16
	ExplosionRadius uint16
	BombTimer       uint16
	Players         map[uint8]protocol.Player

	Turn            uint16
	ActiveBombs     map[uint32]protocol.Bomb
	PlayerPositions map[uint8]protocol.Position
	Blocks          map[protocol.Position]struct{}
	Explosions      map[protocol.Position]struct{}
	Scores          map[uint8]uint32
}

func New() *DrawState {
	return &DrawState{
		Phase:           Lobby,
		Players:         map[uint8]protocol.Player{},
		ActiveBombs:     map[uint32]protocol.Bomb{},
		PlayerPositions: map[uint8]protocol.Position{},
		Blocks:          map[protocol.Position]struct{}{},
		Explosions:      map[protocol.Position]struct{}{},
		Scores:          map[uint8]uint32{},
	}
}

// Fold applies one ServerMessage to the draw state in place, following the
// server->GUI folding rules: Hello copies scalars, AcceptedPlayer appends a
// player, GameStarted resets into Game phase, Turn replays events (bomb
// timers decrement before this turn's events are applied), GameEnded resets
// into Lobby phase.
func (d *DrawState) Fold(m protocol.ServerMessage) {
	switch m.Type {
	case protocol.ServerHello:
		d.foldHello(m)
	case protocol.ServerAcceptedPlayer:
		d.foldAcceptedPlayer(m)
	case protocol.ServerGameStarted:
		d.foldGameStarted(m)
	case protocol.ServerTurn:
		d.foldTurn(m)
	case protocol.ServerGameEnded:
		d.foldGameEnded(m)
	}
}

func (d *DrawState) foldHello(m protocol.ServerMessage) {
	d.Phase = Lobby
	d.ServerName = m.ServerName
	d.PlayerCount = m.PlayerCount
	d.SizeX = m.SizeX
	d.SizeY = m.SizeY
	d.GameLength = m.GameLength
	d.ExplosionRadius = m.ExplosionRadius
	d.BombTimer = m.BombTimer
}

func (d *DrawState) foldAcceptedPlayer(m protocol.ServerMessage) {
	d.Players[m.PlayerID] = m.Player
	d.Scores[m.PlayerID] = 0
}

func (d *DrawState) foldGameStarted(m protocol.ServerMessage) {
	d.Phase = Game
	d.Players = m.Players
	d.PlayerPositions = map[uint8]protocol.Position{}
	d.Blocks = map[protocol.Position]struct{}{}
	d.Scores = map[uint8]uint32{}
	for pid := range m.Players {
		d.Scores[pid] = 0
	}
}

func (d *DrawState) foldTurn(m protocol.ServerMessage) {
	// Step 1: decrement live bomb timers before applying this turn's
	// events, so a bomb placed this turn keeps its full timer.
	for id, b := range d.ActiveBombs {
		if b.Timer > 0 {
			b.Timer--
			d.ActiveBombs[id] = b
		}
	}

	// Step 2: clear explosions.
	d.Explosions = map[protocol.Position]struct{}{}

	// Step 3.
	d.Turn = m.Turn

	turnDestroyedPlayers := map[uint8]struct{}{}
	turnDestroyedBlocks := map[protocol.Position]struct{}{}

	// Step 4: process events in order.
	for _, e := range m.Events {
		switch e.Type {
		case protocol.EventBombPlaced:
			d.ActiveBombs[e.BombID] = protocol.Bomb{Position: e.Position, Timer: d.BombTimer}
		case protocol.EventBombExploded:
			bomb, ok := d.ActiveBombs[e.BombID]
			if ok {
				d.rayCastExplosion(bomb.Position)
			}
			for _, pid := range e.PlayersDestroyed {
				turnDestroyedPlayers[pid] = struct{}{}
			}
			for _, pos := range e.BlocksDestroyed {
				turnDestroyedBlocks[pos] = struct{}{}
			}
			delete(d.ActiveBombs, e.BombID)
		case protocol.EventPlayerMoved:
			d.PlayerPositions[e.PlayerID] = e.Position
		case protocol.EventBlockPlaced:
			d.Blocks[e.Position] = struct{}{}
		}
	}

	// Step 6: score destroyed players.
	for pid := range turnDestroyedPlayers {
		d.Scores[pid]++
	}

	// Step 7: remove destroyed blocks.
	for pos := range turnDestroyedBlocks {
		delete(d.Blocks, pos)
	}
}

// rayCastExplosion adds the bomb's own cell and, in each of the four axial
// directions up to ExplosionRadius cells, cells up to and including the
// first block, to the explosions set. Evaluated against the blocks set as
// it stood before this turn's block removals.
func (d *DrawState) rayCastExplosion(pos protocol.Position) {
	d.Explosions[pos] = struct{}{}

	type step struct{ dx, dy int }
	for _, s := range []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		x, y := int(pos.X), int(pos.Y)
		for i := 0; i < int(d.ExplosionRadius); i++ {
			x += s.dx
			y += s.dy
			if x < 0 || y < 0 || x >= int(d.SizeX) || y >= int(d.SizeY) {
				break
			}
			cell := protocol.Position{X: uint16(x), Y: uint16(y)}
			d.Explosions[cell] = struct{}{}
			if _, blocked := d.Blocks[cell]; blocked {
				break
			}
		}
	}
}

func (d *DrawState) foldGameEnded(m protocol.ServerMessage) {
	d.Phase = Lobby
	d.ActiveBombs = map[uint32]protocol.Bomb{}
	d.PlayerPositions = map[uint8]protocol.Position{}
	d.Blocks = map[protocol.Position]struct{}{}
	d.Explosions = map[protocol.Position]struct{}{}
	d.Scores = m.Scores
}

// ToMessage builds the full-snapshot DrawMessage the client forwards to the
// GUI after applying a non-GameStarted server message.
func (d *DrawState) ToMessage() protocol.DrawMessage {
	if d.Phase == Lobby {
		return protocol.DrawMessage{
			Type:            protocol.DrawLobby,
			ServerName:      d.ServerName,
			PlayerCount:     d.PlayerCount,
			SizeX:           d.SizeX,
			SizeY:           d.SizeY,
			GameLength:      d.GameLength,
			ExplosionRadius: d.ExplosionRadius,
			BombTimer:       d.BombTimer,
			Players:         copyPlayers(d.Players),
		}
	}

	bombs := make([]protocol.Bomb, 0, len(d.ActiveBombs))
	for _, b := range d.ActiveBombs {
		bombs = append(bombs, b)
	}
	blocks := make([]protocol.Position, 0, len(d.Blocks))
	for pos := range d.Blocks {
		blocks = append(blocks, pos)
	}
	explosions := make([]protocol.Position, 0, len(d.Explosions))
	for pos := range d.Explosions {
		explosions = append(explosions, pos)
	}

	return protocol.DrawMessage{
		Type:            protocol.DrawGame,
		ServerName:      d.ServerName,
		SizeX:           d.SizeX,
		SizeY:           d.SizeY,
		GameLength:      d.GameLength,
		Turn:            d.Turn,
		Players:         copyPlayers(d.Players),
		PlayerPositions: copyPositions(d.PlayerPositions),
		Blocks:          blocks,
		Bombs:           bombs,
		Explosions:      explosions,
		Scores:          copyScores(d.Scores),
	}
}

func copyPlayers(m map[uint8]protocol.Player) map[uint8]protocol.Player {
	out := make(map[uint8]protocol.Player, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPositions(m map[uint8]protocol.Position) map[uint8]protocol.Position {
	out := make(map[uint8]protocol.Position, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyScores(m map[uint8]uint32) map[uint8]uint32 {
	out := make(map[uint8]uint32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
