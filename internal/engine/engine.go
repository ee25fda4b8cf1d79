package engine

import (
	"robots/internal/protocol"
	"robots/internal/rng"
)

type Phase int

const (
	Lobby Phase = iota
	Game
)

type joinedPlayer struct {
	connID   uint64
	name     string
	address  string
	position posXY
}

// PendingProvider lets the engine pull each connection's single latest
// unconsumed ClientMessage without knowing anything about sockets.
type PendingProvider interface {
	TakePending(connID uint64) (protocol.ClientMessage, bool)
}

// Engine is the single-writer authoritative simulation. It is not
// goroutine-safe on its own; servernet serializes all calls through the
// tick thread / lobby collector, exactly as the source's single-writer
// discipline requires.
type Engine struct {
	cfg    Config
	random *rng.LCG

	phase Phase

	joined []joinedPlayer // index == playerID

	blocks          map[posXY]struct{}
	bombs           bombQueue
	nextBombID      uint32
	scores          map[uint8]uint32
	playersByCell   map[posXY]map[uint8]struct{}
	destroyedThisTk map[uint8]struct{}
}

func New(cfg Config) *Engine {
	return &Engine{
		cfg:           cfg,
		random:        rng.New(cfg.Seed),
		phase:         Lobby,
		blocks:        map[posXY]struct{}{},
		scores:        map[uint8]uint32{},
		playersByCell: map[posXY]map[uint8]struct{}{},
	}
}

func (e *Engine) Phase() Phase { return e.phase }

// Hello builds the message sent to every newly accepted connection.
func (e *Engine) Hello() protocol.ServerMessage {
	return protocol.ServerMessage{
		Type:            protocol.ServerHello,
		ServerName:      e.cfg.ServerName,
		PlayerCount:     e.cfg.PlayerCount,
		SizeX:           e.cfg.SizeX,
		SizeY:           e.cfg.SizeY,
		GameLength:      e.cfg.GameLength,
		ExplosionRadius: e.cfg.ExplosionRadius,
		BombTimer:       e.cfg.BombTimer,
	}
}

func (e *Engine) ReadyToStart() bool {
	return len(e.joined) >= int(e.cfg.PlayerCount)
}

// JoinPlayer assigns the next playerID to connID and returns the
// AcceptedPlayer broadcast. Must only be called while in Lobby and before
// ReadyToStart(); callers are responsible for de-duplicating Joins per
// connection.
func (e *Engine) JoinPlayer(connID uint64, name, address string) (pid uint8, msg protocol.ServerMessage) {
	pid = uint8(len(e.joined))
	e.joined = append(e.joined, joinedPlayer{connID: connID, name: name, address: address})
	player := protocol.Player{Name: name, Address: address}
	return pid, protocol.ServerMessage{
		Type:     protocol.ServerAcceptedPlayer,
		PlayerID: pid,
		Player:   player,
	}
}

// StartGame transitions Lobby->Game and builds the GameStarted and Turn 0
// messages (initial player placement, then initial block placement).
func (e *Engine) StartGame() (gameStarted, turn0 protocol.ServerMessage) {
	e.phase = Game

	players := make(map[uint8]protocol.Player, len(e.joined))
	for i, jp := range e.joined {
		players[uint8(i)] = protocol.Player{Name: jp.name, Address: jp.address}
	}

	var events []protocol.Event
	for i := range e.joined {
		pos := e.randomPosition()
		e.joined[i].position = pos
		e.addPlayerToCell(uint8(i), pos)
		events = append(events, protocol.Event{
			Type:     protocol.EventPlayerMoved,
			PlayerID: uint8(i),
			Position: toWirePos(pos),
		})
	}
	for i := uint16(0); i < e.cfg.InitialBlocks; i++ {
		pos := e.randomPosition()
		if _, blocked := e.blocks[pos]; blocked {
			continue
		}
		e.blocks[pos] = struct{}{}
		events = append(events, protocol.Event{Type: protocol.EventBlockPlaced, Position: toWirePos(pos)})
	}

	return protocol.ServerMessage{Type: protocol.ServerGameStarted, Players: players},
		protocol.ServerMessage{Type: protocol.ServerTurn, Turn: 0, Events: events}
}

func (e *Engine) randomPosition() posXY {
	return posXY{
		X: e.random.Intn(e.cfg.SizeX),
		Y: e.random.Intn(e.cfg.SizeY),
	}
}

func toWirePos(p posXY) protocol.Position { return protocol.Position{X: p.X, Y: p.Y} }

func (e *Engine) addPlayerToCell(pid uint8, pos posXY) {
	set, ok := e.playersByCell[pos]
	if !ok {
		set = map[uint8]struct{}{}
		e.playersByCell[pos] = set
	}
	set[pid] = struct{}{}
}

func (e *Engine) removePlayerFromCell(pid uint8, pos posXY) {
	set, ok := e.playersByCell[pos]
	if !ok {
		return
	}
	delete(set, pid)
	if len(set) == 0 {
		delete(e.playersByCell, pos)
	}
}

// Tick advances the simulation by one turn: explosions first, then player
// actions in ascending pid order.
func (e *Engine) Tick(turn uint16, pending PendingProvider) protocol.ServerMessage {
	var events []protocol.Event
	e.destroyedThisTk = map[uint8]struct{}{}

	events = append(events, e.processExplosions(turn)...)

	for pid := range e.joined {
		events = append(events, e.processPlayerAction(uint8(pid), turn, pending)...)
	}

	return protocol.ServerMessage{Type: protocol.ServerTurn, Turn: turn, Events: events}
}

func (e *Engine) processExplosions(turn uint16) []protocol.Event {
	var events []protocol.Event
	destroyedBlocks := map[posXY]struct{}{}

	for {
		top, ok := e.bombs.peek()
		if !ok || top.explodeTurn != turn {
			break
		}
		bomb := e.bombs.pop()

		ev := protocol.Event{Type: protocol.EventBombExploded, BombID: bomb.bombID}
		e.rayExplode(bomb.position, &ev, destroyedBlocks)
		events = append(events, ev)
	}

	for pos := range destroyedBlocks {
		delete(e.blocks, pos)
	}
	return events
}

// rayExplode processes the bomb's own cell, then rays out in all four axial
// directions, each stopping at (and including) the first block. If the
// bomb's own cell holds a block, the explosion covers that cell only.
func (e *Engine) rayExplode(center posXY, ev *protocol.Event, destroyedBlocks map[posXY]struct{}) {
	cont := e.explodeCell(center, ev, destroyedBlocks)
	if !cont {
		return
	}

	radius := int(e.cfg.ExplosionRadius)
	type step struct{ dx, dy int }
	for _, s := range []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		x, y := int(center.X), int(center.Y)
		for i := 0; i < radius; i++ {
			x += s.dx
			y += s.dy
			if x < 0 || y < 0 || x >= int(e.cfg.SizeX) || y >= int(e.cfg.SizeY) {
				break
			}
			if !e.explodeCell(posXY{X: uint16(x), Y: uint16(y)}, ev, destroyedBlocks) {
				break
			}
		}
	}
}

// explodeCell destroys players/blocks on one cell and reports whether the
// ray should continue past it.
func (e *Engine) explodeCell(cell posXY, ev *protocol.Event, destroyedBlocks map[posXY]struct{}) bool {
	for pid := range e.playersByCell[cell] {
		ev.PlayersDestroyed = append(ev.PlayersDestroyed, pid)
		e.destroyedThisTk[pid] = struct{}{}
	}
	if _, blocked := e.blocks[cell]; blocked {
		ev.BlocksDestroyed = append(ev.BlocksDestroyed, toWirePos(cell))
		destroyedBlocks[cell] = struct{}{}
		return false
	}
	return true
}

func (e *Engine) processPlayerAction(pid uint8, turn uint16, pending PendingProvider) []protocol.Event {
	jp := &e.joined[pid]

	if _, destroyed := e.destroyedThisTk[pid]; destroyed {
		pending.TakePending(jp.connID)
		oldPos := jp.position
		newPos := e.randomPosition()
		e.removePlayerFromCell(pid, oldPos)
		e.addPlayerToCell(pid, newPos)
		jp.position = newPos
		e.scores[pid]++
		return []protocol.Event{{Type: protocol.EventPlayerMoved, PlayerID: pid, Position: toWirePos(newPos)}}
	}

	msg, ok := pending.TakePending(jp.connID)
	if !ok {
		return nil
	}

	switch msg.Type {
	case protocol.ClientPlaceBomb:
		bombID := e.nextBombID
		e.nextBombID++
		e.bombs.push(scheduledBomb{explodeTurn: turn + e.cfg.BombTimer, bombID: bombID, position: jp.position})
		return []protocol.Event{{Type: protocol.EventBombPlaced, BombID: bombID, Position: toWirePos(jp.position)}}
	case protocol.ClientPlaceBlock:
		if _, blocked := e.blocks[jp.position]; blocked {
			return nil
		}
		e.blocks[jp.position] = struct{}{}
		return []protocol.Event{{Type: protocol.EventBlockPlaced, Position: toWirePos(jp.position)}}
	case protocol.ClientMove:
		target, ok := moveTarget(jp.position, msg.Direction, e.cfg.SizeX, e.cfg.SizeY)
		if !ok {
			return nil
		}
		if _, blocked := e.blocks[target]; blocked {
			return nil
		}
		e.removePlayerFromCell(pid, jp.position)
		e.addPlayerToCell(pid, target)
		jp.position = target
		return []protocol.Event{{Type: protocol.EventPlayerMoved, PlayerID: pid, Position: toWirePos(target)}}
	}
	return nil
}

// moveTarget computes the destination cell for a move, reporting false if
// it would fall outside the board.
func moveTarget(from posXY, d protocol.Direction, sizeX, sizeY uint16) (posXY, bool) {
	x, y := int32(from.X), int32(from.Y)
	switch d {
	case protocol.Up:
		y++
	case protocol.Down:
		y--
	case protocol.Left:
		x--
	case protocol.Right:
		x++
	}
	if x < 0 || y < 0 || x >= int32(sizeX) || y >= int32(sizeY) {
		return posXY{}, false
	}
	return posXY{X: uint16(x), Y: uint16(y)}, true
}

// GameEnded builds the end-of-game broadcast; callers must call Reset
// afterward to return to Lobby.
func (e *Engine) GameEnded() protocol.ServerMessage {
	scores := make(map[uint8]uint32, len(e.scores))
	for pid, s := range e.scores {
		scores[pid] = s
	}
	for i := range e.joined {
		if _, ok := scores[uint8(i)]; !ok {
			scores[uint8(i)] = 0
		}
	}
	return protocol.ServerMessage{Type: protocol.ServerGameEnded, Scores: scores}
}

// Reset clears all game state and returns to Lobby, ready to collect a new
// round of joins.
func (e *Engine) Reset() {
	e.phase = Lobby
	e.joined = nil
	e.blocks = map[posXY]struct{}{}
	e.bombs = nil
	e.nextBombID = 0
	e.scores = map[uint8]uint32{}
	e.playersByCell = map[posXY]map[uint8]struct{}{}
	e.destroyedThisTk = nil
}

func (e *Engine) PlayerPosition(pid uint8) (protocol.Position, bool) {
	if int(pid) >= len(e.joined) {
		return protocol.Position{}, false
	}
	return toWirePos(e.joined[pid].position), true
}
