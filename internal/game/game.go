package game

import (
	"go.uber.org/zap"

	"github.com/renju-online/client-go/internal/board"
)

// Lifecycle is the forward-only phase of a game. Removed is an
// administrative cancellation, reachable only before the game finishes.
type Lifecycle int

const (
	Created Lifecycle = iota + 1
	Pending
	Finished
	Removed
)

func (l Lifecycle) String() string {
	switch l {
	case Created:
		return "created"
	case Pending:
		return "pending"
	case Finished:
		return "finished"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Terminal reports whether no further lifecycle transition is possible.
func (l Lifecycle) Terminal() bool { return l == Finished || l == Removed }

func forwardLegal(from, to Lifecycle) bool {
	if to == Removed {
		return from == Created || from == Pending
	}
	return to > from
}

// Outcome is the server's numeric result code for a player. Only win and
// draw are documented by the server; other values pass through opaque.
type Outcome int

const (
	OutcomeWin  Outcome = 1
	OutcomeDraw Outcome = 2
)

// Result describes how a finished game ended.
type Result struct {
	Outcome Outcome
	Cause   string
	Winner  string
}

type Player struct {
	ID      string
	Name    string
	Role    board.Role
	Ready   bool
	CanMove bool
	Result  *Outcome
}

type Rules struct {
	TimeLimit   int
	ClassicMode bool
	WithMyself  bool
}

// Game is the last-known server truth about one game.
type Game struct {
	ID         string
	BoardSize  int
	NumPlayers int
	Players    map[board.Role]*Player
	Spectators map[string]struct{}
	Board      *board.Board
	Phase      Lifecycle
	Rules      Rules
	Result     *Result
}

func NewGame(id string, boardSize, numPlayers int, rules Rules) *Game {
	return &Game{
		ID:         id,
		BoardSize:  boardSize,
		NumPlayers: numPlayers,
		Players:    make(map[board.Role]*Player),
		Spectators: make(map[string]struct{}),
		Board:      board.New(boardSize),
		Phase:      Created,
		Rules:      rules,
	}
}

// Session is the client-local view of one game: the server truth plus the
// local turn gate. The server stays authoritative; allowMoves only keeps
// the client from sending a move before its turn was granted.
type Session struct {
	Game   *Game
	MyRole board.Role

	allowMoves bool
	log        *zap.Logger
}

func NewSession(g *Game, myRole board.Role, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{Game: g, MyRole: myRole, log: log}
}

func (s *Session) AllowMoves() bool { return s.allowMoves }

// CanSubmitMove reports whether a move intent for (x, y) may be sent:
// the turn must have been granted, the coordinates must be on the board
// and the target cell must be empty.
func (s *Session) CanSubmitMove(x, y int) bool {
	if !s.Game.Board.InBounds(x, y) {
		return false
	}
	return s.allowMoves && s.Game.Board.CellAt(x, y) == board.Empty
}

// GrantTurn opens the turn gate. Only seated players of an active game
// get a turn; anything else is ignored.
func (s *Session) GrantTurn() {
	if s.Game.Phase != Pending {
		s.log.Warn("turn granted outside active game, ignoring",
			zap.String("game_id", s.Game.ID),
			zap.Stringer("phase", s.Game.Phase))
		return
	}
	if !s.MyRole.IsPlayer() {
		return
	}
	s.allowMoves = true
}

// CloseTurn drops the local move permission. Called once the move intent
// leaves for the server; the next unblock re-opens the gate.
func (s *Session) CloseTurn() { s.allowMoves = false }

// ApplyServerMove writes a server-confirmed move onto the board.
// Duplicate delivery of the same move is a no-op.
func (s *Session) ApplyServerMove(m board.Move) {
	if s.Game.Phase != Pending {
		s.log.Warn("move for inactive game, ignoring",
			zap.String("game_id", s.Game.ID),
			zap.Stringer("phase", s.Game.Phase))
		return
	}
	if s.Game.Board.CellAt(m.X, m.Y) == m.Role {
		// Already applied; the server re-sent it.
		return
	}
	if err := s.Game.Board.Place(m.X, m.Y, m.Role); err != nil {
		s.log.Warn("illegal server move, ignoring",
			zap.String("game_id", s.Game.ID),
			zap.Int("x", m.X), zap.Int("y", m.Y), zap.Error(err))
		return
	}
	s.allowMoves = false
	if p := s.Game.Players[m.Role]; p != nil {
		p.CanMove = false
	}
}

func (s *Session) ApplyReady(role board.Role) {
	p := s.Game.Players[role]
	if p == nil {
		s.log.Warn("ready for unknown player, ignoring",
			zap.String("game_id", s.Game.ID), zap.String("role", string(role)))
		return
	}
	p.Ready = true
}

// ApplyPlayerJoined seats a player. Roles are immutable once assigned:
// a join for an occupied role by someone else is ignored.
func (s *Session) ApplyPlayerJoined(p *Player) {
	if cur := s.Game.Players[p.Role]; cur != nil && cur.ID != p.ID {
		s.log.Warn("role already taken, ignoring join",
			zap.String("game_id", s.Game.ID),
			zap.String("role", string(p.Role)), zap.String("player", p.Name))
		return
	}
	s.Game.Players[p.Role] = p
}

func (s *Session) ApplyPlayerLeft(role board.Role) {
	delete(s.Game.Players, role)
}

func (s *Session) ApplySpectatorJoined(id string) {
	s.Game.Spectators[id] = struct{}{}
}

// ApplyLifecycle advances the game phase. Backward or duplicate
// transitions are logged and ignored, never fatal.
func (s *Session) ApplyLifecycle(to Lifecycle, result *Result) {
	if !forwardLegal(s.Game.Phase, to) {
		s.log.Warn("illegal lifecycle transition, ignoring",
			zap.String("game_id", s.Game.ID),
			zap.Stringer("from", s.Game.Phase), zap.Stringer("to", to))
		return
	}
	s.Game.Phase = to
	switch to {
	case Pending:
		// The first player opens the game.
		if p := s.Game.Players[board.RoleFirst]; p != nil {
			p.CanMove = true
		}
	case Finished, Removed:
		s.allowMoves = false
		s.Game.Result = result
	}
}

// ReplayMoves applies a server move log in order, skipping moves already
// on the board. Used when opening or resyncing a session from a snapshot.
func (s *Session) ReplayMoves(moves []board.Move) {
	for _, m := range moves {
		if s.Game.Board.CellAt(m.X, m.Y) != board.Empty {
			continue
		}
		if err := s.Game.Board.Place(m.X, m.Y, m.Role); err != nil {
			s.log.Warn("bad move in snapshot, skipping",
				zap.String("game_id", s.Game.ID),
				zap.Int("x", m.X), zap.Int("y", m.Y), zap.Error(err))
		}
	}
}
