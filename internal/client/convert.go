package client

import (
	"go.uber.org/zap"

	"github.com/renju-online/client-go/internal/board"
	"github.com/renju-online/client-go/internal/game"
	"github.com/renju-online/client-go/internal/protocol"
)

func lifecycleFromState(state string) game.Lifecycle {
	switch state {
	case "pending":
		return game.Pending
	case "finished":
		return game.Finished
	default:
		return game.Created
	}
}

func playerFromSlot(role board.Role, slot *protocol.PlayerSlot) *game.Player {
	p := &game.Player{
		ID:    slot.Player.ID,
		Name:  slot.Player.Name,
		Role:  role,
		Ready: slot.Ready,
	}
	if slot.Result != nil {
		res := game.Outcome(*slot.Result)
		p.Result = &res
	}
	return p
}

func resultFromWire(r *protocol.GameResult) *game.Result {
	if r == nil {
		return nil
	}
	return &game.Result{
		Outcome: game.Outcome(r.Result),
		Cause:   r.Cause,
		Winner:  r.Winner.Name,
	}
}

func movesFromWire(moves []protocol.Move) []board.Move {
	out := make([]board.Move, len(moves))
	for i, m := range moves {
		out[i] = board.Move{X: m.X, Y: m.Y, Role: m.Role}
	}
	return out
}

// sessionFromInfo builds a fresh session from a full game snapshot.
func sessionFromInfo(info protocol.GameInfo, myRole board.Role, log *zap.Logger) *game.Session {
	g := game.NewGame(info.ID, info.BoardSize, info.NumPlayers, game.Rules{
		TimeLimit:   info.TimeLimit,
		ClassicMode: info.ClassicMode,
		WithMyself:  info.WithMyself,
	})
	s := game.NewSession(g, myRole, log)

	for _, role := range []board.Role{board.RoleFirst, board.RoleSecond, board.RoleThird} {
		if slot := info.Slot(role); slot != nil {
			g.Players[role] = playerFromSlot(role, slot)
		}
	}
	for _, spec := range info.Spectators {
		g.Spectators[spec] = struct{}{}
	}
	s.ReplayMoves(movesFromWire(info.Moves))
	if phase := lifecycleFromState(info.State); phase != g.Phase {
		s.ApplyLifecycle(phase, resultFromWire(info.Result))
	}
	return s
}

// refreshSession reconciles an existing session with a snapshot: player
// slots are re-seated or vacated, spectators replaced, the move log
// replayed, and the lifecycle advanced if the snapshot is ahead. The
// session's local turn gate is untouched.
func refreshSession(s *game.Session, info protocol.GameInfo) {
	for _, role := range []board.Role{board.RoleFirst, board.RoleSecond, board.RoleThird} {
		slot := info.Slot(role)
		if slot == nil {
			s.ApplyPlayerLeft(role)
			continue
		}
		p := playerFromSlot(role, slot)
		if cur := s.Game.Players[role]; cur != nil && cur.ID == p.ID {
			p.CanMove = cur.CanMove
		}
		s.Game.Players[role] = p
	}

	s.Game.Spectators = make(map[string]struct{}, len(info.Spectators))
	for _, spec := range info.Spectators {
		s.Game.Spectators[spec] = struct{}{}
	}

	s.ReplayMoves(movesFromWire(info.Moves))
	if phase := lifecycleFromState(info.State); phase != s.Game.Phase {
		s.ApplyLifecycle(phase, resultFromWire(info.Result))
	}
}
