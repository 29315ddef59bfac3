package protocol

import (
	"time"

	"github.com/renju-online/client-go/internal/board"
)

// Wire representations of server payloads. Field names follow the server
// schemas verbatim; anything richer lives in internal/game.

type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerSlot struct {
	Player UserRef `json:"player"`
	Ready  bool    `json:"ready"`
	Result *int    `json:"result,omitempty"`
}

type Move struct {
	X    int        `json:"x_coord"`
	Y    int        `json:"y_coord"`
	Role board.Role `json:"player_role"`
}

type GameResult struct {
	Result int     `json:"result"`
	Cause  string  `json:"cause,omitempty"`
	Winner UserRef `json:"winner"`
}

// GameSummary is the reduced game projection used by the lobby list.
// State is one of "created", "pending", "finished".
type GameSummary struct {
	ID          string      `json:"id"`
	State       string      `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	Player1     *PlayerSlot `json:"player_1,omitempty"`
	Player2     *PlayerSlot `json:"player_2,omitempty"`
	Player3     *PlayerSlot `json:"player_3,omitempty"`
	NumPlayers  int         `json:"num_players"`
	BoardSize   int         `json:"board_size"`
	TimeLimit   int         `json:"time_limit"`
	ClassicMode bool        `json:"classic_mode"`
	WithMyself  bool        `json:"with_myself"`
	Spectators  []string    `json:"spectators"`
}

// GameInfo is the full game payload carried by in-session events; it adds
// the move log for board replay.
type GameInfo struct {
	GameSummary
	Moves  []Move      `json:"moves,omitempty"`
	Result *GameResult `json:"result,omitempty"`
}

// Slot returns the player slot for a seated role, or nil.
func (s *GameSummary) Slot(role board.Role) *PlayerSlot {
	switch role {
	case board.RoleFirst:
		return s.Player1
	case board.RoleSecond:
		return s.Player2
	case board.RoleThird:
		return s.Player3
	}
	return nil
}
