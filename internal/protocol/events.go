package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/renju-online/client-go/internal/board"
)

// Inbound actions, as tagged by the server's "action" field.
const (
	ActionOnlineCounter       = "online_counter"
	ActionGameAdded           = "game_added"
	ActionOpenGame            = "open_game"
	ActionPlayerJoined        = "player_joined"
	ActionPlayerJoinedList    = "player_joined_list"
	ActionSpectatorJoined     = "spectator_joined"
	ActionSpectatorJoinedList = "spectator_joined_list"
	ActionReady               = "ready"
	ActionGameStarted         = "game_started"
	ActionUnblockBoard        = "unblock_board"
	ActionGameRemovedList     = "game_removed_list"
	ActionGameRemoved         = "game_removed"
	ActionUpdateGameList      = "update_game_list"
	ActionUpdateGame          = "update_game"
	ActionMove                = "move"
	ActionLeftGame            = "left_game"
	ActionGameFinished        = "game_finished"
	ActionError               = "error"
)

// ServerEvent is the closed set of inbound event kinds. Unknown actions
// decode to *Unknown so the dispatcher can drop them without erroring.
type ServerEvent interface{ isServerEvent() }

type OnlineCounter struct {
	Total int `json:"total"`
}

type GameAdded struct {
	Game GameSummary `json:"game"`
}

type OpenGame struct {
	Game   GameInfo   `json:"game"`
	MyRole board.Role `json:"my_role"`
}

type PlayerJoined struct {
	Game       GameInfo `json:"game"`
	PlayerName string   `json:"player_name"`
}

type PlayerJoinedList struct {
	Game       GameSummary `json:"game"`
	PlayerName string      `json:"player_name"`
}

type SpectatorJoined struct {
	Game GameInfo `json:"game"`
}

type SpectatorJoinedList struct{}

type Ready struct {
	Game       GameInfo   `json:"game"`
	PlayerName string     `json:"player_name"`
	PlayerRole board.Role `json:"player_role"`
}

type GameStarted struct {
	Game GameInfo `json:"game"`
}

type UnblockBoard struct {
	Game GameInfo `json:"game"`
}

type GameRemovedList struct {
	GameID string `json:"game_id"`
}

type GameRemoved struct {
	GameID string `json:"game_id"`
}

type UpdateGameList struct {
	Game GameSummary `json:"game"`
}

type UpdateGame struct {
	Game GameInfo `json:"game"`
}

type MoveEvent struct {
	Game GameInfo `json:"game"`
	Move Move     `json:"move"`
}

type LeftGame struct {
	Game GameInfo `json:"game"`
}

type GameFinished struct {
	Game   GameInfo    `json:"game"`
	Result *GameResult `json:"result,omitempty"`
}

type ErrorEvent struct {
	Detail string `json:"detail"`
	Scope  string `json:"scope,omitempty"`
}

// Unknown carries an action this client does not understand.
type Unknown struct {
	Action string
}

func (*OnlineCounter) isServerEvent()       {}
func (*GameAdded) isServerEvent()           {}
func (*OpenGame) isServerEvent()            {}
func (*PlayerJoined) isServerEvent()        {}
func (*PlayerJoinedList) isServerEvent()    {}
func (*SpectatorJoined) isServerEvent()     {}
func (*SpectatorJoinedList) isServerEvent() {}
func (*Ready) isServerEvent()               {}
func (*GameStarted) isServerEvent()         {}
func (*UnblockBoard) isServerEvent()        {}
func (*GameRemovedList) isServerEvent()     {}
func (*GameRemoved) isServerEvent()         {}
func (*UpdateGameList) isServerEvent()      {}
func (*UpdateGame) isServerEvent()          {}
func (*MoveEvent) isServerEvent()           {}
func (*LeftGame) isServerEvent()            {}
func (*GameFinished) isServerEvent()        {}
func (*ErrorEvent) isServerEvent()          {}
func (*Unknown) isServerEvent()             {}

// DecodeServerEvent turns one raw frame into its event variant. Only
// malformed JSON is an error; an unrecognized action is not.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var env struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	var ev ServerEvent
	switch env.Action {
	case ActionOnlineCounter:
		ev = &OnlineCounter{}
	case ActionGameAdded:
		ev = &GameAdded{}
	case ActionOpenGame:
		ev = &OpenGame{}
	case ActionPlayerJoined:
		ev = &PlayerJoined{}
	case ActionPlayerJoinedList:
		ev = &PlayerJoinedList{}
	case ActionSpectatorJoined:
		ev = &SpectatorJoined{}
	case ActionSpectatorJoinedList:
		ev = &SpectatorJoinedList{}
	case ActionReady:
		ev = &Ready{}
	case ActionGameStarted:
		ev = &GameStarted{}
	case ActionUnblockBoard:
		ev = &UnblockBoard{}
	case ActionGameRemovedList:
		ev = &GameRemovedList{}
	case ActionGameRemoved:
		ev = &GameRemoved{}
	case ActionUpdateGameList:
		ev = &UpdateGameList{}
	case ActionUpdateGame:
		ev = &UpdateGame{}
	case ActionMove:
		ev = &MoveEvent{}
	case ActionLeftGame:
		ev = &LeftGame{}
	case ActionGameFinished:
		ev = &GameFinished{}
	case ActionError:
		ev = &ErrorEvent{}
	default:
		return &Unknown{Action: env.Action}, nil
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", env.Action, err)
	}
	return ev, nil
}
