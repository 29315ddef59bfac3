package protocol

import "encoding/json"

// Intent is a locally validated user action queued for transmission.
// There is no request/response correlation on the wire; Confirms names
// the inbound action whose arrival acknowledges the intent.
type Intent interface {
	isIntent()
	Action() string
	Confirms() string
}

type ReadyIntent struct {
	GameID string `json:"game_id"`
}

type MoveIntent struct {
	GameID string `json:"game_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type LeaveIntent struct {
	GameID string `json:"game_id"`
}

type JoinGameIntent struct {
	GameID string `json:"game_id"`
}

type GameMode struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type CreateGameIntent struct {
	IsPrivate bool       `json:"is_private"`
	Modes     []GameMode `json:"modes"`
}

func (*ReadyIntent) isIntent()      {}
func (*MoveIntent) isIntent()       {}
func (*LeaveIntent) isIntent()      {}
func (*JoinGameIntent) isIntent()   {}
func (*CreateGameIntent) isIntent() {}

func (*ReadyIntent) Action() string      { return "ready" }
func (*MoveIntent) Action() string       { return "move" }
func (*LeaveIntent) Action() string      { return "leave" }
func (*JoinGameIntent) Action() string   { return "join_game" }
func (*CreateGameIntent) Action() string { return "create_game" }

func (*ReadyIntent) Confirms() string      { return ActionReady }
func (*MoveIntent) Confirms() string       { return ActionMove }
func (*LeaveIntent) Confirms() string      { return ActionLeftGame }
func (*JoinGameIntent) Confirms() string   { return ActionOpenGame }
func (*CreateGameIntent) Confirms() string { return ActionOpenGame }

// EncodeIntent serializes an intent with its action tag injected.
func EncodeIntent(it Intent) ([]byte, error) {
	body, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	action, _ := json.Marshal(it.Action())
	fields["action"] = action
	return json.Marshal(fields)
}
