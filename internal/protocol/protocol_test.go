package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renju-online/client-go/internal/board"
)

func TestDecodeOnlineCounter(t *testing.T) {
	ev, err := DecodeServerEvent([]byte(`{"action":"online_counter","total":5}`))
	require.NoError(t, err)
	oc, ok := ev.(*OnlineCounter)
	require.True(t, ok)
	assert.Equal(t, 5, oc.Total)
}

func TestDecodeOpenGame(t *testing.T) {
	raw := `{
		"action": "open_game",
		"my_role": "1",
		"game": {
			"id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			"state": "created",
			"created_at": "2023-04-01T10:30:00Z",
			"num_players": 2,
			"board_size": 15,
			"time_limit": 60,
			"classic_mode": false,
			"with_myself": false,
			"spectators": [],
			"player_1": {"player": {"id": "u1", "name": "alice"}, "ready": false},
			"moves": [{"x_coord": 8, "y_coord": 8, "player_role": "1"}]
		}
	}`
	ev, err := DecodeServerEvent([]byte(raw))
	require.NoError(t, err)
	og, ok := ev.(*OpenGame)
	require.True(t, ok)
	assert.Equal(t, board.RoleFirst, og.MyRole)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", og.Game.ID)
	assert.Equal(t, 15, og.Game.BoardSize)
	require.Len(t, og.Game.Moves, 1)
	assert.Equal(t, Move{X: 8, Y: 8, Role: board.RoleFirst}, og.Game.Moves[0])
	require.NotNil(t, og.Game.Player1)
	assert.Equal(t, "alice", og.Game.Player1.Player.Name)
}

func TestDecodeMoveEvent(t *testing.T) {
	raw := `{
		"action": "move",
		"game": {"id": "g1", "state": "pending", "created_at": "2023-04-01T10:30:00Z",
			"num_players": 2, "board_size": 15, "spectators": []},
		"move": {"x_coord": 3, "y_coord": 4, "player_role": "2"}
	}`
	ev, err := DecodeServerEvent([]byte(raw))
	require.NoError(t, err)
	me, ok := ev.(*MoveEvent)
	require.True(t, ok)
	assert.Equal(t, "g1", me.Game.ID)
	assert.Equal(t, Move{X: 3, Y: 4, Role: board.RoleSecond}, me.Move)
}

func TestDecodeGameFinished(t *testing.T) {
	raw := `{
		"action": "game_finished",
		"game": {"id": "g1", "state": "finished", "created_at": "2023-04-01T10:30:00Z",
			"num_players": 2, "board_size": 15, "spectators": []},
		"result": {"result": 1, "cause": "honest victory", "winner": {"id": "u1", "name": "alice"}}
	}`
	ev, err := DecodeServerEvent([]byte(raw))
	require.NoError(t, err)
	gf, ok := ev.(*GameFinished)
	require.True(t, ok)
	require.NotNil(t, gf.Result)
	assert.Equal(t, 1, gf.Result.Result)
	assert.Equal(t, "honest victory", gf.Result.Cause)
	assert.Equal(t, "alice", gf.Result.Winner.Name)
}

func TestDecodeErrorEvent(t *testing.T) {
	ev, err := DecodeServerEvent([]byte(`{"action":"error","detail":"Cannot create new game"}`))
	require.NoError(t, err)
	ee, ok := ev.(*ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "Cannot create new game", ee.Detail)
}

func TestDecodeUnknownActionIsNotAnError(t *testing.T) {
	ev, err := DecodeServerEvent([]byte(`{"action":"chat_message","text":"hi"}`))
	require.NoError(t, err)
	u, ok := ev.(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "chat_message", u.Action)
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := DecodeServerEvent([]byte(`{"action":`))
	require.Error(t, err)
}

func TestEncodeIntentInjectsAction(t *testing.T) {
	data, err := EncodeIntent(&MoveIntent{GameID: "g1", X: 8, Y: 8})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "move", got["action"])
	assert.Equal(t, "g1", got["game_id"])
	assert.Equal(t, float64(8), got["x"])
	assert.Equal(t, float64(8), got["y"])
}

func TestIntentConfirmationContract(t *testing.T) {
	cases := []struct {
		intent  Intent
		confirm string
	}{
		{&ReadyIntent{}, ActionReady},
		{&MoveIntent{}, ActionMove},
		{&LeaveIntent{}, ActionLeftGame},
		{&JoinGameIntent{}, ActionOpenGame},
		{&CreateGameIntent{}, ActionOpenGame},
	}
	for _, c := range cases {
		assert.Equal(t, c.confirm, c.intent.Confirms(), c.intent.Action())
	}
}

func TestSummarySlotLookup(t *testing.T) {
	s := GameSummary{
		Player1: &PlayerSlot{Player: UserRef{Name: "alice"}},
		Player2: &PlayerSlot{Player: UserRef{Name: "bob"}},
	}
	require.NotNil(t, s.Slot(board.RoleFirst))
	assert.Equal(t, "bob", s.Slot(board.RoleSecond).Player.Name)
	assert.Nil(t, s.Slot(board.RoleThird))
	assert.Nil(t, s.Slot(board.RoleSpectator))
}
