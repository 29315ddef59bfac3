package client

import (
	"github.com/renju-online/client-go/internal/board"
	"github.com/renju-online/client-go/internal/game"
)

// Notification is what the presentation layer subscribes to. The core
// never renders; it only reports what changed.
type Notification interface{ isNotification() }

type OnlineCount struct{ Total int }

type ListChanged struct{}

type GameOpened struct {
	GameID string
	MyRole board.Role
}

type GameUpdated struct{ GameID string }

type TurnGranted struct{ GameID string }

type MoveApplied struct {
	GameID string
	Move   board.Move
}

// GameOver reports a terminal lifecycle step. Result is nil when the
// game was removed rather than finished.
type GameOver struct {
	GameID string
	Phase  game.Lifecycle
	Result *game.Result
}

type ServerError struct{ Detail string }

type PresenceChanged struct{ Online bool }

// LoggedOut means the server rejected our credentials; the caller must
// drop its token and return to the unauthenticated view.
type LoggedOut struct{}

func (OnlineCount) isNotification()     {}
func (ListChanged) isNotification()     {}
func (GameOpened) isNotification()      {}
func (GameUpdated) isNotification()     {}
func (TurnGranted) isNotification()     {}
func (MoveApplied) isNotification()     {}
func (GameOver) isNotification()        {}
func (ServerError) isNotification()     {}
func (PresenceChanged) isNotification() {}
func (LoggedOut) isNotification()       {}
