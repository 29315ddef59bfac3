package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/renju-online/client-go/internal/board"
	"github.com/renju-online/client-go/internal/game"
	"github.com/renju-online/client-go/internal/gamelist"
	"github.com/renju-online/client-go/internal/protocol"
	"github.com/renju-online/client-go/internal/registry"
)

// Sender hands an encoded intent to the transport. Sends are
// fire-and-forget; confirmation arrives later as an inbound event.
type Sender interface {
	Send(ctx context.Context, data []byte) error
}

// Msg is the closed set of inputs to the SessionContext loop.
type Msg interface{ isClientMsg() }

// FromServer carries one raw inbound frame, in transport order.
type FromServer struct{ Frame []byte }

// Submit carries a local user intent for validation and transmission.
type Submit struct{ Intent protocol.Intent }

type Subscribe struct {
	ID     string
	Outbox chan Notification
}

type Unsubscribe struct{ ID string }

// Presence reports a transport state change from the connection manager.
type Presence struct {
	Online       bool
	ForcedLogout bool
}

// GetState asks the loop for a view of its state; the reply goes through
// the loop goroutine, so reading it does not race with event handling.
type GetState struct{ Reply chan View }

type Shutdown struct{}

func (FromServer) isClientMsg()  {}
func (Submit) isClientMsg()      {}
func (Subscribe) isClientMsg()   {}
func (Unsubscribe) isClientMsg() {}
func (Presence) isClientMsg()    {}
func (GetState) isClientMsg()    {}
func (Shutdown) isClientMsg()    {}

type View struct {
	Online      int
	NumSessions int
	List        []protocol.GameSummary
	Focused     *SessionView
}

// SessionView is a by-value snapshot of the focused session. It shares
// nothing with the loop's state, so it stays safe to read after reply.
type SessionView struct {
	GameID     string
	MyRole     board.Role
	Phase      game.Lifecycle
	AllowMoves bool
	Players    map[board.Role]game.Player
	Board      *board.Board
}

func snapshotSession(s *game.Session) *SessionView {
	if s == nil {
		return nil
	}
	players := make(map[board.Role]game.Player, len(s.Game.Players))
	for role, p := range s.Game.Players {
		cp := *p
		if p.Result != nil {
			res := *p.Result
			cp.Result = &res
		}
		players[role] = cp
	}
	return &SessionView{
		GameID:     s.Game.ID,
		MyRole:     s.MyRole,
		Phase:      s.Game.Phase,
		AllowMoves: s.AllowMoves(),
		Players:    players,
		Board:      s.Game.Board.Clone(),
	}
}

// SessionContext owns the session registry and the lobby list. One
// goroutine consumes the inbox, so events are processed strictly in
// arrival order and the owned state needs no locks. It is created after
// authentication and torn down on logout.
type SessionContext struct {
	inbox  chan Msg
	reg    *registry.Registry
	list   *gamelist.List
	subs   map[string]chan Notification
	online int
	sender Sender
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, sender Sender, log *zap.Logger) *SessionContext {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	c := &SessionContext{
		inbox:  make(chan Msg, 64),
		reg:    registry.New(),
		list:   gamelist.New(),
		subs:   make(map[string]chan Notification),
		sender: sender,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

func (c *SessionContext) Inbox() chan<- Msg { return c.inbox }

// Done closes when the context has shut down and will answer no more
// messages.
func (c *SessionContext) Done() <-chan struct{} { return c.ctx.Done() }

// PumpFrames feeds raw transport frames into the inbox, in order, until
// the source channel closes or the context shuts down.
func (c *SessionContext) PumpFrames(frames <-chan []byte) {
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			select {
			case c.inbox <- FromServer{Frame: frame}:
			case <-c.ctx.Done():
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *SessionContext) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case FromServer:
				ev, err := protocol.DecodeServerEvent(msg.Frame)
				if err != nil {
					c.log.Warn("undecodable frame, dropping", zap.Error(err))
					break
				}
				c.handleEvent(ev)

			case Submit:
				c.handleIntent(msg.Intent)

			case Subscribe:
				c.subs[msg.ID] = msg.Outbox

			case Unsubscribe:
				delete(c.subs, msg.ID)

			case Presence:
				c.notify(PresenceChanged{Online: msg.Online})
				if msg.ForcedLogout {
					c.notify(LoggedOut{})
				}

			case GetState:
				msg.Reply <- View{
					Online:      c.online,
					NumSessions: c.reg.Len(),
					List:        c.list.All(),
					Focused:     snapshotSession(c.reg.Focused()),
				}

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *SessionContext) shutdown() {
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.cancel()
}

func (c *SessionContext) notify(n Notification) {
	for id, ch := range c.subs {
		select {
		case ch <- n:
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(c.subs, id)
		}
	}
}

// handleEvent routes one decoded server event. Exhaustive over the
// protocol's event kinds; unknown kinds fall through to a logged no-op.
func (c *SessionContext) handleEvent(ev protocol.ServerEvent) {
	switch e := ev.(type) {
	case *protocol.OnlineCounter:
		c.online = e.Total
		c.notify(OnlineCount{Total: e.Total})

	case *protocol.GameAdded:
		c.list.Add(e.Game)
		c.notify(ListChanged{})

	case *protocol.OpenGame:
		s := c.reg.Get(e.Game.ID)
		if s == nil {
			s = c.reg.Open(e.Game.ID, sessionFromInfo(e.Game, e.MyRole, c.log))
		}
		c.reg.Focus(e.Game.ID)
		c.notify(GameOpened{GameID: e.Game.ID, MyRole: s.MyRole})

	case *protocol.PlayerJoined:
		if s := c.session(e.Game.ID, protocol.ActionPlayerJoined); s != nil {
			refreshSession(s, e.Game)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.PlayerJoinedList:
		c.list.Replace(e.Game.ID, e.Game)
		c.notify(ListChanged{})

	case *protocol.SpectatorJoined:
		if s := c.session(e.Game.ID, protocol.ActionSpectatorJoined); s != nil {
			refreshSession(s, e.Game)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.SpectatorJoinedList:
		// Carries no payload; nothing cached to update.

	case *protocol.Ready:
		if s := c.session(e.Game.ID, protocol.ActionReady); s != nil {
			s.ApplyReady(e.PlayerRole)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.GameStarted:
		if s := c.session(e.Game.ID, protocol.ActionGameStarted); s != nil {
			s.ApplyLifecycle(game.Pending, nil)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.UnblockBoard:
		if s := c.session(e.Game.ID, protocol.ActionUnblockBoard); s != nil {
			s.GrantTurn()
			if s.AllowMoves() {
				c.notify(TurnGranted{GameID: e.Game.ID})
			}
		}

	case *protocol.GameRemovedList:
		c.list.Hide(e.GameID)
		c.notify(ListChanged{})

	case *protocol.GameRemoved:
		s := c.reg.Get(e.GameID)
		if s == nil {
			return
		}
		s.ApplyLifecycle(game.Removed, nil)
		c.reg.Forget(e.GameID)
		c.notify(GameOver{GameID: e.GameID, Phase: game.Removed})

	case *protocol.UpdateGameList:
		c.list.Replace(e.Game.ID, e.Game)
		c.notify(ListChanged{})

	case *protocol.UpdateGame:
		if s := c.session(e.Game.ID, protocol.ActionUpdateGame); s != nil {
			refreshSession(s, e.Game)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.MoveEvent:
		if s := c.session(e.Game.ID, protocol.ActionMove); s != nil {
			m := board.Move{X: e.Move.X, Y: e.Move.Y, Role: e.Move.Role}
			s.ApplyServerMove(m)
			c.notify(MoveApplied{GameID: e.Game.ID, Move: m})
		}

	case *protocol.LeftGame:
		if s := c.session(e.Game.ID, protocol.ActionLeftGame); s != nil {
			refreshSession(s, e.Game)
			c.notify(GameUpdated{GameID: e.Game.ID})
		}

	case *protocol.GameFinished:
		c.handleGameFinished(e)

	case *protocol.ErrorEvent:
		c.notify(ServerError{Detail: e.Detail})

	case *protocol.Unknown:
		c.log.Debug("unknown server action, ignoring", zap.String("action", e.Action))
	}
}

func (c *SessionContext) handleGameFinished(e *protocol.GameFinished) {
	changed := false

	if s := c.reg.Get(e.Game.ID); s != nil {
		s.ApplyLifecycle(game.Finished, resultFromWire(e.Result))
		c.reg.Forget(e.Game.ID)
		changed = true
	}

	if cur, ok := c.list.Get(e.Game.ID); ok && cur.State != "finished" {
		summary := e.Game.GameSummary
		summary.State = "finished"
		c.list.Replace(e.Game.ID, summary)
		c.notify(ListChanged{})
		changed = true
	}

	// A repeated game_finished for an already-finished game is a no-op.
	if changed {
		c.notify(GameOver{GameID: e.Game.ID, Phase: game.Finished, Result: resultFromWire(e.Result)})
	}
}

// session fetches the tracked session an event refers to. Events for
// untracked games are dropped, not fatal.
func (c *SessionContext) session(gameID, action string) *game.Session {
	s := c.reg.Get(gameID)
	if s == nil {
		c.log.Warn("event for untracked game, ignoring",
			zap.String("action", action), zap.String("game_id", gameID))
	}
	return s
}

// handleIntent validates a local intent against cached state. Illegal
// intents are dropped here and never reach the transport; the server
// remains the final arbiter of everything that is sent.
func (c *SessionContext) handleIntent(it protocol.Intent) {
	switch intent := it.(type) {
	case *protocol.MoveIntent:
		s := c.reg.Get(intent.GameID)
		if s == nil {
			c.log.Warn("move for unknown session, dropping", zap.String("game_id", intent.GameID))
			return
		}
		if !s.CanSubmitMove(intent.X, intent.Y) {
			c.log.Debug("move rejected locally",
				zap.String("game_id", intent.GameID),
				zap.Int("x", intent.X), zap.Int("y", intent.Y),
				zap.Bool("allow_moves", s.AllowMoves()))
			return
		}
		// One outbound move per granted turn.
		s.CloseTurn()
		c.send(it)

	case *protocol.ReadyIntent:
		s := c.reg.Get(intent.GameID)
		if s == nil || !s.MyRole.IsPlayer() || s.Game.Phase != game.Created {
			c.log.Debug("ready rejected locally", zap.String("game_id", intent.GameID))
			return
		}
		c.send(it)

	case *protocol.LeaveIntent:
		if c.reg.Get(intent.GameID) == nil {
			return
		}
		c.send(it)
		c.reg.Forget(intent.GameID)

	case *protocol.JoinGameIntent, *protocol.CreateGameIntent:
		c.send(it)

	default:
		c.log.Warn("unsupported intent, dropping", zap.String("action", it.Action()))
	}
}

func (c *SessionContext) send(it protocol.Intent) {
	data, err := protocol.EncodeIntent(it)
	if err != nil {
		c.log.Error("encode intent failed", zap.String("action", it.Action()), zap.Error(err))
		return
	}
	if err := c.sender.Send(c.ctx, data); err != nil {
		c.log.Warn("send failed", zap.String("action", it.Action()), zap.Error(err))
	}
}
