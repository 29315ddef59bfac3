package conn

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrAlreadyConnected = errors.New("already connected")
var ErrNotConnected = errors.New("not connected")
var ErrSendBufferFull = errors.New("send buffer full")

// StatusAuthFailure is the reserved close code the server uses when the
// attached token is rejected. It forces a local logout instead of a
// reconnect attempt.
const StatusAuthFailure = websocket.StatusPolicyViolation

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Presence reports a transport state change.
type Presence struct {
	Online       bool
	CloseCode    websocket.StatusCode
	ForcedLogout bool
	Err          error
}

// Manager owns the websocket to the game server. Inbound frames surface
// on Frames in arrival order; Send is fire-and-forget. There is no
// automatic reconnect: after any close the manager sits in Disconnected
// until the caller dials again.
type Manager struct {
	serverURL string
	log       *zap.Logger

	frames   chan []byte
	presence chan Presence

	mu     sync.Mutex
	state  State
	ws     *websocket.Conn
	sendq  chan []byte
	cancel context.CancelFunc
}

func NewManager(serverURL string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		serverURL: serverURL,
		log:       log,
		frames:    make(chan []byte, 64),
		presence:  make(chan Presence, 8),
	}
}

func (m *Manager) Frames() <-chan []byte { return m.frames }

func (m *Manager) Presence() <-chan Presence { return m.presence }

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect dials the server with the access token attached as a query
// parameter. On success the connection goes online and the read/write
// loops start.
func (m *Manager) Connect(ctx context.Context, token string) error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return ErrAlreadyConnected
	}
	m.state = Connecting
	m.mu.Unlock()

	u, err := url.Parse(m.serverURL)
	if err != nil {
		m.setDisconnected()
		return err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		m.setDisconnected()
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	sendq := make(chan []byte, 16)

	m.mu.Lock()
	m.state = Connected
	m.ws = ws
	m.sendq = sendq
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Info("connected", zap.String("url", u.Host))
	m.emit(Presence{Online: true})

	go m.writeLoop(loopCtx, ws, sendq)
	go m.readLoop(loopCtx, ws)
	return nil
}

// Send enqueues one outbound frame. No reply is awaited; confirmation
// of the underlying intent arrives later as an inbound event.
func (m *Manager) Send(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Connected {
		return ErrNotConnected
	}
	select {
	case m.sendq <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close shuts the connection down cleanly.
func (m *Manager) Close() {
	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()
	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "bye")
	}
}

func (m *Manager) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			code := websocket.CloseStatus(err)
			p := Presence{CloseCode: code, Err: err}
			if code == StatusAuthFailure {
				// Server rejected our credentials; do not reconnect.
				p.ForcedLogout = true
				m.log.Warn("authentication rejected, logging out")
			} else {
				m.log.Info("disconnected", zap.Int("close_code", int(code)), zap.Error(err))
			}
			m.teardown(p)
			return
		}

		select {
		case m.frames <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) writeLoop(ctx context.Context, ws *websocket.Conn, sendq <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-sendq:
			writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			if err := ws.Write(writeCtx, websocket.MessageText, data); err != nil {
				m.log.Warn("write failed", zap.Error(err))
			}
			cancel()
		}
	}
}

func (m *Manager) setDisconnected() {
	m.mu.Lock()
	m.state = Disconnected
	m.mu.Unlock()
}

// teardown flips the manager offline exactly once per connection.
func (m *Manager) teardown(p Presence) {
	m.mu.Lock()
	if m.state == Disconnected {
		m.mu.Unlock()
		return
	}
	m.state = Disconnected
	m.ws = nil
	m.sendq = nil
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.emit(p)
}

func (m *Manager) emit(p Presence) {
	select {
	case m.presence <- p:
	default:
		m.log.Warn("presence channel full, dropping", zap.Bool("online", p.Online))
	}
}
