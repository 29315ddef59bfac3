package gamelist

import (
	"github.com/renju-online/client-go/internal/protocol"
)

type entry struct {
	summary protocol.GameSummary
	hidden  bool
}

// List is the lobby view-model: an ordered catalog of game summaries,
// independent of the session registry. Updates carry complete summaries
// and fully replace the previous entry (last write wins, no merging).
type List struct {
	order   []string
	entries map[string]*entry
}

func New() *List {
	return &List{entries: make(map[string]*entry)}
}

// Add puts a new game at the top of the list. Adding a known id falls
// back to Replace.
func (l *List) Add(s protocol.GameSummary) {
	if _, ok := l.entries[s.ID]; ok {
		l.Replace(s.ID, s)
		return
	}
	l.order = append([]string{s.ID}, l.order...)
	l.entries[s.ID] = &entry{summary: s}
}

// Replace overwrites the entry for gameID with a fresh summary; an
// unknown id is added instead.
func (l *List) Replace(gameID string, s protocol.GameSummary) {
	e, ok := l.entries[gameID]
	if !ok {
		s.ID = gameID
		l.Add(s)
		return
	}
	e.summary = s
}

// Hide soft-removes an entry: it stays known (a finished game may still
// show its terminal state briefly) but no longer appears in All. Hiding
// an unknown id is a no-op.
func (l *List) Hide(gameID string) {
	if e, ok := l.entries[gameID]; ok {
		e.hidden = true
	}
}

// All returns the visible summaries, newest first.
func (l *List) All() []protocol.GameSummary {
	out := make([]protocol.GameSummary, 0, len(l.order))
	for _, id := range l.order {
		if e := l.entries[id]; e != nil && !e.hidden {
			out = append(out, e.summary)
		}
	}
	return out
}

// Get returns the summary for gameID even when hidden.
func (l *List) Get(gameID string) (protocol.GameSummary, bool) {
	if e, ok := l.entries[gameID]; ok {
		return e.summary, true
	}
	return protocol.GameSummary{}, false
}
