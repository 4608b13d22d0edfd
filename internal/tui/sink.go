package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackwell-systems/levelshelf/internal/fetch"
	"github.com/blackwell-systems/levelshelf/internal/icons"
)

// Fetch events delivered to the browser's update loop.
type (
	clearedMsg struct{ kind fetch.Kind }

	pageLoadedMsg struct {
		kind fetch.Kind
		res  fetch.Result
	}

	iconLoadedMsg struct {
		kind fetch.Kind
		id   string
	}

	doneMsg struct {
		kind fetch.Kind
		err  error
	}
)

// Sink forwards fetch.Refresher events into a running program as messages,
// so browser state is only touched from the update loop. Refreshers are
// built before the program exists; Attach binds it. Events that arrive
// before Attach are dropped.
type Sink struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ fetch.Sink = (*Sink)(nil)

// NewSink returns an unattached sink.
func NewSink() *Sink { return &Sink{} }

// Attach routes events to p.
func (s *Sink) Attach(p *tea.Program) { s.AttachFunc(p.Send) }

// AttachFunc routes events to send. Tests use it to collect messages.
func (s *Sink) AttachFunc(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Sink) post(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (s *Sink) Cleared(kind fetch.Kind) { s.post(clearedMsg{kind: kind}) }

func (s *Sink) PageLoaded(kind fetch.Kind, res fetch.Result) {
	s.post(pageLoadedMsg{kind: kind, res: res})
}

func (s *Sink) IconLoaded(kind fetch.Kind, id string, _ icons.Icon) {
	s.post(iconLoadedMsg{kind: kind, id: id})
}

func (s *Sink) Done(kind fetch.Kind, err error) { s.post(doneMsg{kind: kind, err: err}) }
