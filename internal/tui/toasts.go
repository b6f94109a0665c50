package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"geolayers/internal/ingest"
)

// Toaster is the UI's ingest.Notifier. It holds at most one message and
// remembers whether the layer set changed since the UI last looked.
type Toaster struct {
	current   *ingest.Message
	seq       int
	scheduled int
	changed   bool
	ttl       time.Duration
}

func NewToaster() *Toaster { return &Toaster{} }

func (t *Toaster) Notify(msg ingest.Message) {
	t.current = &msg
	t.seq++
}

// Dismiss clears a sticky message.
func (t *Toaster) Dismiss() {
	if t.current != nil && t.current.Sticky {
		t.current = nil
	}
}

func (t *Toaster) LayersChanged() { t.changed = true }

// Current returns the visible message.
func (t *Toaster) Current() (ingest.Message, bool) {
	if t.current == nil {
		return ingest.Message{}, false
	}
	return *t.current, true
}

type toastExpiredMsg struct{ seq int }

// schedule returns a timer for the newest non-sticky message, once.
func (t *Toaster) schedule() tea.Cmd {
	if t.current == nil || t.current.Sticky || t.scheduled == t.seq {
		return nil
	}
	t.scheduled = t.seq
	seq, ttl := t.seq, t.ttl
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (t *Toaster) expire(seq int) {
	if seq == t.seq && t.current != nil && !t.current.Sticky {
		t.current = nil
	}
}

// takeChanged reports and resets the layer-set flag.
func (t *Toaster) takeChanged() bool {
	c := t.changed
	t.changed = false
	return c
}
