// Package lcd is an eight line text display with three buttons under it.
package lcd

import (
	"context"
	"sync"
	"time"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

const NumLines = 8

type Button int

const (
	ButtonLeft Button = iota
	ButtonCenter
	ButtonRight
	numButtons
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonCenter:
		return "center"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Switch is a polled push button.
type Switch interface {
	Get() bool
}

type LCD struct {
	lock      sync.Mutex
	lines     [NumLines]string
	callbacks [numButtons]func()
}

func New() *LCD {
	return &LCD{}
}

// Initialize blanks the display and forgets any button callbacks.
func (l *LCD) Initialize() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.lines = [NumLines]string{}
	l.callbacks = [numButtons]func(){}
}

// SetText replaces a line. It reports false for a line outside 0..NumLines-1.
func (l *LCD) SetText(line int, text string) bool {
	if line < 0 || line >= NumLines {
		return false
	}
	l.lock.Lock()
	l.lines[line] = text
	l.lock.Unlock()
	return true
}

func (l *LCD) ClearLine(line int) bool {
	return l.SetText(line, "")
}

func (l *LCD) Clear() {
	l.lock.Lock()
	l.lines = [NumLines]string{}
	l.lock.Unlock()
}

func (l *LCD) Line(line int) string {
	if line < 0 || line >= NumLines {
		return ""
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.lines[line]
}

func (l *LCD) Lines() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.lines[:]...)
}

// RegisterButton sets the callback run when b is pressed. A nil callback unregisters.
func (l *LCD) RegisterButton(b Button, cb func()) {
	if b < 0 || b >= numButtons {
		return
	}
	l.lock.Lock()
	l.callbacks[b] = cb
	l.lock.Unlock()
}

// Press runs b's callback, if any. Callbacks may update the display.
func (l *LCD) Press(b Button) {
	if b < 0 || b >= numButtons {
		return
	}
	l.lock.Lock()
	cb := l.callbacks[b]
	l.lock.Unlock()
	if cb != nil {
		cb()
	}
}

const buttonPollInterval = 20 * time.Millisecond

// WatchButtons polls the left, center and right switches and calls Press on each press.
// Nil switches are skipped.
func (l *LCD) WatchButtons(ctx context.Context, switches [3]Switch) {
	ticker := time.NewTicker(buttonPollInterval)
	defer ticker.Stop()
	var last [numButtons]bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for i, sw := range switches {
			if sw == nil {
				continue
			}
			down := sw.Get()
			if down && !last[i] {
				logger.Debugf(ctx, "LCD %v button pressed", Button(i))
				l.Press(Button(i))
			}
			last[i] = down
		}
	}
}
