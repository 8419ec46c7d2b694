// Package autonselector holds the list of autonomous routines and lets the drive team pick
// one from the LCD before a match.
package autonselector

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tigerbot-team/clawbot/pkg/lcd"
	"github.com/tigerbot-team/clawbot/pkg/logger"
)

type Routine struct {
	Name        string
	Description string
	Run         func(ctx context.Context)
}

// Screen is the part of the LCD the selector draws on.
type Screen interface {
	SetText(line int, text string) bool
	ClearLine(line int) bool
	RegisterButton(b lcd.Button, cb func())
}

const (
	pageLine = 0
	nameLine = 1
	descLine = 2
)

type Selector struct {
	lock      sync.Mutex
	routines  []Routine
	current   int
	screen    Screen
	statePath string
}

type savedState struct {
	Selected string `yaml:"selected"`
}

func New() *Selector {
	return &Selector{}
}

func (s *Selector) Add(routines ...Routine) {
	s.lock.Lock()
	s.routines = append(s.routines, routines...)
	s.lock.Unlock()
}

func (s *Selector) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.routines)
}

// Selected returns the current routine; false if none have been added.
func (s *Selector) Selected() (Routine, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.routines) == 0 {
		return Routine{}, false
	}
	return s.routines[s.current], true
}

func (s *Selector) Next() {
	s.page(1)
}

func (s *Selector) Prev() {
	s.page(-1)
}

func (s *Selector) page(delta int) {
	s.lock.Lock()
	n := len(s.routines)
	if n == 0 {
		s.lock.Unlock()
		return
	}
	s.current = ((s.current+delta)%n + n) % n
	s.lock.Unlock()

	s.show()
	if err := s.save(); err != nil {
		logger.Logger().Warnw("Failed to save autonomous selection", "error", err)
	}
}

// Call runs the selected routine. With nothing registered it only logs.
func (s *Selector) Call(ctx context.Context) {
	r, ok := s.Selected()
	if !ok {
		logger.Warnf(ctx, "No autonomous routines registered")
		return
	}
	logger.InfoKV(ctx, "Running autonomous routine", "routine", r.Name)
	if r.Run != nil {
		r.Run(ctx)
	}
}

// Initialize restores the saved selection, binds the left and right LCD buttons to page
// through the routines and shows the current one. statePath may be empty.
func (s *Selector) Initialize(screen Screen, statePath string) {
	s.lock.Lock()
	s.screen = screen
	s.statePath = statePath
	s.lock.Unlock()

	if err := s.load(); err != nil {
		logger.Logger().Warnw("Failed to load autonomous selection", "error", err)
	}
	if screen != nil {
		screen.RegisterButton(lcd.ButtonLeft, s.Prev)
		screen.RegisterButton(lcd.ButtonRight, s.Next)
	}
	s.show()
}

func (s *Selector) show() {
	s.lock.Lock()
	screen := s.screen
	n := len(s.routines)
	var r Routine
	if n > 0 {
		r = s.routines[s.current]
	}
	page := s.current + 1
	s.lock.Unlock()

	if screen == nil {
		return
	}
	if n == 0 {
		screen.SetText(pageLine, "No autons")
		screen.ClearLine(nameLine)
		screen.ClearLine(descLine)
		return
	}
	screen.SetText(pageLine, fmt.Sprintf("Page %d/%d", page, n))
	screen.SetText(nameLine, r.Name)
	screen.SetText(descLine, r.Description)
}

func (s *Selector) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.statePath == "" {
		return nil
	}
	data, err := os.ReadFile(s.statePath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "failed to read selection")
	}
	var st savedState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return errors.Wrapf(err, "failed to parse %s", s.statePath)
	}
	for i, r := range s.routines {
		if r.Name == st.Selected {
			s.current = i
			return nil
		}
	}
	return nil
}

func (s *Selector) save() error {
	s.lock.Lock()
	path := s.statePath
	var st savedState
	if len(s.routines) > 0 {
		st.Selected = s.routines[s.current].Name
	}
	s.lock.Unlock()
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(&st)
	if err != nil {
		return errors.Wrap(err, "failed to marshal selection")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write selection")
}
