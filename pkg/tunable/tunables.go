package tunable

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// Tunable is a named constant that can be nudged from the controller while the robot runs.
type Tunable struct {
	Name string
	Step float64

	bits atomic.Uint64
}

func (t *Tunable) Add(delta float64) {
	for {
		old := t.bits.Load()
		newV := math.Float64frombits(old) + delta
		if t.bits.CompareAndSwap(old, math.Float64bits(newV)) {
			logger.Logger().Infof("Tunable %s = %g", t.Name, newV)
			return
		}
	}
}

func (t *Tunable) Increment() {
	t.Add(t.Step)
}

func (t *Tunable) Decrement() {
	t.Add(-t.Step)
}

func (t *Tunable) Set(v float64) {
	t.bits.Store(math.Float64bits(v))
}

func (t *Tunable) Get() float64 {
	return math.Float64frombits(t.bits.Load())
}

func (t *Tunable) String() string {
	return fmt.Sprintf("%s: %g", t.Name, t.Get())
}

type Tunables struct {
	All      []*Tunable
	selected int
}

func (t *Tunables) Create(name string, value, step float64) *Tunable {
	newTunable := &Tunable{
		Name: name,
		Step: step,
	}
	newTunable.Set(value)
	t.All = append(t.All, newTunable)
	return newTunable
}

// Find returns the tunable called name, or nil.
func (t *Tunables) Find(name string) *Tunable {
	for _, tun := range t.All {
		if tun.Name == name {
			return tun
		}
	}
	return nil
}

func (t *Tunables) SelectNext() {
	if len(t.All) == 0 {
		return
	}
	t.selected++
	if t.selected >= len(t.All) {
		t.selected = 0
	}
	logger.Logger().Infof("Tunable %s selected, value: %g", t.Current().Name, t.Current().Get())
}

func (t *Tunables) SelectPrev() {
	if len(t.All) == 0 {
		return
	}
	t.selected--
	if t.selected < 0 {
		t.selected = len(t.All) - 1
	}
	logger.Logger().Infof("Tunable %s selected, value: %g", t.Current().Name, t.Current().Get())
}

// Current returns the selected tunable, or nil when there are none.
func (t *Tunables) Current() *Tunable {
	if len(t.All) == 0 {
		return nil
	}
	return t.All[t.selected]
}
