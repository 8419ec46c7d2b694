package autonselector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/clawbot/pkg/lcd"
)

func routines(ran *[]string) []Routine {
	mk := func(name string) Routine {
		return Routine{
			Name:        name,
			Description: name + " side",
			Run:         func(ctx context.Context) { *ran = append(*ran, name) },
		}
	}
	return []Routine{mk("left"), mk("right"), mk("skills")}
}

func TestCallWithNoRoutinesIsNoOp(t *testing.T) {
	s := New()
	_, ok := s.Selected()
	require.False(t, ok)
	s.Call(context.Background())
	s.Next()
	s.Prev()
}

func TestPaging(t *testing.T) {
	var ran []string
	s := New()
	s.Add(routines(&ran)...)
	require.Equal(t, 3, s.Len())

	s.Call(context.Background())
	s.Prev()
	s.Call(context.Background())
	s.Next()
	s.Next()
	s.Call(context.Background())
	require.Equal(t, []string{"left", "skills", "right"}, ran)
}

func TestLCDButtonsPage(t *testing.T) {
	var ran []string
	screen := lcd.New()
	s := New()
	s.Add(routines(&ran)...)
	s.Initialize(screen, "")

	require.Equal(t, "Page 1/3", screen.Line(0))
	require.Equal(t, "left", screen.Line(1))

	screen.Press(lcd.ButtonRight)
	require.Equal(t, "Page 2/3", screen.Line(0))
	require.Equal(t, "right side", screen.Line(2))

	screen.Press(lcd.ButtonLeft)
	screen.Press(lcd.ButtonLeft)
	r, _ := s.Selected()
	require.Equal(t, "skills", r.Name)
}

func TestEmptySelectorShowsPlaceholder(t *testing.T) {
	screen := lcd.New()
	New().Initialize(screen, "")
	require.Equal(t, "No autons", screen.Line(0))
}

func TestSelectionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auton.yaml")
	var ran []string

	s := New()
	s.Add(routines(&ran)...)
	s.Initialize(lcd.New(), path)
	s.Next()
	s.Next()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "selected: skills")

	restored := New()
	restored.Add(routines(&ran)...)
	restored.Initialize(lcd.New(), path)
	r, ok := restored.Selected()
	require.True(t, ok)
	require.Equal(t, "skills", r.Name)
}

func TestUnknownSavedSelectionIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auton.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selected: gone\n"), 0o644))

	var ran []string
	s := New()
	s.Add(routines(&ran)...)
	s.Initialize(nil, path)
	r, _ := s.Selected()
	require.Equal(t, "left", r.Name)
}
