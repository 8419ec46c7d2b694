package tunable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTunableStepping(t *testing.T) {
	var ts Tunables
	kp := ts.Create("Drive kP", 20, 0.5)

	kp.Increment()
	kp.Increment()
	require.InDelta(t, 21.0, kp.Get(), 1e-9)
	kp.Decrement()
	require.InDelta(t, 20.5, kp.Get(), 1e-9)
	require.Equal(t, "Drive kP: 20.5", kp.String())
}

func TestSelectionWraps(t *testing.T) {
	var ts Tunables
	require.Nil(t, ts.Current())
	ts.SelectNext()

	a := ts.Create("a", 1, 1)
	b := ts.Create("b", 2, 1)
	c := ts.Create("c", 3, 1)

	require.Same(t, a, ts.Current())
	ts.SelectPrev()
	require.Same(t, c, ts.Current())
	ts.SelectNext()
	ts.SelectNext()
	require.Same(t, b, ts.Current())

	require.Same(t, b, ts.Find("b"))
	require.Nil(t, ts.Find("z"))
}
