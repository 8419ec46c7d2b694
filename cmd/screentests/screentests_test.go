package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/clawbot/pkg/lcd"
)

func TestSetLine(t *testing.T) {
	display := lcd.New()
	require.True(t, setLine(display, "2 Hello there\n"))
	require.Equal(t, "Hello there", display.Line(2))
	require.True(t, setLine(display, "2\n"))
	require.Equal(t, "", display.Line(2))
	require.False(t, setLine(display, "9 nope\n"))
	require.False(t, setLine(display, "x\n"))
}
