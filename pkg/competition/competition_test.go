package competition

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tigerbot-team/clawbot/pkg/hardware"
)

func TestNextTask(t *testing.T) {
	for _, tc := range []struct {
		status        Status
		enabledBefore bool
		want          Task
	}{
		{Status{}, false, TaskOpControl},
		{Status{Enabled: true, Autonomous: true}, false, TaskOpControl},
		{Status{Connected: true}, false, TaskCompetitionInitialize},
		{Status{Connected: true}, true, TaskDisabled},
		{Status{Connected: true, Autonomous: true}, true, TaskDisabled},
		{Status{Connected: true, Enabled: true, Autonomous: true}, false, TaskAutonomous},
		{Status{Connected: true, Enabled: true}, true, TaskOpControl},
	} {
		require.Equal(t, tc.want, NextTask(tc.status, tc.enabledBefore), "%+v before=%v", tc.status, tc.enabledBefore)
	}
}

// recordingRobot logs every hook; tasks block until cancelled.
type recordingRobot struct {
	lock      sync.Mutex
	calls     []string
	initDelay time.Duration
}

func (r *recordingRobot) record(name string) {
	r.lock.Lock()
	r.calls = append(r.calls, name)
	r.lock.Unlock()
}

func (r *recordingRobot) Calls() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingRobot) block(ctx context.Context, name string) {
	r.record(name)
	<-ctx.Done()
	r.record(name + " cancelled")
}

func (r *recordingRobot) Initialize(ctx context.Context) {
	time.Sleep(r.initDelay)
	r.record("initialize")
}
func (r *recordingRobot) Disabled(ctx context.Context) { r.block(ctx, "disabled") }
func (r *recordingRobot) CompetitionInitialize(ctx context.Context) {
	r.block(ctx, "competition_initialize")
}
func (r *recordingRobot) Autonomous(ctx context.Context) { r.block(ctx, "autonomous") }
func (r *recordingRobot) OpControl(ctx context.Context) { r.block(ctx, "opcontrol") }

func startRunner(t *testing.T, robot Robot, field Field, hw *hardware.Dummy) (*Runner, context.CancelFunc, chan error) {
	t.Helper()
	r := &Runner{
		Robot:        robot,
		Field:        field,
		Outputs:      hw,
		Sounds:       map[Task]string{TaskAutonomous: "/sounds/auton.wav"},
		PollInterval: time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return r, cancel, done
}

func TestNotConnectedGoesStraightToOpControl(t *testing.T) {
	robot := &recordingRobot{initDelay: 20 * time.Millisecond}
	r, cancel, done := startRunner(t, robot, NewStatic(Status{}), hardware.NewDummy())

	require.Eventually(t, func() bool { return len(robot.Calls()) == 2 }, time.Second, time.Millisecond)
	require.Equal(t, []string{"initialize", "opcontrol"}, robot.Calls())
	require.False(t, r.IsConnected())
	require.Equal(t, TaskOpControl, r.Current())

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, []string{"initialize", "opcontrol", "opcontrol cancelled"}, robot.Calls())
}

func TestMatchSequenceRestartsTasks(t *testing.T) {
	robot := &recordingRobot{}
	field := NewStatic(Status{Connected: true})
	hw := hardware.NewDummy()
	r, cancel, done := startRunner(t, robot, field, hw)
	defer func() {
		cancel()
		<-done
	}()

	waitFor := func(task Task) {
		require.Eventually(t, func() bool { return r.Current() == task }, time.Second, time.Millisecond)
	}

	waitFor(TaskCompetitionInitialize)
	require.True(t, r.IsConnected())

	hw.Motor(1).Move(100)
	field.Set(Status{Connected: true, Enabled: true, Autonomous: true})
	waitFor(TaskAutonomous)
	require.Equal(t, 0, hw.Power(1), "outputs are stopped between tasks")
	require.Eventually(t, func() bool { return len(hw.Sounds()) == 1 }, time.Second, time.Millisecond)

	field.Set(Status{Connected: true})
	waitFor(TaskDisabled)

	field.Set(Status{Connected: true, Enabled: true})
	waitFor(TaskOpControl)

	field.Set(Status{Connected: true})
	waitFor(TaskDisabled)

	field.Set(Status{Connected: true, Enabled: true})
	waitFor(TaskOpControl)

	require.Eventually(t, func() bool { return len(robot.Calls()) == 12 }, time.Second, time.Millisecond)
	require.Equal(t, []string{
		"initialize",
		"competition_initialize", "competition_initialize cancelled",
		"autonomous", "autonomous cancelled",
		"disabled", "disabled cancelled",
		"opcontrol", "opcontrol cancelled",
		"disabled", "disabled cancelled",
		"opcontrol",
	}, robot.Calls())
}

type returningRobot struct {
	recordingRobot
}

func (r *returningRobot) Autonomous(ctx context.Context) { r.record("autonomous") }

func TestFinishedTaskIsNotRestarted(t *testing.T) {
	robot := &returningRobot{}
	field := NewStatic(Status{Connected: true, Enabled: true, Autonomous: true})
	r, cancel, done := startRunner(t, robot, field, hardware.NewDummy())

	require.Eventually(t, func() bool { return r.Current() == TaskAutonomous }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	require.Equal(t, []string{"initialize", "autonomous"}, robot.Calls())
}

type fakeIn bool

func (f fakeIn) Get() bool { return bool(f) }

func TestSwitchStatus(t *testing.T) {
	s := &Switch{Connected: fakeIn(false), Enabled: fakeIn(true), Autonomous: fakeIn(true)}
	require.Equal(t, Status{}, s.Status())

	s.Connected = fakeIn(true)
	require.Equal(t, Status{Connected: true, Enabled: true, Autonomous: true}, s.Status())
}
