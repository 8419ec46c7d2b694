// Package competition runs a robot program through the match lifecycle: initialize once,
// then disabled, pre-match, autonomous and operator control tasks as the field dictates.
package competition

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tigerbot-team/clawbot/pkg/logger"
)

// Robot is a robot program's lifecycle hooks. Every hook except Initialize runs as a task
// whose context is cancelled when the field moves on; a task that is started again begins
// from the top.
type Robot interface {
	// Initialize runs once at start up and blocks everything else until it returns.
	Initialize(ctx context.Context)
	Disabled(ctx context.Context)
	// CompetitionInitialize runs while connected to the field and disabled, before the
	// first enabled period.
	CompetitionInitialize(ctx context.Context)
	Autonomous(ctx context.Context)
	OpControl(ctx context.Context)
}

type Status struct {
	Connected  bool
	Enabled    bool
	Autonomous bool
}

// Field reports the state of the competition control, if any.
type Field interface {
	Status() Status
}

// Outputs is stopped between tasks so nothing keeps driving after its task ends.
type Outputs interface {
	StopAll()
	PlaySound(path string)
}

type Task int

const (
	TaskNone Task = iota
	TaskDisabled
	TaskCompetitionInitialize
	TaskAutonomous
	TaskOpControl
)

func (t Task) String() string {
	switch t {
	case TaskDisabled:
		return "disabled"
	case TaskCompetitionInitialize:
		return "competition_initialize"
	case TaskAutonomous:
		return "autonomous"
	case TaskOpControl:
		return "opcontrol"
	default:
		return "none"
	}
}

// NextTask picks the task for a field status. Without a field connection the robot goes
// straight to operator control.
func NextTask(s Status, enabledBefore bool) Task {
	switch {
	case !s.Connected:
		return TaskOpControl
	case !s.Enabled && !enabledBefore:
		return TaskCompetitionInitialize
	case !s.Enabled:
		return TaskDisabled
	case s.Autonomous:
		return TaskAutonomous
	default:
		return TaskOpControl
	}
}

const DefaultPollInterval = 20 * time.Millisecond

type Runner struct {
	Robot   Robot
	Field   Field
	Outputs Outputs
	// Sounds maps a task to the wav played when it starts.
	Sounds map[Task]string

	PollInterval time.Duration

	lock          sync.Mutex
	status        Status
	current       Task
	enabledBefore bool
}

// IsConnected reports whether the last poll saw competition control.
func (r *Runner) IsConnected() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.status.Connected
}

// Current returns the running (or last started) task.
func (r *Runner) Current() Task {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.current
}

type runningTask struct {
	task   Task
	cancel context.CancelFunc
	done   chan struct{}
}

func (t *runningTask) stop() {
	if t == nil {
		return
	}
	t.cancel()
	<-t.done
}

// Run initializes the robot and then follows the field until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	r.poll()
	logger.Info(ctx, "Running initialize")
	r.Robot.Initialize(logger.WithKV(ctx, "task", "initialize"))
	logger.Info(ctx, "Initialize done")

	var running *runningTask
	defer func() {
		running.stop()
		r.Outputs.StopAll()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		status := r.poll()

		r.lock.Lock()
		next := NextTask(status, r.enabledBefore)
		if status.Connected && status.Enabled {
			r.enabledBefore = true
		}
		r.lock.Unlock()

		if running == nil || running.task != next {
			if running != nil {
				logger.Infof(ctx, "Stopping %v", running.task)
			}
			running.stop()
			r.Outputs.StopAll()
			running = r.start(ctx, next)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) poll() Status {
	s := r.Field.Status()
	r.lock.Lock()
	defer r.lock.Unlock()
	if s != r.status {
		logger.Logger().Infow("Field status changed",
			"connected", s.Connected, "enabled", s.Enabled, "autonomous", s.Autonomous)
	}
	r.status = s
	return s
}

func (r *Runner) start(ctx context.Context, task Task) *runningTask {
	r.lock.Lock()
	r.current = task
	r.lock.Unlock()

	id := uuid.New()
	taskCtx, cancel := context.WithCancel(logger.WithKV(ctx, "task", task.String(), "task_id", id.String()))
	t := &runningTask{
		task:   task,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	var fn func(context.Context)
	switch task {
	case TaskDisabled:
		fn = r.Robot.Disabled
	case TaskCompetitionInitialize:
		fn = r.Robot.CompetitionInitialize
	case TaskAutonomous:
		fn = r.Robot.Autonomous
	default:
		fn = r.Robot.OpControl
	}

	if s := r.Sounds[task]; s != "" {
		r.Outputs.PlaySound(s)
	}

	logger.Info(taskCtx, "----- Task started -----")
	go func() {
		defer close(t.done)
		fn(taskCtx)
		logger.Info(taskCtx, "Task returned")
	}()
	return t
}
