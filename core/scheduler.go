package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/internal/observability"
	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
	"github.com/hlrs-vis/openpass-sub007/timectrl"
)

const frameworkUpdateRateMs = 100

// SchedulerReturnState classifies how Run ended, for the slave's retry
// policy: AbortInvocation means this run alone is unsalvageable (replace
// it and keep the invocation's other runs); AbortSimulation means the
// whole invocation should stop.
type SchedulerReturnState int

const (
	SchedulerNoError SchedulerReturnState = iota
	SchedulerAbortInvocation
	SchedulerAbortSimulation
)

func (s SchedulerReturnState) String() string {
	switch s {
	case SchedulerAbortInvocation:
		return "AbortInvocation"
	case SchedulerAbortSimulation:
		return "AbortSimulation"
	default:
		return "NoError"
	}
}

// EventDetector inspects world/event state once per tick and inserts
// events it observes (e.g. collisions, distance-to-lane-boundary crossed).
type EventDetector interface {
	Detect(world *World, events *EventNetwork, time int) error
}

// Manipulator reacts to active events by rewriting agent or run state (the
// only task type allowed to call RunResult.SetEndCondition).
type Manipulator interface {
	Manipulate(world *World, events *EventNetwork, runResult *RunResult, time int) error
}

// Observer samples world/agent outputs once per tick, e.g. for logging or
// metrics export. It never mutates simulation state.
type Observer interface {
	Observe(world *World, time int) error
}

// DrivingViewUpdater refreshes the global driving view sensors read from
// (e.g. a shared lane-occupancy snapshot), run before sensors trigger.
type DrivingViewUpdater interface {
	UpdateGlobalDrivingView(world *World, time int) error
}

// Scheduler drives one simulation run's fixed-step loop: bootstrap once,
// then for every scheduled timestamp, the common tasks in priority order
// (spawning, detection, manipulation, world sync, driving view,
// observation), then the agent roster update, then non-recurring and
// recurring per-agent tasks, until the run ends or a task fails.
type Scheduler struct {
	world        *World
	spawnControl *SpawnControl
	bus          *Bus
	parser       *AgentParser

	eventDetectors []EventDetector
	manipulators   []Manipulator
	observers      []Observer
	drivingViews   []DrivingViewUpdater

	currentTime int
	tasks       *SchedulerTasks

	lastSpawnErr error
	failedTask   *model.TaskItem

	clock     *timectrl.TickClock
	metrics   *observability.RunCollector
	logger    logging.Logger
	maxAgents int
}

// SchedulerOption customises Scheduler construction with optional
// observability hooks; neither is required to drive a run.
type SchedulerOption func(*Scheduler)

// WithClock attaches a TickClock the scheduler stamps with its current
// timestamp once per tick, so logging/tracing code can read "now"
// without depending on the scheduler package.
func WithClock(clock *timectrl.TickClock) SchedulerOption {
	return func(s *Scheduler) { s.clock = clock }
}

// WithMetrics attaches a Prometheus collector the scheduler reports tick
// duration, agent population, and abort classification into.
func WithMetrics(metrics *observability.RunCollector) SchedulerOption {
	return func(s *Scheduler) { s.metrics = metrics }
}

// WithLogger attaches the structured logger the scheduler reports
// task-abort diagnostics through. Every log line the run emits is tagged
// with a run_id generated once per Run call (internal/logging's run-scoped
// helpers).
func WithLogger(logger logging.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// WithMaxAgents caps the number of agents a run may hold registered at
// once; Run aborts with ErrConfigurationError once a tick's spawning
// exceeds it. limit <= 0 leaves the population unbounded.
func WithMaxAgents(limit int) SchedulerOption {
	return func(s *Scheduler) { s.maxAgents = limit }
}

// NewScheduler constructs a scheduler bound to a world and its spawn
// control; event detectors, manipulators, observers and driving-view
// updaters are the caller's pluggable "experiment libraries" and are
// registered with AddEventDetector/AddManipulator/AddObserver/
// AddDrivingViewUpdater before Run.
func NewScheduler(world *World, spawnControl *SpawnControl, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{world: world, spawnControl: spawnControl, bus: NewBus(), logger: logging.Noop()}
	s.parser = NewAgentParser(&s.currentTime, s.bus, context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) AddEventDetector(d EventDetector)           { s.eventDetectors = append(s.eventDetectors, d) }
func (s *Scheduler) AddManipulator(m Manipulator)               { s.manipulators = append(s.manipulators, m) }
func (s *Scheduler) AddObserver(o Observer)                     { s.observers = append(s.observers, o) }
func (s *Scheduler) AddDrivingViewUpdater(d DrivingViewUpdater) { s.drivingViews = append(s.drivingViews, d) }

// Run executes one simulation invocation from startTime to endTime
// (milliseconds), reporting outcomes into runResult and events into
// eventNetwork.
func (s *Scheduler) Run(startTime, endTime int, runResult *RunResult, eventNetwork *EventNetwork) (SchedulerReturnState, error) {
	if startTime > endTime {
		return SchedulerAbortSimulation, fmt.Errorf("%w: start time %d greater than end time %d", schederr.ErrConfigurationError, startTime, endTime)
	}
	s.currentTime = startTime

	runCtx, runLogger := logging.WithRunLogger(context.Background(), s.logger)
	s.logger = runLogger
	s.parser.ctx = logging.ContextWithLogger(runCtx, runLogger)

	bootstrap := s.createBootstrapTasks(runResult, eventNetwork)
	common := s.createCommonTasks(runResult, eventNetwork)
	finalizeRecurring := []model.TaskItem{}
	finalize := s.createFinalizeTasks()
	s.tasks = NewSchedulerTasks(bootstrap, common, finalizeRecurring, finalize, frameworkUpdateRateMs)

	if !s.executeTasks(s.tasks.GetBootstrapTasks()) {
		return s.parseAbortReason()
	}

	for s.currentTime <= endTime {
		tickStart := time.Now()
		if s.clock != nil {
			s.clock.SetMs(s.currentTime)
		}

		if !s.executeTasks(s.tasks.GetCommonTasks(s.currentTime)) {
			return s.parseAbortReason()
		}

		if err := s.updateAgents(); err != nil {
			s.lastSpawnErr = err
			return s.parseAbortReason()
		}
		s.metrics.SetActiveAgents(len(s.world.Agents()))

		if !s.executeTasks(s.tasks.ConsumeNonRecurringTasks(s.currentTime)) {
			return s.parseAbortReason()
		}

		if !s.executeTasks(s.tasks.GetRecurringTasks(s.currentTime)) {
			return s.parseAbortReason()
		}

		s.metrics.ObserveTick(time.Since(tickStart).Seconds())

		next, err := s.tasks.GetNextTimestamp(s.currentTime)
		if err != nil {
			return SchedulerAbortSimulation, err
		}
		s.currentTime = next

		if runResult.IsEndCondition() {
			return SchedulerNoError, nil
		}

		eventNetwork.ClearActiveEvents()
	}

	if !s.executeTasks(s.tasks.GetFinalizeTasks()) {
		return s.parseAbortReason()
	}
	return SchedulerNoError, nil
}

// ScheduleAgentTasks parses agent's component graph into task items and
// registers them with the running task list. It satisfies TaskScheduler,
// so a Respawner can call it mid-run the same way the initial spawn does.
func (s *Scheduler) ScheduleAgentTasks(agent *model.Agent) {
	nonRecurring, recurring := s.parser.Parse(agent)
	s.tasks.ScheduleNewRecurringTasks(recurring)
	s.tasks.ScheduleNewNonRecurringTasks(nonRecurring)
}

// updateAgents schedules tasks for agents SpawnControl placed since the
// last tick, then removes every agent the tick invalidated (left the
// world, collided terminally, or exceeded simulation time) from both the
// world and the task list. It reports an error once the registered agent
// count exceeds maxAgents (if configured via WithMaxAgents).
func (s *Scheduler) updateAgents() error {
	newAgents := s.spawnControl.PullNewAgents()
	for _, agent := range newAgents {
		s.ScheduleAgentTasks(agent)
	}
	s.metrics.IncSpawned(len(newAgents))

	removed := s.world.RemoveInvalidAgents()
	s.tasks.DeleteAgentTasks(removed)
	s.metrics.IncRemoved(len(removed))

	return s.world.validateAgentCount(s.maxAgents)
}

func (s *Scheduler) executeTasks(items []model.TaskItem) bool {
	for i := range items {
		if !items[i].Func() {
			s.failedTask = &items[i]
			return false
		}
	}
	return true
}

// parseAbortReason classifies the failed task's error into the retry
// policy the slave should apply: an incomplete scenario is an
// invocation-scoped failure, anything else aborts the whole simulation.
// Either way, it logs the failing task's taskType, agent id and timestamp
// before returning, per the abort diagnostics the ambient logging stack
// commits to.
func (s *Scheduler) parseAbortReason() (SchedulerReturnState, error) {
	err := s.lastSpawnErr
	if err == nil {
		s.logTaskAbort(nil)
		s.metrics.IncAbort(SchedulerAbortSimulation.String())
		return SchedulerAbortSimulation, fmt.Errorf("scheduler: task aborted execution at time %d", s.currentTime)
	}
	if errors.Is(err, schederr.ErrIncompleteScenario) {
		s.logTaskAbort(err)
		s.metrics.IncAbort(SchedulerAbortInvocation.String())
		return SchedulerAbortInvocation, err
	}
	s.logTaskAbort(err)
	s.metrics.IncAbort(SchedulerAbortSimulation.String())
	return SchedulerAbortSimulation, err
}

// logTaskAbort emits the structured abort diagnostic: the failing task's
// type, agent id and delay offset if executeTasks recorded one (a spawn
// failure aborts before any task item runs, so failedTask can be nil), the
// current timestamp, and the classifying error if any.
func (s *Scheduler) logTaskAbort(err error) {
	fields := []logging.Field{logging.Int("time", s.currentTime)}
	if s.failedTask != nil {
		fields = append(fields,
			logging.String("taskType", s.failedTask.Type.String()),
			logging.Int("agentId", s.failedTask.AgentID),
			logging.Int("delay", s.failedTask.Delay),
		)
	}
	if err != nil {
		fields = append(fields, logging.String("error", err.Error()))
	}
	s.logger.Error(context.Background(), "task aborted execution", fields...)
}

func (s *Scheduler) createBootstrapTasks(runResult *RunResult, eventNetwork *EventNetwork) []model.TaskItem {
	return nil
}

func (s *Scheduler) createFinalizeTasks() []model.TaskItem {
	return nil
}

// createCommonTasks builds the not-agent-scoped phase tasks: spawning,
// event detection, manipulation, global driving view, world sync
// (localization), and observation, each firing every frameworkUpdateRateMs.
func (s *Scheduler) createCommonTasks(runResult *RunResult, eventNetwork *EventNetwork) []model.TaskItem {
	var tasks []model.TaskItem

	tasks = append(tasks, model.NewSpawningTask(frameworkUpdateRateMs, func() bool {
		if err := s.spawnControl.Execute(s.currentTime); err != nil {
			s.lastSpawnErr = err
			return false
		}
		return true
	}))

	for _, d := range s.drivingViews {
		updater := d
		tasks = append(tasks, model.NewUpdateGlobalDrivingViewTask(frameworkUpdateRateMs, func() bool {
			return updater.UpdateGlobalDrivingView(s.world, s.currentTime) == nil
		}))
	}

	for _, d := range s.eventDetectors {
		detector := d
		tasks = append(tasks, model.NewEventDetectorTask(frameworkUpdateRateMs, func() {
			_ = detector.Detect(s.world, eventNetwork, s.currentTime)
		}))
	}

	for _, m := range s.manipulators {
		manipulator := m
		tasks = append(tasks, model.NewManipulatorTask(frameworkUpdateRateMs, func() {
			_ = manipulator.Manipulate(s.world, eventNetwork, runResult, s.currentTime)
		}))
	}

	tasks = append(tasks, model.NewSyncGlobalDataTask(frameworkUpdateRateMs, func() {
		_ = s.world.Localize()
	}))

	for _, o := range s.observers {
		observer := o
		tasks = append(tasks, model.NewObservationTask(frameworkUpdateRateMs, func() bool {
			return observer.Observe(s.world, s.currentTime) == nil
		}))
	}

	return tasks
}
