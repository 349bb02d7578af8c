package core

import (
	"fmt"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// SchedulerTasks manages the six task phases the scheduler's Run loop pulls
// from every tick: bootstrap (fired once at startup), common (recurring,
// not agent-scoped), non-recurring (fired once, then discarded), recurring
// (per-agent trigger/update tasks), finalize-recurring, and finalize (fired
// once at shutdown). It also tracks the bounded window of scheduled
// timestamps every task's cadence has been projected into, expanding the
// window in whole ScheduledTimestampsInterval steps as the simulation
// advances past its current upper bound.
type SchedulerTasks struct {
	bootstrap         *taskMultiset
	common            *taskMultiset
	nonRecurring      *taskMultiset
	recurring         *taskMultiset
	finalizeRecurring *taskMultiset
	finalize          *taskMultiset

	scheduledTimestamps map[int]struct{}

	interval   int
	lowerBound int
	upperBound int
}

// NewSchedulerTasks constructs a SchedulerTasks seeded with the bootstrap,
// common, finalize-recurring and finalize task lists, which never change
// size over the run, and primes the scheduled-timestamp window to
// [0, interval].
func NewSchedulerTasks(bootstrap, common, finalizeRecurring, finalize []model.TaskItem, interval int) *SchedulerTasks {
	s := &SchedulerTasks{
		bootstrap:           newTaskMultiset(bootstrap),
		common:              newTaskMultiset(common),
		nonRecurring:        newTaskMultiset(nil),
		recurring:           newTaskMultiset(nil),
		finalizeRecurring:   newTaskMultiset(finalizeRecurring),
		finalize:            newTaskMultiset(finalize),
		scheduledTimestamps: make(map[int]struct{}),
		interval:            interval,
		lowerBound:          0,
		upperBound:          interval,
	}
	s.createNewScheduledTimestamps()
	return s
}

// ScheduleNewRecurringTasks inserts newTasks into the per-agent recurring
// set and projects their cadence into the current timestamp window.
func (s *SchedulerTasks) ScheduleNewRecurringTasks(newTasks []model.TaskItem) {
	s.scheduleNewTasks(s.recurring, newTasks)
}

// ScheduleNewNonRecurringTasks inserts newTasks into the one-shot set,
// consumed (and cleared) the next time their timestamp is reached.
func (s *SchedulerTasks) ScheduleNewNonRecurringTasks(newTasks []model.TaskItem) {
	s.scheduleNewTasks(s.nonRecurring, newTasks)
}

func (s *SchedulerTasks) scheduleNewTasks(set *taskMultiset, newTasks []model.TaskItem) {
	for _, task := range newTasks {
		set.add(task)
		s.updateScheduledTimestampsFor(task.CycleTime, task.Delay)
	}
}

// DeleteAgentTasks drops every recurring and non-recurring task belonging
// to each of agentIDs (a just-spawned agent can be torn down again before
// its first recurring task ever fires) and recomputes the timestamp window
// since removed tasks may have been the only contributor of some entries.
func (s *SchedulerTasks) DeleteAgentTasks(agentIDs []int) {
	for _, id := range agentIDs {
		s.recurring.deleteAgentTasks(id)
		s.nonRecurring.deleteAgentTasks(id)
	}
	if len(agentIDs) > 0 {
		s.createNewScheduledTimestamps()
	}
}

// updateScheduledTimestampsFor inserts every timestamp within the current
// window at which a task of the given cadence fires. A zero cycle time
// (init task) contributes only its own delay.
func (s *SchedulerTasks) updateScheduledTimestampsFor(cycleTime, delay int) {
	if delay > s.lowerBound && delay < s.upperBound {
		s.scheduledTimestamps[delay] = struct{}{}
	}
	if cycleTime == 0 {
		return
	}

	current := cycleTime + delay
	skipped := 0
	if diff := s.lowerBound - current + cycleTime - 1; diff > 0 {
		skipped = diff / cycleTime
	}
	current += cycleTime * skipped

	for current <= s.upperBound {
		s.scheduledTimestamps[current] = struct{}{}
		current += cycleTime
	}
}

func (s *SchedulerTasks) updateScheduledTimestampsForSet(set *taskMultiset) {
	for _, task := range set.items {
		s.updateScheduledTimestampsFor(task.CycleTime, task.Delay)
	}
}

// createNewScheduledTimestamps rebuilds the scheduled-timestamp set from
// scratch for the current [lowerBound, upperBound] window.
func (s *SchedulerTasks) createNewScheduledTimestamps() {
	s.scheduledTimestamps = make(map[int]struct{})
	s.scheduledTimestamps[s.lowerBound] = struct{}{}
	s.scheduledTimestamps[s.upperBound] = struct{}{}

	s.updateScheduledTimestampsForSet(s.common)
	s.updateScheduledTimestampsForSet(s.recurring)
	s.updateScheduledTimestampsForSet(s.nonRecurring)
}

// expandUpperBoundary slides the timestamp window forward in whole
// interval-sized steps until it covers timestamp, rebuilding the scheduled
// set after every step. The window never moves backward.
func (s *SchedulerTasks) expandUpperBoundary(timestamp int) {
	for timestamp >= s.upperBound {
		s.upperBound += s.interval
		s.lowerBound += s.interval
		s.createNewScheduledTimestamps()
	}
}

// GetNextTimestamp returns the smallest scheduled timestamp strictly
// greater than timestamp, expanding the window as needed to find one.
func (s *SchedulerTasks) GetNextTimestamp(timestamp int) (int, error) {
	s.expandUpperBoundary(timestamp)

	best := -1
	for t := range s.scheduledTimestamps {
		if t > timestamp && (best == -1 || t < best) {
			best = t
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("scheduler: no scheduled timestamp found after %d", timestamp)
	}
	return best, nil
}

// GetCommonTasks returns the common (not agent-scoped) tasks due at
// timestamp.
func (s *SchedulerTasks) GetCommonTasks(timestamp int) []model.TaskItem {
	return s.common.dueAt(timestamp, nil)
}

// ConsumeNonRecurringTasks returns the non-recurring tasks due at
// timestamp and clears the non-recurring set (every non-recurring task
// fires at most once, regardless of whether its timestamp matched).
func (s *SchedulerTasks) ConsumeNonRecurringTasks(timestamp int) []model.TaskItem {
	due := s.nonRecurring.dueAt(timestamp, nil)
	s.nonRecurring.clear()
	return due
}

// GetRecurringTasks returns the per-agent recurring and finalize-recurring
// tasks due at timestamp.
func (s *SchedulerTasks) GetRecurringTasks(timestamp int) []model.TaskItem {
	due := s.recurring.dueAt(timestamp, nil)
	return s.finalizeRecurring.dueAt(timestamp, due)
}

// GetBootstrapTasks returns the one-time startup tasks, in priority order.
func (s *SchedulerTasks) GetBootstrapTasks() []model.TaskItem {
	return append([]model.TaskItem(nil), s.bootstrap.items...)
}

// GetFinalizeTasks returns the one-time shutdown tasks, in priority order.
func (s *SchedulerTasks) GetFinalizeTasks() []model.TaskItem {
	return append([]model.TaskItem(nil), s.finalize.items...)
}

// GetTasks returns every task due at timestamp across common,
// non-recurring, recurring and finalize-recurring sets, expanding the
// window first. It returns nil if timestamp is not itself a scheduled
// timestamp.
func (s *SchedulerTasks) GetTasks(timestamp int) []model.TaskItem {
	s.expandUpperBoundary(timestamp)
	if _, ok := s.scheduledTimestamps[timestamp]; !ok {
		return nil
	}

	var due []model.TaskItem
	due = s.common.dueAt(timestamp, due)
	due = append(due, s.ConsumeNonRecurringTasks(timestamp)...)
	due = s.recurring.dueAt(timestamp, due)
	due = s.finalizeRecurring.dueAt(timestamp, due)
	return due
}
