package core

import (
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func noopBool() bool { return true }

func TestSchedulerTasksRecurringCadence(t *testing.T) {
	st := NewSchedulerTasks(nil, nil, nil, nil, 1000)

	st.ScheduleNewRecurringTasks([]model.TaskItem{
		model.NewTriggerTask(1, 10, 100, 0, noopBool),
	})

	for _, ts := range []int{0, 100, 200, 300} {
		due := st.GetRecurringTasks(ts)
		if len(due) != 1 {
			t.Fatalf("timestamp %d: expected 1 due task, got %d", ts, len(due))
		}
	}
	due := st.GetRecurringTasks(150)
	if len(due) != 0 {
		t.Fatalf("timestamp 150: expected 0 due tasks, got %d", len(due))
	}
}

func TestSchedulerTasksNonRecurringConsumedOnce(t *testing.T) {
	st := NewSchedulerTasks(nil, nil, nil, nil, 1000)
	st.ScheduleNewNonRecurringTasks([]model.TaskItem{
		model.NewSpawningTask(0, noopBool),
	})

	first := st.ConsumeNonRecurringTasks(0)
	if len(first) != 1 {
		t.Fatalf("expected 1 task on first consume, got %d", len(first))
	}
	second := st.ConsumeNonRecurringTasks(0)
	if len(second) != 0 {
		t.Fatalf("expected 0 tasks on second consume (already pulled), got %d", len(second))
	}
}

func TestSchedulerTasksDeleteAgentTasks(t *testing.T) {
	st := NewSchedulerTasks(nil, nil, nil, nil, 1000)
	st.ScheduleNewRecurringTasks([]model.TaskItem{
		model.NewTriggerTask(7, 10, 100, 0, noopBool),
		model.NewTriggerTask(8, 10, 100, 0, noopBool),
	})

	st.DeleteAgentTasks([]int{7})
	due := st.GetRecurringTasks(100)
	if len(due) != 1 || due[0].AgentID != 8 {
		t.Fatalf("expected only agent 8's task to remain, got %+v", due)
	}
}

func TestSchedulerTasksWindowExpandsInWholeIntervals(t *testing.T) {
	st := NewSchedulerTasks(nil, nil, nil, nil, 1000)
	st.ScheduleNewRecurringTasks([]model.TaskItem{
		model.NewTriggerTask(1, 10, 400, 0, noopBool),
	})

	next, err := st.GetNextTimestamp(3500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 3600 {
		t.Fatalf("expected next timestamp 3600, got %d", next)
	}
	if st.upperBound < 3500 || st.upperBound%st.interval != 0 {
		t.Fatalf("expected upper bound to expand in whole %d-ms steps, got %d", st.interval, st.upperBound)
	}
}

func TestSchedulerTasksPriorityOrdering(t *testing.T) {
	bootstrap := []model.TaskItem{
		model.NewObservationTask(0, noopBool),
		model.NewSpawningTask(0, noopBool),
		model.NewManipulatorTask(0, func() {}),
	}
	st := NewSchedulerTasks(bootstrap, nil, nil, nil, 1000)
	tasks := st.GetBootstrapTasks()
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].Priority < tasks[i].Priority {
			t.Fatalf("expected descending priority order, got %+v", tasks)
		}
	}
	if tasks[0].Type != model.TaskSpawning {
		t.Fatalf("expected spawning task (highest priority) first, got %v", tasks[0].Type)
	}
}

func TestSchedulerTasksCommonTasksFireOnCadence(t *testing.T) {
	common := []model.TaskItem{
		model.NewSyncGlobalDataTask(100, func() {}),
	}
	st := NewSchedulerTasks(nil, common, nil, nil, 1000)
	if len(st.GetCommonTasks(0)) != 1 {
		t.Fatalf("expected common task due at t=0")
	}
	if len(st.GetCommonTasks(50)) != 0 {
		t.Fatalf("expected no common task due at t=50")
	}
}
