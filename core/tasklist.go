package core

import (
	"sort"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// taskMultiset holds TaskItems in the total order model.TaskItem.Less
// defines, mirroring std::multiset<TaskItem>'s always-sorted storage. Go
// has no ordered multiset in the standard library, so entries are kept in
// a slice and re-sorted on insert; the scheduler's task counts per tick are
// small enough that this is not a bottleneck.
type taskMultiset struct {
	items []model.TaskItem
}

func newTaskMultiset(seed []model.TaskItem) *taskMultiset {
	t := &taskMultiset{items: append([]model.TaskItem(nil), seed...)}
	t.resort()
	return t
}

func (t *taskMultiset) resort() {
	sort.SliceStable(t.items, func(i, j int) bool { return t.items[i].Less(t.items[j]) })
}

func (t *taskMultiset) add(item model.TaskItem) {
	t.items = append(t.items, item)
	t.resort()
}

// deleteAgentTasks removes every task belonging to agentID.
func (t *taskMultiset) deleteAgentTasks(agentID int) {
	kept := t.items[:0]
	for _, item := range t.items {
		if item.AgentID != agentID {
			kept = append(kept, item)
		}
	}
	t.items = kept
}

func (t *taskMultiset) clear() {
	t.items = t.items[:0]
}

// dueAt appends every task in t that fires at timestamp to out, in the
// multiset's priority/type order. A CycleTime of 0 marks an init task that
// always fires when asked (callers only ask at its Delay timestamp, since
// that is the only scheduled timestamp it contributed).
func (t *taskMultiset) dueAt(timestamp int, out []model.TaskItem) []model.TaskItem {
	for _, item := range t.items {
		if item.CycleTime == 0 {
			out = append(out, item)
			continue
		}
		if (timestamp-item.Delay)%item.CycleTime == 0 {
			out = append(out, item)
		}
	}
	return out
}
