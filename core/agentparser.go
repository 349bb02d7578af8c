package core

import (
	"context"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// AgentParser walks a newly spawned agent's component map and produces one
// Trigger task plus Update tasks for every output port and every target it
// fans out to, split into init-flagged (non-recurring) and regular
// (recurring) task lists. currentTime is a pointer the scheduler updates
// once per tick; every closure this parser builds reads through it at call
// time rather than capturing a fixed tick value, mirroring the original
// engine's reference-bound currentTime member.
type AgentParser struct {
	currentTime *int
	ctx         context.Context
	bus         *Bus
}

// NewAgentParser constructs a parser bound to the scheduler's live tick
// counter and the component bus used to dispatch Update tasks.
func NewAgentParser(currentTime *int, bus *Bus, ctx context.Context) *AgentParser {
	return &AgentParser{currentTime: currentTime, bus: bus, ctx: ctx}
}

// Parse emits the trigger/update task items for every component of agent,
// appending init-flagged components' tasks to nonRecurring and the rest to
// recurring.
func (p *AgentParser) Parse(agent *model.Agent) (nonRecurring, recurring []model.TaskItem) {
	channelsBySource := make(map[model.ComponentID][]model.Channel)
	for _, ch := range agent.Channels {
		channelsBySource[ch.SourceComponent] = append(channelsBySource[ch.SourceComponent], ch)
	}

	for _, component := range agent.Components {
		priority := component.Priority()
		cycleTime := component.CycleTimeMs()
		triggerDelay := component.OffsetMs()
		updateDelay := component.ResponseTimeMs()
		agentID := agent.ID

		var taskItems []model.TaskItem

		comp := component
		taskItems = append(taskItems, model.NewTriggerTask(agentID, priority, cycleTime, triggerDelay, func() bool {
			return comp.Trigger(p.ctx, *p.currentTime) == nil
		}))

		for _, ch := range channelsBySource[component.ID()] {
			channel := ch
			taskItems = append(taskItems, model.NewUpdateTask(agentID, priority, cycleTime, updateDelay, func() bool {
				return p.bus.PublishOutput(comp, channel, *p.currentTime) == nil
			}))

			for _, target := range channel.Targets {
				targetComponent, ok := agent.Components[target.Component]
				if !ok {
					continue
				}
				tc := targetComponent
				tgt := target
				taskItems = append(taskItems, model.NewUpdateTask(agentID, priority, cycleTime, updateDelay, func() bool {
					return p.bus.DeliverInput(tc, channel, tgt, *p.currentTime) == nil
				}))
			}
		}

		if component.IsInit() {
			nonRecurring = append(nonRecurring, taskItems...)
		} else {
			recurring = append(recurring, taskItems...)
		}
	}

	return nonRecurring, recurring
}
