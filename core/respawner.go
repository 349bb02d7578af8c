package core

import "github.com/hlrs-vis/openpass-sub007/model"

// RespawnSource is a spawn point capable of producing a replacement agent
// for one that left the world.
type RespawnSource interface {
	RespawnAgent(time int) *model.Agent
}

// TaskScheduler is the subset of the scheduler core that Respawn needs:
// registering a freshly respawned agent's tasks.
type TaskScheduler interface {
	ScheduleAgentTasks(agent *model.Agent)
}

// AgentRespawner implements the Respawner collaborator EventNetwork
// dispatches to: it asks its spawn point for a replacement agent and, if
// valid, hands its tasks to the scheduler. It satisfies the package's
// Respawner interface.
type AgentRespawner struct {
	scheduler  TaskScheduler
	spawnPoint RespawnSource
}

// NewAgentRespawner constructs a respawner bound to one spawn point.
func NewAgentRespawner(scheduler TaskScheduler, spawnPoint RespawnSource) *AgentRespawner {
	return &AgentRespawner{scheduler: scheduler, spawnPoint: spawnPoint}
}

// RespawnAgent asks the spawn point to produce a replacement agent at time
// and, if it is valid, schedules its tasks.
func (r *AgentRespawner) RespawnAgent(time int) {
	if r.spawnPoint == nil {
		return
	}
	agent := r.spawnPoint.RespawnAgent(time)
	if agent != nil && agent.IsValid() {
		r.scheduler.ScheduleAgentTasks(agent)
	}
}
