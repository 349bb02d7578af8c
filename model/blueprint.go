package model

// AgentBlueprint is a proposed agent awaiting placement: a spawn point's
// lane/position/velocity pick plus the vehicle parameters it would carry
// if instantiated. SpawnControl may adjust VelocityLon or delay the
// blueprint before it becomes an Agent.
type AgentBlueprint struct {
	Lane            LaneRef
	S               float64
	VelocityLon     float64
	AccelLon        float64
	VehicleParams   VehicleParameters
	IsScenarioAgent bool
}
