package core

import (
	"errors"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

type fakeSpawnPoint struct {
	blueprint *model.AgentBlueprint
	due       int
}

func (f *fakeSpawnPoint) NextAgentBlueprint(timestamp int) (*model.AgentBlueprint, bool) {
	if timestamp != f.due || f.blueprint == nil {
		return nil, false
	}
	bp := *f.blueprint
	f.blueprint = nil
	return &bp, true
}

type fakeWorld struct {
	leader *model.Agent
}

func (f *fakeWorld) LeadingAgent(lane model.LaneRef, s float64) (*model.Agent, bool) {
	if f.leader == nil {
		return nil, false
	}
	return f.leader, true
}

type fakeFactory struct {
	nextID int
	fail   bool
}

func (f *fakeFactory) InstantiateAgent(blueprint model.AgentBlueprint, timestamp int) (*model.Agent, error) {
	if f.fail {
		return nil, errors.New("instantiation failed")
	}
	f.nextID++
	a := model.NewAgent(f.nextID, 0, blueprint.VehicleParams)
	a.State.VelLon = blueprint.VelocityLon
	a.Localization.Reference.S = blueprint.S
	return a, nil
}

func TestSpawnControlPlacesAgentWithNoLeader(t *testing.T) {
	sp := &fakeSpawnPoint{due: 0, blueprint: &model.AgentBlueprint{S: 0, VelocityLon: 20, VehicleParams: model.VehicleParameters{LengthM: 4.5}}}
	world := &fakeWorld{}
	factory := &fakeFactory{}
	sc := NewSpawnControl([]SpawnPoint{sp}, world, factory, 1000)

	if err := sc.Execute(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agents := sc.PullNewAgents()
	if len(agents) != 1 {
		t.Fatalf("expected one spawned agent, got %d", len(agents))
	}
}

func TestSpawnControlAdaptsVelocityToAvoidOverlap(t *testing.T) {
	leader := model.NewAgent(1, 0, model.VehicleParameters{LengthM: 4.5})
	leader.State.VelLon = 10
	leader.Localization.Reference.S = 5.0

	blueprint := &model.AgentBlueprint{S: 0, VelocityLon: 30, VehicleParams: model.VehicleParameters{LengthM: 4.5}}
	sc := &SpawnControl{world: &fakeWorld{leader: leader}}

	ok := sc.AdaptVelocityForAgentBlueprint(blueprint)
	if !ok {
		t.Fatalf("expected velocity adaptation to resolve the overlap")
	}
	if blueprint.VelocityLon >= 30 {
		t.Fatalf("expected velocity to be reduced from 30, got %f", blueprint.VelocityLon)
	}
}

func TestSpawnControlCalculateHoldbackTimeFindsDelay(t *testing.T) {
	leader := model.NewAgent(1, 0, model.VehicleParameters{LengthM: 4.5})
	leader.State.VelLon = 15
	leader.Localization.Reference.S = 6.0

	blueprint := &model.AgentBlueprint{S: 0, VelocityLon: 15, VehicleParams: model.VehicleParameters{LengthM: 4.5}}
	sc := &SpawnControl{world: &fakeWorld{leader: leader}}

	holdback := sc.CalculateHoldbackTime(blueprint)
	if holdback < 0 {
		t.Fatalf("expected a feasible hold-back delay, got -1")
	}
	if holdback > holdbackSearchLimitMs {
		t.Fatalf("expected hold-back delay within the search window, got %d", holdback)
	}
}

func TestSpawnControlScenarioAgentReportsIncompleteScenario(t *testing.T) {
	leader := model.NewAgent(1, 0, model.VehicleParameters{LengthM: 100})
	leader.State.VelLon = 0
	leader.Localization.Reference.S = 0.1

	blueprint := &model.AgentBlueprint{S: 0, VelocityLon: 0, IsScenarioAgent: true, VehicleParams: model.VehicleParameters{LengthM: 100}}
	sp := &fakeSpawnPoint{due: 0, blueprint: blueprint}
	world := &fakeWorld{leader: leader}
	sc := NewSpawnControl([]SpawnPoint{sp}, world, &fakeFactory{}, 1000)

	err := sc.Execute(0)
	if err == nil {
		t.Fatalf("expected an error for an unplaceable scenario agent")
	}
	if !errors.Is(err, schederr.ErrIncompleteScenario) {
		t.Fatalf("expected ErrIncompleteScenario, got %v", err)
	}
}

func TestSpawnControlNonScenarioAgentReportsAgentGenerationError(t *testing.T) {
	leader := model.NewAgent(1, 0, model.VehicleParameters{LengthM: 100})
	leader.State.VelLon = 0
	leader.Localization.Reference.S = 0.1

	blueprint := &model.AgentBlueprint{S: 0, VelocityLon: 0, IsScenarioAgent: false, VehicleParams: model.VehicleParameters{LengthM: 100}}
	sp := &fakeSpawnPoint{due: 0, blueprint: blueprint}
	world := &fakeWorld{leader: leader}
	sc := NewSpawnControl([]SpawnPoint{sp}, world, &fakeFactory{}, 1000)

	err := sc.Execute(0)
	if !errors.Is(err, schederr.ErrAgentGenerationError) {
		t.Fatalf("expected ErrAgentGenerationError, got %v", err)
	}
}
