// Command slave executes a single openPASS simulation run: it loads the
// experiment's configuration files, builds the road network and agent
// population they describe, drives the scheduler to completion, and
// writes per-agent CSV output and a scenery polyline export alongside it.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hlrs-vis/openpass-sub007/config"
	"github.com/hlrs-vis/openpass-sub007/core"
	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/internal/observability"
	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/owl"
	"github.com/hlrs-vis/openpass-sub007/timectrl"
)

const (
	defaultLogFile     = "OpenPassSlave.log"
	defaultLibraryPath = "lib"
	defaultConfigsPath = "configs"
	defaultResultsPath = "results"

	defaultRunStartMs   = 0
	defaultRunEndMs     = 10000
	frameworkCycleTimeMs = 100

	sectionLengthM = 1000.0
	elementChunkM  = 50.0
	laneHalfWidthM = 1.75

	defaultComponentPriority = 0
	defaultComponentCycleMs  = 100
)

func main() {
	var (
		logLevel    int
		logFile     string
		libraryPath string
		configsPath string
		resultsPath string
	)

	cmd := &cobra.Command{
		Use:   "slave",
		Short: "Run a single openPASS simulation invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				logLevel:    logLevel,
				logFile:     logFile,
				libraryPath: libraryPath,
				configsPath: configsPath,
				resultsPath: resultsPath,
			})
		},
	}

	cmd.Flags().IntVar(&logLevel, "logLevel", 0, "log verbosity, 0 (errors only) through 5 (everything)")
	cmd.Flags().StringVar(&logFile, "logFile", defaultLogFile, "path to the slave's own log file")
	cmd.Flags().StringVar(&libraryPath, "lib", defaultLibraryPath, "path to the experiment's plug-in libraries")
	cmd.Flags().StringVar(&configsPath, "configs", defaultConfigsPath, "path to the slave's configuration directory")
	cmd.Flags().StringVar(&resultsPath, "results", defaultResultsPath, "path to write per-run CSV and scenery output")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	logLevel    int
	logFile     string
	libraryPath string
	configsPath string
	resultsPath string
}

func run(opts runOptions) error {
	log := logging.New(logging.Config{Level: levelName(opts.logLevel), Format: "text"})
	ctx := context.Background()
	log.Info(ctx, "starting slave invocation",
		logging.Int("logLevel", opts.logLevel),
		logging.String("logFile", opts.logFile),
		logging.String("lib", opts.libraryPath),
		logging.String("configs", opts.configsPath),
		logging.String("results", opts.resultsPath),
	)

	slaveConfig, scenario, profiles, err := loadConfigs(opts.configsPath)
	if err != nil {
		log.Error(ctx, "configuration error", logging.String("error", err.Error()))
		return err
	}
	log.Debug(ctx, "resolved experiment libraries",
		logging.String("eventDetector", slaveConfig.Libraries.EventDetector),
		logging.String("manipulator", slaveConfig.Libraries.Manipulator),
		logging.String("observation", slaveConfig.Libraries.Observation),
		logging.String("spawnPoint", slaveConfig.Libraries.SpawnPoint),
		logging.String("world", slaveConfig.Libraries.World),
	)

	reg := prometheus.NewRegistry()
	runMetrics, err := observability.NewRunCollector(reg)
	if err != nil {
		return fmt.Errorf("run: metrics setup: %w", err)
	}
	locMetrics, err := observability.NewLocalizationCollector(reg)
	if err != nil {
		return fmt.Errorf("run: localization metrics setup: %w", err)
	}

	network := buildNetwork(scenario)
	world := core.NewWorld(network)
	world.SetLocalizationMetrics(locMetrics)
	world.SetLogger(log)

	index, err := buildComponentIndex(scenario, profiles)
	if err != nil {
		return err
	}
	factory := &componentFactory{world: world, index: index}

	spawnPoints, err := buildSpawnPoints(scenario, profiles)
	if err != nil {
		return err
	}
	spawnControl := core.NewSpawnControl(spawnPoints, world, factory, frameworkCycleTimeMs, core.WithSpawnControlLogger(log))

	clock := timectrl.NewTickClock(time.Now())
	scheduler := core.NewScheduler(world, spawnControl, core.WithClock(clock), core.WithMetrics(runMetrics), core.WithLogger(log))
	scheduler.AddEventDetector(core.NewCollisionDetector())
	scheduler.AddManipulator(core.NewCollisionManipulator())

	if err := os.MkdirAll(opts.resultsPath, 0o755); err != nil {
		return fmt.Errorf("run: create results dir: %w", err)
	}
	observer, err := core.NewCSVObserver(opts.resultsPath)
	if err != nil {
		return fmt.Errorf("run: csv observer: %w", err)
	}
	defer observer.Close()
	scheduler.AddObserver(observer)

	if err := owl.ExportSceneryPolylines(network, filepath.Join(opts.resultsPath, "scenery.csv")); err != nil {
		log.Warn(ctx, "scenery export failed", logging.String("error", err.Error()))
	}

	runResult := core.NewRunResult()
	eventNetwork := core.NewEventNetwork(core.WithEventNetworkLogger(log))

	state, runErr := scheduler.Run(defaultRunStartMs, defaultRunEndMs, runResult, eventNetwork)
	log.Info(ctx, "run finished",
		logging.String("runId", observer.RunID()),
		logging.String("outcome", state.String()),
	)
	if runErr != nil {
		log.Error(ctx, "run aborted", logging.String("error", runErr.Error()))
	}
	if state != core.SchedulerNoError {
		return runErr
	}
	return nil
}

func loadConfigs(configsPath string) (*config.SlaveConfig, *config.Scenario, *config.ProfilesCatalog, error) {
	slaveFile, err := os.Open(filepath.Join(configsPath, "slaveConfig.json"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loadConfigs: %w", err)
	}
	defer slaveFile.Close()
	slaveConfig, err := config.LoadSlaveConfig(slaveFile)
	if err != nil {
		return nil, nil, nil, err
	}

	scenarioFile, err := os.Open(slaveConfig.ScenarioPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loadConfigs: %w", err)
	}
	defer scenarioFile.Close()
	scenario, err := config.LoadScenario(scenarioFile)
	if err != nil {
		return nil, nil, nil, err
	}

	profilesFile, err := os.Open(slaveConfig.ProfilesCatalogPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loadConfigs: %w", err)
	}
	defer profilesFile.Close()
	profiles, err := config.LoadProfilesCatalog(profilesFile)
	if err != nil {
		return nil, nil, nil, err
	}

	return slaveConfig, scenario, profiles, nil
}

// buildNetwork lays out one long straight section per road referenced by
// the scenario, wide enough for every lane index it places an agent on. A
// full scenery importer (e.g. OpenDRIVE) is out of scope for the scheduler
// core this command drives; this is the minimum network that lets every
// scenario agent localize onto a real lane.
func buildNetwork(scenario *config.Scenario) *owl.Network {
	network := owl.NewNetwork()
	laneCounts := make(map[string]int)
	for _, a := range scenario.Agents {
		if n := a.Lane.LaneIdx + 1; n > laneCounts[a.Lane.RoadID] {
			laneCounts[a.Lane.RoadID] = n
		}
	}

	for roadID, laneCount := range laneCounts {
		lanes := make([]owl.Lane, laneCount)
		for laneIdx := 0; laneIdx < laneCount; laneIdx++ {
			var elements []owl.LaneGeometryElement
			for offset := 0.0; offset < sectionLengthM; offset += elementChunkM {
				start := model.Vector2d{X: offset, Y: float64(laneIdx) * 2 * laneHalfWidthM}
				elements = append(elements, owl.BuildQuadrilateral(start, 0, elementChunkM, laneHalfWidthM, laneHalfWidthM, offset))
			}
			lanes[laneIdx] = owl.Lane{
				StreamID: fmt.Sprintf("%s-%d", roadID, laneIdx),
				Elements: elements,
				Left:     owl.LaneRef{LaneIdx: owl.NoNeighbor},
				Right:    owl.LaneRef{LaneIdx: owl.NoNeighbor},
			}
			if laneIdx > 0 {
				lanes[laneIdx].Left = owl.LaneRef{SectionIdx: 0, LaneIdx: laneIdx - 1}
				lanes[laneIdx-1].Right = owl.LaneRef{SectionIdx: 0, LaneIdx: laneIdx}
			}
		}
		network.AddRoad(&owl.Road{ID: roadID, Sections: []owl.Section{{Lanes: lanes}}})
	}
	return network
}

// buildSpawnPoints turns every scenario agent into a FixedBlueprintSpawnPoint
// sized from its named profile.
func buildSpawnPoints(scenario *config.Scenario, profiles *config.ProfilesCatalog) ([]core.SpawnPoint, error) {
	var points []core.SpawnPoint
	for _, a := range scenario.Agents {
		profile, ok := profiles.Lookup(a.ProfileName)
		if !ok {
			return nil, fmt.Errorf("buildSpawnPoints: agent %q references unknown profile %q", a.Name, a.ProfileName)
		}
		blueprint := model.AgentBlueprint{
			Lane:            a.Lane,
			S:               a.S,
			VelocityLon:     a.VelocityLon,
			VehicleParams:   profile.VehicleParams,
			IsScenarioAgent: a.IsScenarioAgent,
		}
		points = append(points, core.NewFixedBlueprintSpawnPoint(0, blueprint))
	}
	return points, nil
}

// spawnKey identifies a scenario agent by its spawn placement, which
// SpawnControl's velocity adaptation never rewrites, unlike the lane
// position itself.
func spawnKey(lane model.LaneRef, s float64) string {
	return fmt.Sprintf("%s|%d|%d|%g", lane.RoadID, lane.SectionIdx, lane.LaneIdx, s)
}

// componentMeta names the component graph buildComponentIndex resolved for
// one scenario agent: a trajectory to play back verbatim, or (absent one) a
// plain two-track dynamics component under zero commanded acceleration.
type componentMeta struct {
	trajectory *model.TrajectorySignal
}

// buildComponentIndex pre-loads every scenario agent's trajectory file (if
// any), surfacing a bad path as a startup configuration error rather than a
// mid-run scheduler abort.
func buildComponentIndex(scenario *config.Scenario, profiles *config.ProfilesCatalog) (map[string]componentMeta, error) {
	index := make(map[string]componentMeta, len(scenario.Agents))
	for _, a := range scenario.Agents {
		if _, ok := profiles.Lookup(a.ProfileName); !ok {
			return nil, fmt.Errorf("buildComponentIndex: agent %q references unknown profile %q", a.Name, a.ProfileName)
		}
		var meta componentMeta
		if a.TrajectoryFile != "" {
			file, err := os.Open(a.TrajectoryFile)
			if err != nil {
				return nil, fmt.Errorf("buildComponentIndex: agent %q: %w", a.Name, err)
			}
			trajectory, err := config.LoadTrajectory(file)
			file.Close()
			if err != nil {
				return nil, fmt.Errorf("buildComponentIndex: agent %q: %w", a.Name, err)
			}
			meta.trajectory = trajectory
		}
		index[spawnKey(a.Lane, a.S)] = meta
	}
	return index, nil
}

// componentFactory wraps World.InstantiateAgent, attaching the component
// graph buildComponentIndex resolved for the blueprint's spawn placement
// before the agent is handed back to SpawnControl. It satisfies
// core.AgentFactory.
type componentFactory struct {
	world *core.World
	index map[string]componentMeta
}

func (f *componentFactory) InstantiateAgent(blueprint model.AgentBlueprint, timestamp int) (*model.Agent, error) {
	agent, err := f.world.InstantiateAgent(blueprint, timestamp)
	if err != nil {
		return nil, err
	}

	meta := f.index[spawnKey(blueprint.Lane, blueprint.S)]
	if meta.trajectory != nil {
		playback := core.NewTrajectoryPlayback("dynamics", defaultComponentPriority, defaultComponentCycleMs, 0, 0, agent, meta.trajectory)
		agent.Components[playback.ID()] = playback
	} else {
		dynamics := core.NewDynamicsTwoTrack("dynamics", defaultComponentPriority, defaultComponentCycleMs, 0, 0, agent)
		agent.Components[dynamics.ID()] = dynamics
	}
	return agent, nil
}

func levelName(level int) string {
	switch {
	case level >= 4:
		return "debug"
	case level >= 2:
		return "info"
	case level >= 1:
		return "warn"
	default:
		return "error"
	}
}
