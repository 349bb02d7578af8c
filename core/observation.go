package core

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hlrs-vis/openpass-sub007/model"
)

// csvHeader names every column CSVObserver writes, in order. Every row's
// column count matches it, per §6's "Persisted output" contract.
var csvHeader = []string{
	"Time", "XPos", "YPos", "Yaw",
	"VelLon", "VelLat", "YawRate",
	"AccLon", "AccLat",
	"Road", "Lane", "S", "T",
}

// CSVObserver is the Observer that samples every valid agent's kinematic
// and road-position state once per tick and appends it to a per-agent
// ";"-separated CSV file under outputDir, named by a run id unique to
// this invocation so that concurrent/successive runs never collide.
type CSVObserver struct {
	outputDir string
	runID     string

	writers map[int]*csvAgentWriter
}

type csvAgentWriter struct {
	file *os.File
	buf  *bufio.Writer
}

// NewCSVObserver constructs an observer writing into outputDir, creating
// it if necessary. The run id disambiguates output from other
// invocations writing into the same results directory.
func NewCSVObserver(outputDir string) (*CSVObserver, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("NewCSVObserver: create output dir: %w", err)
	}
	return &CSVObserver{
		outputDir: outputDir,
		runID:     uuid.NewString(),
		writers:   make(map[int]*csvAgentWriter),
	}, nil
}

// RunID returns the identifier this observer stamps into output filenames.
func (o *CSVObserver) RunID() string { return o.runID }

// Observe appends one row per valid agent to its CSV file, opening and
// writing the header on first sight of that agent id. It never mutates
// simulation state.
func (o *CSVObserver) Observe(world *World, time int) error {
	for _, agent := range world.Agents() {
		if !agent.IsValid() {
			continue
		}
		w, err := o.writerFor(agent.ID)
		if err != nil {
			return err
		}
		if err := w.writeRow(agent, time); err != nil {
			return fmt.Errorf("Observe: agent %d: %w", agent.ID, err)
		}
	}
	return nil
}

// Close flushes and closes every open per-agent file. Callers should defer
// it after constructing the observer.
func (o *CSVObserver) Close() error {
	var firstErr error
	for _, w := range o.writers {
		if err := w.buf.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := w.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (o *CSVObserver) writerFor(agentID int) (*csvAgentWriter, error) {
	if w, ok := o.writers[agentID]; ok {
		return w, nil
	}

	path := filepath.Join(o.outputDir, fmt.Sprintf("%s_agent_%d.csv", o.runID, agentID))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("writerFor: create %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	if _, err := fmt.Fprintln(buf, joinSemicolon(csvHeader)); err != nil {
		file.Close()
		return nil, fmt.Errorf("writerFor: write header: %w", err)
	}

	w := &csvAgentWriter{file: file, buf: buf}
	o.writers[agentID] = w
	return w, nil
}

func (w *csvAgentWriter) writeRow(agent *model.Agent, time int) error {
	ref := agent.Localization.Reference
	row := []string{
		fmt.Sprintf("%d", time),
		fmt.Sprintf("%g", agent.State.X),
		fmt.Sprintf("%g", agent.State.Y),
		fmt.Sprintf("%g", agent.State.Yaw),
		fmt.Sprintf("%g", agent.State.VelLon),
		fmt.Sprintf("%g", agent.State.VelLat),
		fmt.Sprintf("%g", agent.State.YawRate),
		fmt.Sprintf("%g", agent.State.AccLon),
		fmt.Sprintf("%g", agent.State.AccLat),
		ref.Lane.RoadID,
		fmt.Sprintf("%d", ref.Lane.LaneIdx),
		fmt.Sprintf("%g", ref.S),
		fmt.Sprintf("%g", ref.T),
	}
	_, err := fmt.Fprintln(w.buf, joinSemicolon(row))
	return err
}

func joinSemicolon(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += ";" + f
	}
	return out
}
