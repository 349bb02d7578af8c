package core

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/owl"
)

func TestCSVObserverWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	observer, err := NewCSVObserver(dir)
	if err != nil {
		t.Fatalf("NewCSVObserver: %v", err)
	}

	w := NewWorld(owl.NewNetwork())
	agent, err := w.InstantiateAgent(model.AgentBlueprint{
		VehicleParams: model.VehicleParameters{LengthM: 4.5, WidthM: 1.8},
		VelocityLon:   10,
	}, 0)
	if err != nil {
		t.Fatalf("InstantiateAgent: %v", err)
	}
	agent.State.X = 12.5
	agent.State.Y = -3

	if err := observer.Observe(w, 0); err != nil {
		t.Fatalf("Observe(0): %v", err)
	}
	agent.State.X = 15
	if err := observer.Observe(w, 100); err != nil {
		t.Fatalf("Observe(100): %v", err)
	}
	if err := observer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, observer.RunID()+"_agent_"+itoa(agent.ID)+".csv")
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines: %v", len(lines), lines)
	}

	headerCols := strings.Split(lines[0], ";")
	for i, line := range lines[1:] {
		cols := strings.Split(line, ";")
		if len(cols) != len(headerCols) {
			t.Fatalf("row %d has %d columns, want %d (header)", i, len(cols), len(headerCols))
		}
	}
	if !strings.Contains(lines[1], "12.5") {
		t.Fatalf("expected first row to contain XPos 12.5, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "15") {
		t.Fatalf("expected second row to contain XPos 15, got %q", lines[2])
	}
}

func TestCSVObserverSkipsInvalidAgents(t *testing.T) {
	dir := t.TempDir()
	observer, err := NewCSVObserver(dir)
	if err != nil {
		t.Fatalf("NewCSVObserver: %v", err)
	}
	defer observer.Close()

	w := NewWorld(owl.NewNetwork())
	agent, _ := w.InstantiateAgent(model.AgentBlueprint{VehicleParams: model.VehicleParameters{LengthM: 4.5}}, 0)
	agent.Invalidate()

	if err := observer.Observe(w, 0); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(observer.writers) != 0 {
		t.Fatalf("expected no writer opened for an invalid agent")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
