package owl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func TestExportSceneryPolylinesWritesOneLinePerElement(t *testing.T) {
	network := NewNetwork()
	elem := BuildQuadrilateral(model.Vector2d{X: 0, Y: 0}, 0, 10, 1.75, 1.75, 0)
	network.AddRoad(&Road{
		ID: "r1",
		Sections: []Section{
			{Lanes: []Lane{{Elements: []LaneGeometryElement{elem}}}},
		},
	})

	path := filepath.Join(t.TempDir(), "scenery.csv")
	if err := ExportSceneryPolylines(network, path); err != nil {
		t.Fatalf("ExportSceneryPolylines: %v", err)
	}

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
	if len(lines) != 1 {
		t.Fatalf("expected exactly 1 line for 1 element, got %d: %v", len(lines), lines)
	}

	fields := strings.Split(lines[0], ";")
	if len(fields) != 9 {
		t.Fatalf("expected 9 fields (road;section;lane;element;4 corners;closing corner), got %d: %v", len(fields), fields)
	}
	if fields[0] != "r1" || fields[1] != "0" || fields[2] != "0" || fields[3] != "0" {
		t.Fatalf("unexpected identity fields: %v", fields[:4])
	}
	if fields[4] != fields[8] {
		t.Fatalf("expected the polyline to close back to its first point, got %q != %q", fields[4], fields[8])
	}
	if !strings.Contains(fields[4], ",") {
		t.Fatalf("expected corner field to be an x,y pair, got %q", fields[4])
	}
}

func TestExportSceneryPolylinesMultipleElements(t *testing.T) {
	network := NewNetwork()
	elemA := BuildQuadrilateral(model.Vector2d{X: 0, Y: 0}, 0, 10, 1.75, 1.75, 0)
	elemB := BuildQuadrilateral(model.Vector2d{X: 10, Y: 0}, 0, 10, 1.75, 1.75, 10)
	network.AddRoad(&Road{
		ID: "r1",
		Sections: []Section{
			{Lanes: []Lane{{Elements: []LaneGeometryElement{elemA, elemB}}}},
		},
	})

	path := filepath.Join(t.TempDir(), "scenery.csv")
	if err := ExportSceneryPolylines(network, path); err != nil {
		t.Fatalf("ExportSceneryPolylines: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 2 elements, got %d: %v", len(lines), lines)
	}
}
