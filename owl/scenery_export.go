package owl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// ExportSceneryPolylines writes every lane geometry element's quadrilateral
// as a closed polyline, one line per element, so downstream evaluation
// tools can render the scenery without re-deriving it from the road
// network's internal representation. This is the "scenery and object
// geometries emitted as polylines" output named in §6 External Interfaces.
//
// Line format: "roadID;sectionIdx;laneIdx;elementIdx;x0,y0;x1,y1;x2,y2;x3,y3;x0,y0"
// (the quadrilateral's four corners A,B,C,D, closed back to A).
func ExportSceneryPolylines(network *Network, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ExportSceneryPolylines: create %s: %w", path, err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	for _, road := range network.RoadsInOrder() {
		for sectionIdx, section := range road.Sections {
			for laneIdx, lane := range section.Lanes {
				for elementIdx, elem := range lane.Elements {
					line := fmt.Sprintf("%s;%d;%d;%d;%s;%s;%s;%s;%s",
						road.ID, sectionIdx, laneIdx, elementIdx,
						point(elem.A), point(elem.B), point(elem.C), point(elem.D), point(elem.A))
					if _, err := fmt.Fprintln(buf, line); err != nil {
						return fmt.Errorf("ExportSceneryPolylines: write: %w", err)
					}
				}
			}
		}
	}
	return buf.Flush()
}

func point(p model.Vector2d) string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}
