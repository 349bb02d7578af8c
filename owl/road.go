package owl

import "github.com/hlrs-vis/openpass-sub007/model"

// Section contains an ordered set of Lanes sharing a heading and a road-
// start s-offset. Lane neighbor relations (left/right) are explicit and
// scoped to the section.
type Section struct {
	HeadingRad float64
	StartS     float64 // offset from the road's own start, meters
	Lanes      []Lane
}

// Road contains an ordered list of Sections. Roads are arena-allocated
// within a Network and referenced by ID, never by pointer, so that lane
// streams spanning section/road boundaries stay acyclic and serializable.
type Road struct {
	ID       string
	Sections []Section
}

// Network is the OWL road network: roads containing sections containing
// lanes. It is the read side Localization queries every tick; population
// (from scenery/scenario import) is an external collaborator's job, so
// Network only needs a builder API, not an importer.
type Network struct {
	Roads map[string]*Road
	order []string // insertion order, used when scanning "each road's first section"
}

// NewNetwork constructs an empty road network.
func NewNetwork() *Network {
	return &Network{Roads: make(map[string]*Road)}
}

// AddRoad registers a road, in insertion order, for deterministic scans.
func (n *Network) AddRoad(r *Road) {
	if _, exists := n.Roads[r.ID]; exists {
		return
	}
	n.Roads[r.ID] = r
	n.order = append(n.order, r.ID)
}

// RoadsInOrder returns roads in the order they were added, for a
// deterministic sequential scan of each road's first section.
func (n *Network) RoadsInOrder() []*Road {
	roads := make([]*Road, 0, len(n.order))
	for _, id := range n.order {
		roads = append(roads, n.Roads[id])
	}
	return roads
}

// Element resolves a (road, section, lane, element index) to its
// geometry, or false if out of range.
func (n *Network) Element(roadID string, sectionIdx, laneIdx, elementIdx int) (LaneGeometryElement, bool) {
	road, ok := n.Roads[roadID]
	if !ok || sectionIdx < 0 || sectionIdx >= len(road.Sections) {
		return LaneGeometryElement{}, false
	}
	section := road.Sections[sectionIdx]
	if laneIdx < 0 || laneIdx >= len(section.Lanes) {
		return LaneGeometryElement{}, false
	}
	lane := section.Lanes[laneIdx]
	if elementIdx < 0 || elementIdx >= len(lane.Elements) {
		return LaneGeometryElement{}, false
	}
	return lane.Elements[elementIdx], true
}

// Lane resolves a (road, section, lane) reference to its Lane value.
func (n *Network) Lane(roadID string, sectionIdx, laneIdx int) (Lane, bool) {
	road, ok := n.Roads[roadID]
	if !ok || sectionIdx < 0 || sectionIdx >= len(road.Sections) {
		return Lane{}, false
	}
	section := road.Sections[sectionIdx]
	if laneIdx < 0 || laneIdx >= len(section.Lanes) {
		return Lane{}, false
	}
	return section.Lanes[laneIdx], true
}

// LaneCount returns the number of lanes in the given road/section.
func (n *Network) LaneCount(roadID string, sectionIdx int) int {
	road, ok := n.Roads[roadID]
	if !ok || sectionIdx < 0 || sectionIdx >= len(road.Sections) {
		return 0
	}
	return len(road.Sections[sectionIdx].Lanes)
}

// SectionStart returns a lane's first element start point (its A corner),
// used to seed a LaneWalker at the section's road-start.
func (l Lane) SectionStart() (model.Vector2d, bool) {
	if len(l.Elements) == 0 {
		return model.Vector2d{}, false
	}
	return l.Elements[0].A, true
}
