package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/internal/observability"
	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/owl"
)

const (
	perimeterStrideM  = 6.0
	lookaheadMaxSpeed = 200.0 / 3.6 // 200 km/h in m/s
	lookaheadWindowS  = 0.1         // 100 ms
)

// locatedPoint is one candidate point's localization result.
type locatedPoint struct {
	position model.RoadPosition
	roadID   string
	hit      bool
}

type streamKey struct {
	roadID, streamID string
}

// Localization maps an agent's bounding box into road/lane coordinates: a
// reference point, a main-lane locator, the box's four corners, and
// perimeter samples at a fixed stride, each resolved by walking the OWL
// road network's lane streams with barycentric point-in-quadrilateral
// containment tests.
type Localization struct {
	net     *owl.Network
	metrics *observability.LocalizationCollector
	logger  logging.Logger
}

// NewLocalization constructs a localization engine bound to a road network.
func NewLocalization(net *owl.Network) *Localization {
	return &Localization{net: net, logger: logging.Noop()}
}

// WithMetrics attaches a collector Locate reports search duration and
// budget-exhaustion counts into. Safe to call with nil; the collector
// methods themselves are nil-receiver-safe too.
func (l *Localization) WithMetrics(metrics *observability.LocalizationCollector) *Localization {
	l.metrics = metrics
	return l
}

// WithLogger attaches the structured logger Locate reports lost-agent
// diagnostics through.
func (l *Localization) WithLogger(logger logging.Logger) *Localization {
	l.logger = logger
	return l
}

// Locate runs the full search for one agent and returns the classified
// result plus per-section coverage remainders. It degrades to a full scan
// whenever the agent's carried SearchInitializer fails to produce a hit,
// per the conservative resolution of the quickstart open question.
func (l *Localization) Locate(box model.BoundingBox, init *model.SearchInitializer) model.LocalizationResult {
	start := time.Now()
	defer func() { l.metrics.ObserveSearch(time.Since(start)) }()

	reference := model.Vector2d{X: box.CenterX, Y: box.CenterY}
	frontLeft, frontRight, mainLocator := owl.FrontCorners(box)
	corners := owl.Polygon(box, 0) // four raw corners, no perimeter sampling
	perimeter := owl.Polygon(box, perimeterStrideM)

	allPoints := []model.Vector2d{reference, mainLocator, frontLeft, frontRight}
	allPoints = append(allPoints, corners...)
	allPoints = append(allPoints, perimeter...)

	located := l.locateAll(allPoints, init)

	result := model.LocalizationResult{
		Reference:       located[0].position,
		MainLaneLocator: located[1].position,
		Corners:         [4]model.RoadPosition{located[2].position, located[3].position, located[7].position, located[6].position},
	}

	anyHit := false
	for _, p := range located {
		if p.hit {
			anyHit = true
			break
		}
	}
	result.Valid = anyHit
	if !anyHit {
		result.StreamKind = model.StreamEmpty
		l.logger.Warn(context.Background(), "agent left the road network",
			logging.Any("center", reference),
		)
		return result
	}

	l.aggregate(located, &result)
	return result
}

func (l *Localization) locateAll(points []model.Vector2d, init *model.SearchInitializer) []locatedPoint {
	located := make([]locatedPoint, len(points))
	if init != nil {
		allHit := true
		for i, p := range points {
			located[i] = l.locateFrom(p, init.RoadID, init.SectionIdx)
			if !located[i].hit {
				allHit = false
			}
		}
		if allHit {
			return located
		}
	}
	for i, p := range points {
		located[i] = l.locateFullScan(p)
	}
	return located
}

// locateFullScan scans every road's first section, then each section's
// lane stream, until a hit is found or the step budget is exhausted.
func (l *Localization) locateFullScan(p model.Vector2d) locatedPoint {
	for _, road := range l.net.RoadsInOrder() {
		if hit := l.scanRoad(p, road.ID, 0); hit.hit {
			return hit
		}
	}
	return locatedPoint{}
}

// locateFrom resumes the search near a previously known (road, section).
func (l *Localization) locateFrom(p model.Vector2d, roadID string, sectionIdx int) locatedPoint {
	if hit := l.scanRoad(p, roadID, sectionIdx); hit.hit {
		return hit
	}
	return locatedPoint{}
}

// scanRoad walks every lane of the given road, starting at startSection,
// each lane scanned by a forward and a reverse LaneWalker, bounded by a
// step budget derived from the 100 ms look-ahead distance.
func (l *Localization) scanRoad(p model.Vector2d, roadID string, startSection int) locatedPoint {
	road, ok := l.net.Roads[roadID]
	if !ok || len(road.Sections) == 0 {
		return locatedPoint{}
	}

	maxDistance := lookaheadMaxSpeed * lookaheadWindowS

	for sectionOffset := 0; sectionOffset < len(road.Sections); sectionOffset++ {
		sectionIdx := (startSection + sectionOffset) % len(road.Sections)
		laneCount := l.net.LaneCount(roadID, sectionIdx)
		if laneCount == 0 {
			continue
		}

		budget := stepBudget(maxDistance, laneCount)

		for laneIdx := 0; laneIdx < laneCount; laneIdx++ {
			if hit := l.walkLane(p, roadID, sectionIdx, laneIdx, budget); hit.hit {
				return hit
			}
		}
	}
	return locatedPoint{}
}

// stepBudget computes ceil(maxDistance / segment-length) * 2 * lanes, the
// bound on containment tests performed per section before the search moves
// on. Elements are assumed roughly perimeterStrideM long, matching the
// sampling stride used to build candidate points.
func stepBudget(maxDistance float64, lanesInSection int) int {
	segments := int(math.Ceil(maxDistance / perimeterStrideM))
	if segments < 1 {
		segments = 1
	}
	return segments * 2 * lanesInSection
}

// walkLane advances a forward and a reverse LaneWalker over one lane,
// testing containment at each element, until a hit, the budget is spent,
// or both walkers are exhausted.
func (l *Localization) walkLane(p model.Vector2d, roadID string, sectionIdx, laneIdx, budget int) locatedPoint {
	forward := owl.NewLaneWalker(l.net, roadID, sectionIdx, laneIdx, true)
	reverse := owl.NewLaneWalker(l.net, roadID, sectionIdx, laneIdx, false)

	steps := 0
	for steps < budget && (!forward.Done() || !reverse.Done()) {
		if !forward.Done() {
			if hit := testWalkerElement(p, forward, roadID); hit.hit {
				return hit
			}
			forward.Advance()
			steps++
		}
		if reverse.Done() {
			continue
		}
		if hit := testWalkerElement(p, reverse, roadID); hit.hit {
			return hit
		}
		reverse.Advance()
		steps++
	}
	if steps >= budget {
		l.metrics.IncBudgetExhausted()
	}
	return locatedPoint{}
}

func testWalkerElement(p model.Vector2d, w *owl.LaneWalker, roadID string) locatedPoint {
	elem, ref, ok := w.Current()
	if !ok || !elem.Contains(p) {
		return locatedPoint{}
	}
	s, t, heading := elem.Project(p, elem.HeadingRad)
	return locatedPoint{
		position: model.RoadPosition{
			Lane:    model.LaneRef{RoadID: roadID, SectionIdx: ref.SectionIdx, LaneIdx: ref.LaneIdx},
			S:       s,
			T:       t,
			Heading: heading,
			Valid:   true,
		},
		roadID: roadID,
		hit:    true,
	}
}

// aggregate implements the point aggregator: Single/Neighbours based on
// the distinct lane streams the located points fall into, plus per-section
// left/right coverage remainders, keyed "roadID/sectionIdx" as the result
// documents. AssignedLanes unions every distinct (section, lane) pair any
// located point fell into within a stream group, not just the first one —
// a bounding box crossing a section boundary along a single lane stream
// still touches two distinct LaneRefs even though it never leaves the
// stream.
func (l *Localization) aggregate(located []locatedPoint, result *model.LocalizationResult) {
	streams := make(map[streamKey][]locatedPoint)
	for _, p := range located {
		if !p.hit {
			continue
		}
		lane, ok := l.net.Lane(p.roadID, p.position.Lane.SectionIdx, p.position.Lane.LaneIdx)
		streamID := ""
		if ok {
			streamID = lane.StreamID
		}
		key := streamKey{roadID: p.roadID, streamID: streamID}
		streams[key] = append(streams[key], p)
	}

	switch len(streams) {
	case 1:
		result.StreamKind = model.StreamSingle
	default:
		result.StreamKind = model.StreamNeighbours
		result.IsCrossingLanes = len(streams) > 1
	}

	result.AssignedLanes = make(map[model.LaneRef]bool)
	result.Remainders = make(map[string]model.Remainder)

	for key, pts := range streams {
		for _, p := range pts {
			result.AssignedLanes[p.position.Lane] = true
		}

		lane := pts[0].position.Lane
		elem, ok := l.net.Element(key.roadID, lane.SectionIdx, lane.LaneIdx, 0)
		if !ok {
			continue
		}
		halfWidth := elem.HalfWidth()
		leftRemainder, rightRemainder := math.MaxFloat64, math.MaxFloat64
		for _, p := range pts {
			if r := halfWidth - p.position.T; r < leftRemainder {
				leftRemainder = r
			}
			if r := halfWidth + p.position.T; r < rightRemainder {
				rightRemainder = r
			}
		}
		sectionKey := fmt.Sprintf("%s/%d", key.roadID, lane.SectionIdx)
		result.Remainders[sectionKey] = model.Remainder{Left: leftRemainder, Right: rightRemainder}
	}
}
