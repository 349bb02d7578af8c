package core

import (
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// CollisionDetector is the event detector that raises a Collision event for
// every pair of valid agents whose bounding boxes overlap this tick. It
// implements EventDetector.
type CollisionDetector struct{}

// NewCollisionDetector constructs a detector with no internal state: it
// re-evaluates every pair of currently valid agents on each Detect call.
func NewCollisionDetector() *CollisionDetector {
	return &CollisionDetector{}
}

// Detect scans every pair of valid agents in world and inserts a Collision
// event for each pair whose bounding boxes overlap, carrying both agent ids.
func (d *CollisionDetector) Detect(world *World, events *EventNetwork, time int) error {
	agents := world.Agents()
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			a, b := agents[i], agents[j]
			if !boxesOverlap(a.Box, b.Box) {
				continue
			}
			events.InsertEvent(model.Event{
				Time:     time,
				Type:     model.EventTypeCollision,
				AgentIDs: []int{a.ID, b.ID},
				Name:     "Collision",
			})
		}
	}
	return nil
}

// CollisionManipulator reacts to active Collision events by reporting every
// involved agent id to the event network's collision sink. It implements
// Manipulator.
type CollisionManipulator struct{}

// NewCollisionManipulator constructs a manipulator with no internal state.
func NewCollisionManipulator() *CollisionManipulator {
	return &CollisionManipulator{}
}

// Manipulate reports every agent id named by an active Collision event to
// events.AddCollision, which forwards to the run's collision sink.
func (m *CollisionManipulator) Manipulate(world *World, events *EventNetwork, runResult *RunResult, time int) error {
	for _, event := range events.ActiveEventCategory(model.EventCategoryCollision) {
		for _, agentID := range event.AgentIDs {
			events.AddCollision(agentID)
		}
	}
	return nil
}

// boxesOverlap reports whether two rotated rectangles intersect, using the
// separating axis theorem over each box's two distinct edge directions
// (only two per rectangle: its length axis and its width axis).
func boxesOverlap(a, b model.BoundingBox) bool {
	cornersA := corners(a)
	cornersB := corners(b)

	axes := []model.Vector2d{
		{X: math.Cos(a.Yaw), Y: math.Sin(a.Yaw)},
		{X: -math.Sin(a.Yaw), Y: math.Cos(a.Yaw)},
		{X: math.Cos(b.Yaw), Y: math.Sin(b.Yaw)},
		{X: -math.Sin(b.Yaw), Y: math.Cos(b.Yaw)},
	}

	for _, axis := range axes {
		minA, maxA := projectOntoAxis(cornersA, axis)
		minB, maxB := projectOntoAxis(cornersB, axis)
		if maxA < minB || maxB < minA {
			return false
		}
	}
	return true
}

// corners returns a box's four corners in world coordinates, in the same
// front-left/front-right/rear-left/rear-right order Localization uses.
func corners(box model.BoundingBox) [4]model.Vector2d {
	halfLen := box.LengthM / 2
	halfWidth := box.WidthM / 2
	offset := box.RearAxleToCenterM
	center := model.Vector2d{X: box.CenterX, Y: box.CenterY}

	frontLeft := center.Add(model.Vector2d{X: offset + halfLen, Y: halfWidth}.Rotate(box.Yaw))
	frontRight := center.Add(model.Vector2d{X: offset + halfLen, Y: -halfWidth}.Rotate(box.Yaw))
	rearLeft := center.Add(model.Vector2d{X: offset - halfLen, Y: halfWidth}.Rotate(box.Yaw))
	rearRight := center.Add(model.Vector2d{X: offset - halfLen, Y: -halfWidth}.Rotate(box.Yaw))
	return [4]model.Vector2d{frontLeft, frontRight, rearLeft, rearRight}
}

func projectOntoAxis(pts [4]model.Vector2d, axis model.Vector2d) (min, max float64) {
	min = pts[0].Dot(axis)
	max = min
	for _, p := range pts[1:] {
		v := p.Dot(axis)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
