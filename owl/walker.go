package owl

// LaneWalker advances one LaneGeometryElement at a time, either forward
// (increasing element index, then following NextInStream across section
// boundaries) or in reverse.
type LaneWalker struct {
	net        *Network
	roadID     string
	sectionIdx int
	laneIdx    int
	elementIdx int
	forward    bool
	exhausted  bool
}

// NewLaneWalker constructs a walker starting at the given lane's first
// (forward) or last (reverse) element.
func NewLaneWalker(net *Network, roadID string, sectionIdx, laneIdx int, forward bool) *LaneWalker {
	lane, ok := net.Lane(roadID, sectionIdx, laneIdx)
	w := &LaneWalker{net: net, roadID: roadID, sectionIdx: sectionIdx, laneIdx: laneIdx, forward: forward}
	if !ok || len(lane.Elements) == 0 {
		w.exhausted = true
		return w
	}
	if forward {
		w.elementIdx = 0
	} else {
		w.elementIdx = len(lane.Elements) - 1
	}
	return w
}

// Current returns the element the walker currently sits on.
func (w *LaneWalker) Current() (LaneGeometryElement, LaneRef, bool) {
	if w.exhausted {
		return LaneGeometryElement{}, LaneRef{}, false
	}
	elem, ok := w.net.Element(w.roadID, w.sectionIdx, w.laneIdx, w.elementIdx)
	if !ok {
		w.exhausted = true
		return LaneGeometryElement{}, LaneRef{}, false
	}
	return elem, LaneRef{SectionIdx: w.sectionIdx, LaneIdx: w.laneIdx}, true
}

// Done reports whether the walker has run out of stream to follow.
func (w *LaneWalker) Done() bool { return w.exhausted }

// Advance moves the walker one element forward (or backward, depending on
// direction). When the current lane's elements are exhausted it follows
// NextInStream/PrevInStream to continue across the section boundary;
// returns false once the stream itself ends.
func (w *LaneWalker) Advance() bool {
	if w.exhausted {
		return false
	}
	lane, ok := w.net.Lane(w.roadID, w.sectionIdx, w.laneIdx)
	if !ok {
		w.exhausted = true
		return false
	}

	if w.forward {
		if w.elementIdx+1 < len(lane.Elements) {
			w.elementIdx++
			return true
		}
		if lane.NextInStream == nil {
			w.exhausted = true
			return false
		}
		w.sectionIdx = lane.NextInStream.SectionIdx
		w.laneIdx = lane.NextInStream.LaneIdx
		w.elementIdx = 0
		return true
	}

	if w.elementIdx-1 >= 0 {
		w.elementIdx--
		return true
	}
	if lane.PrevInStream == nil {
		w.exhausted = true
		return false
	}
	w.sectionIdx = lane.PrevInStream.SectionIdx
	w.laneIdx = lane.PrevInStream.LaneIdx
	nextLane, ok := w.net.Lane(w.roadID, w.sectionIdx, w.laneIdx)
	if !ok || len(nextLane.Elements) == 0 {
		w.exhausted = true
		return false
	}
	w.elementIdx = len(nextLane.Elements) - 1
	return true
}
