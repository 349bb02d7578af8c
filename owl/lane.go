package owl

// LaneRef pairs a section index and lane index, resolved against the arena
// held by a Road. All neighbor relations are (sectionIdx, laneIdx) pairs
// rather than pointers, keeping the road graph acyclic and serializable.
type LaneRef struct {
	SectionIdx int
	LaneIdx    int
}

// Lane carries an ordered list of LaneGeometryElements and belongs to a
// longitudinal stream of connected lanes across sections (StreamID).
type Lane struct {
	StreamID string
	Elements []LaneGeometryElement

	// Left/Right name the neighboring lane within the SAME section, if
	// any (a -1 LaneIdx means no neighbor on that side).
	Left  LaneRef
	Right LaneRef

	// NextInStream/PrevInStream point to the lane continuing this stream
	// in the adjacent section, forward and reverse along the road.
	NextInStream *LaneRef
	PrevInStream *LaneRef
}

// HasLeft reports whether the lane has a left neighbor in its section.
func (l Lane) HasLeft() bool { return l.Left.LaneIdx >= 0 }

// HasRight reports whether the lane has a right neighbor in its section.
func (l Lane) HasRight() bool { return l.Right.LaneIdx >= 0 }

// NoNeighbor is the sentinel LaneRef.LaneIdx meaning "no neighbor here".
const NoNeighbor = -1
