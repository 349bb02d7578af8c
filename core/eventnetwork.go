package core

import (
	"context"

	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/model"
)

// Respawner is triggered by the event network's Respawn dispatch once a
// respawn point fires.
type Respawner interface {
	RespawnAgent(time int)
}

// CollisionSink receives collision agent ids as they are reported.
type CollisionSink interface {
	AddCollisionID(agentID int)
}

// EventNetwork stores every event raised this run, split into the events
// still active (raised since the last ClearActiveEvents call) and events
// archived from prior cycles, each bucketed by category. Event ids are
// assigned monotonically on insert and are never reused, even across
// ClearActiveEvents calls.
type EventNetwork struct {
	active   map[model.EventCategory][]model.Event
	archived map[model.EventCategory][]model.Event
	nextID   int

	respawner Respawner
	collision CollisionSink
	logger    logging.Logger
}

// EventNetworkOption customises EventNetwork construction.
type EventNetworkOption func(*EventNetwork)

// WithEventNetworkLogger attaches the structured logger the event network
// reports inserted events through.
func WithEventNetworkLogger(logger logging.Logger) EventNetworkOption {
	return func(n *EventNetwork) { n.logger = logger }
}

// NewEventNetwork constructs an empty event network.
func NewEventNetwork(opts ...EventNetworkOption) *EventNetwork {
	n := &EventNetwork{
		active:   make(map[model.EventCategory][]model.Event),
		archived: make(map[model.EventCategory][]model.Event),
		logger:   logging.Noop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Initialize wires the collaborators Respawn and AddCollision dispatch to.
func (n *EventNetwork) Initialize(respawner Respawner, collision CollisionSink) {
	n.respawner = respawner
	n.collision = collision
}

// categoryFor maps an event type to its storage category. Types with no
// specific category fall into AgentBased; EventTypeUndefined events are
// not filed at all (InsertEvent drops them after assigning an id).
func categoryFor(t model.EventType) model.EventCategory {
	switch t {
	case model.EventTypeUndefined:
		return model.EventCategoryUndefined
	case model.EventTypeCollision:
		return model.EventCategoryCollision
	case model.EventTypeComponentStateChange:
		return model.EventCategoryComponentStateChange
	default:
		return model.EventCategoryAgentBased
	}
}

// InsertEvent assigns the event the next event id and files it under
// active events in its category, unless the category is Undefined.
func (n *EventNetwork) InsertEvent(event model.Event) model.Event {
	event.ID = n.nextID
	n.nextID++

	category := categoryFor(event.Type)
	if category == model.EventCategoryUndefined {
		return event
	}
	n.active[category] = append(n.active[category], event)
	n.logger.Debug(context.Background(), "event inserted",
		logging.Int("id", event.ID),
		logging.String("name", event.Name),
		logging.Any("agentIds", event.AgentIDs),
	)
	return event
}

// ActiveEventCategory returns the active events of the given category, or
// nil if none have been raised since the last clear.
func (n *EventNetwork) ActiveEventCategory(category model.EventCategory) []model.Event {
	return n.active[category]
}

// ActiveEvents returns the full active-events map.
func (n *EventNetwork) ActiveEvents() map[model.EventCategory][]model.Event {
	return n.active
}

// ArchivedEvents returns the full archived-events map.
func (n *EventNetwork) ArchivedEvents() map[model.EventCategory][]model.Event {
	return n.archived
}

// ClearActiveEvents moves every active event into the archive, preserving
// per-category insertion order, and empties the active set. Called once
// per cycle.
func (n *EventNetwork) ClearActiveEvents() {
	for category, events := range n.active {
		n.archived[category] = append(n.archived[category], events...)
	}
	n.active = make(map[model.EventCategory][]model.Event)
}

// RemoveOldEvents drops archived events older than time from the front of
// each category's list. Archived lists are time-ordered by construction
// (events are only ever appended in increasing simulation time), so a
// single forward scan per category suffices.
func (n *EventNetwork) RemoveOldEvents(time int) {
	for category, events := range n.archived {
		i := 0
		for i < len(events) && events[i].Time < time {
			i++
		}
		n.archived[category] = events[i:]
	}
}

// Clear resets the event network to its zero state, including the event
// id counter and wired collaborators.
func (n *EventNetwork) Clear() {
	n.nextID = 0
	n.active = make(map[model.EventCategory][]model.Event)
	n.archived = make(map[model.EventCategory][]model.Event)
	n.respawner = nil
	n.collision = nil
}

// Respawn dispatches to the wired Respawner, if any.
func (n *EventNetwork) Respawn(time int) {
	if n.respawner != nil {
		n.respawner.RespawnAgent(time)
	}
}

// AddCollision reports a collision agent id to the wired CollisionSink, if
// any.
func (n *EventNetwork) AddCollision(agentID int) {
	if n.collision != nil {
		n.collision.AddCollisionID(agentID)
	}
}
