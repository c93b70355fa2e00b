package sim

// EventType enumerates the event kinds appearing in per-entity event logs.
type EventType string

const (
	EventAppear  EventType = "APPEAR"
	EventMove    EventType = "MOVE"
	EventLoad    EventType = "LOAD"
	EventWait    EventType = "WAIT"
	EventEnqueue EventType = "ENQUEUE"
	EventDropOff EventType = "DROP-OFF"
	EventReset   EventType = "RESET"
	EventFinish  EventType = "FINISH"
)

// Event is a single append-only entry in an entity's event log. Every
// event carries its tick and location; events referring to another agent
// (ENQUEUE, LOAD, DROP-OFF) carry AgentID. MOVE events coalesce
// consecutive moves into Count; WAIT events carry DurationMS.
type Event struct {
	Type       EventType
	Tick       int64
	Location   Point
	AgentID    string
	Count      int
	DurationMS int64
}

// EventLog is an append-only, monotonically-non-decreasing-in-tick
// sequence of events for a single entity.
type EventLog struct {
	events []Event
}

// Append adds an event to the end of the log. Tick must be >= the tick of
// the last appended event; this is enforced by the callers that build
// events (the simulator's tick loop), not by EventLog itself, to keep the
// hot path allocation-free.
func (l *EventLog) Append(e Event) {
	l.events = append(l.events, e)
}

// CoalesceMove appends a MOVE event, or increments the Count of the
// trailing MOVE event if one is already last, per the per-tick move
// coalescing rule in SPEC_FULL.md §4.4.
func (l *EventLog) CoalesceMove(tick int64, loc Point) {
	if n := len(l.events); n > 0 && l.events[n-1].Type == EventMove {
		l.events[n-1].Count++
		l.events[n-1].Location = loc
		return
	}
	l.Append(Event{Type: EventMove, Tick: tick, Location: loc, Count: 1})
}

// Events returns the full event slice. Callers must not mutate it.
func (l *EventLog) Events() []Event { return l.events }

// Len reports the number of recorded events.
func (l *EventLog) Len() int { return len(l.events) }
