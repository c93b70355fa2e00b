package sim

// PassengerStatus is the passenger state machine's current state.
type PassengerStatus int

const (
	PassengerWaiting PassengerStatus = iota
	PassengerEnqueued
	PassengerOnboard
	PassengerCompleted
)

func (s PassengerStatus) String() string {
	switch s {
	case PassengerWaiting:
		return "WAITING"
	case PassengerEnqueued:
		return "ENQUEUED"
	case PassengerOnboard:
		return "ONBOARD"
	case PassengerCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Passenger is a single trip request moving through
// WAITING -> ENQUEUED -> ONBOARD -> COMPLETED, with ENQUEUED able to fall
// back to WAITING on timeout or refused load.
type Passenger struct {
	ID     string
	Src    Point
	Dest   Point
	Status PassengerStatus

	CreateTick     int64
	PickupTick     int64 // -1 until ONBOARD
	CompletionTick int64 // -1 until COMPLETED
	EnqueueTick    int64 // -1 unless ENQUEUED

	// ClaimedBy is the id of the vehicle that claimed this passenger. It
	// is set on ENQUEUE, retained through LOAD and DROP-OFF (so a
	// COMPLETED passenger still carries it) and cleared only on RESET, so
	// downstream consumers can attribute the trip to the serving vehicle.
	ClaimedBy string

	Log EventLog
}

// NewPassenger constructs a passenger in WAITING status and records its
// APPEAR event.
func NewPassenger(id string, src, dest Point, createTick int64) *Passenger {
	p := &Passenger{
		ID:             id,
		Src:            src,
		Dest:           dest,
		Status:         PassengerWaiting,
		CreateTick:     createTick,
		PickupTick:     -1,
		CompletionTick: -1,
		EnqueueTick:    -1,
	}
	p.Log.Append(Event{Type: EventAppear, Tick: createTick, Location: src})
	return p
}

// Enqueue transitions WAITING -> ENQUEUED, claimed by vehicleID. Callers
// (Vehicle/Terminal) are responsible for ensuring at most one vehicle claims
// a passenger in a given tick; Enqueue itself does not re-check Status.
func (p *Passenger) Enqueue(vehicleID string, tick int64) {
	p.Status = PassengerEnqueued
	p.ClaimedBy = vehicleID
	p.EnqueueTick = tick
	p.Log.Append(Event{Type: EventEnqueue, Tick: tick, Location: p.Src, AgentID: vehicleID})
}

// Load transitions ENQUEUED -> ONBOARD.
func (p *Passenger) Load(vehicleID string, tick int64, at Point) {
	p.Status = PassengerOnboard
	p.PickupTick = tick
	p.EnqueueTick = -1
	p.Log.Append(Event{Type: EventLoad, Tick: tick, Location: at, AgentID: vehicleID})
}

// Reset transitions ENQUEUED -> WAITING (timeout, or refused load at
// capacity). ClaimedBy is cleared here, and only here.
func (p *Passenger) Reset(tick int64, at Point) {
	p.Status = PassengerWaiting
	p.ClaimedBy = ""
	p.EnqueueTick = -1
	p.Log.Append(Event{Type: EventReset, Tick: tick, Location: at})
}

// DropOff transitions ONBOARD -> COMPLETED.
func (p *Passenger) DropOff(vehicleID string, tick int64, at Point) {
	p.Status = PassengerCompleted
	p.CompletionTick = tick
	p.Log.Append(Event{Type: EventDropOff, Tick: tick, Location: at, AgentID: vehicleID})
}
