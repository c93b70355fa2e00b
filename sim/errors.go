package sim

import "errors"

// ErrNoRoute is returned by a RoutingClient when two points are mutually
// unreachable. Callers wrap it with context via fmt.Errorf("...: %w", ErrNoRoute).
var ErrNoRoute = errors.New("no route between points")

// ErrInvalidTransition is returned by Vehicle.SetStatus when the requested
// transition is not allowed by the vehicle status table. The vehicle
// keeps its previous status; the callers inside this package discard the
// error without logging it and continue.
var ErrInvalidTransition = errors.New("invalid vehicle status transition")

// ErrImproperConfig is returned from NewSimulator / Config.Validate. It is
// fatal for the run and is never produced at tick time.
var ErrImproperConfig = errors.New("improper simulator configuration")

// errPathTooShort is returned internally by Vehicle.UpdatePath when the
// router returns fewer than three points (current, at least one
// intermediate, target). It is not exported; UpdatePath's caller gets
// false, err and treats any non-nil err the same way.
var errPathTooShort = errors.New("resolved path too short to matter")
