package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunResult_CompletionRate(t *testing.T) {
	completed := NewPassenger("p1", Point{}, Point{X: 1}, 0)
	completed.Enqueue("v1", 1)
	completed.Load("v1", 2, Point{})
	completed.DropOff("v1", 5, Point{X: 1})

	waiting := NewPassenger("p2", Point{}, Point{X: 1}, 0)

	result := &RunResult{Passengers: []*Passenger{completed, waiting}}
	assert.Equal(t, 0.5, result.CompletionRate())
}

func TestRunResult_CompletionRate_EmptyIsZero(t *testing.T) {
	result := &RunResult{}
	assert.Equal(t, 0.0, result.CompletionRate())
}

func TestRunResult_PassengerSummaries_SentinelsBeforeMilestones(t *testing.T) {
	untouched := NewPassenger("p1", Point{}, Point{X: 1}, 0)

	enqueuedOnly := NewPassenger("p2", Point{}, Point{X: 1}, 0)
	enqueuedOnly.Enqueue("v1", 1)

	fullTrip := NewPassenger("p3", Point{}, Point{X: 1}, 0)
	fullTrip.Enqueue("v1", 1)
	fullTrip.Load("v1", 4, Point{})
	fullTrip.DropOff("v1", 10, Point{X: 1})

	result := &RunResult{Passengers: []*Passenger{untouched, enqueuedOnly, fullTrip}}
	summaries := result.PassengerSummaries()

	assert.Equal(t, int64(-1), summaries[0].WaitTicks)
	assert.Equal(t, int64(-1), summaries[0].TripTicks)

	assert.Equal(t, int64(-1), summaries[1].WaitTicks)
	assert.Equal(t, int64(-1), summaries[1].TripTicks)

	assert.Equal(t, int64(4), summaries[2].WaitTicks)
	assert.Equal(t, int64(6), summaries[2].TripTicks)
	assert.Equal(t, "COMPLETED", summaries[2].Status)
}

func TestRunResult_VehicleSummaries(t *testing.T) {
	world := NewWorld(testBounds())
	routes := NewRouteCache(NewFakeRoutingClient())
	v := NewVehicle("v1", 3, 5.556, true, Point{}, 0, world, routes, FIFOScheduler{})
	v.TotalDistanceM = 42
	v.FinishTrip(10)

	result := &RunResult{Vehicles: []*Vehicle{v}}
	summaries := result.VehicleSummaries()

	require := summaries[0]
	assert.Equal(t, "v1", require.ID)
	assert.Equal(t, int64(10), require.DeathTick)
	assert.Equal(t, 42.0, require.TotalDistanceM)
	assert.Equal(t, 2, require.EventCount) // APPEAR + FINISH
}
