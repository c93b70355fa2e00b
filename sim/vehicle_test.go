package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVehicleWithWorld(t *testing.T, id string, capacity int, loc Point, client RoutingClient) (*Vehicle, *World, *RouteCache) {
	t.Helper()
	w := NewWorld(testBounds())
	routes := NewRouteCache(client)
	v := NewVehicle(id, capacity, 5.556, true, loc, 0, w, routes, FIFOScheduler{})
	w.AddVehicle(v)
	return v, w, routes
}

func TestVehicle_CurrentPointAndAppearEvent(t *testing.T) {
	start := Point{X: 1, Y: 2}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	assert.Equal(t, start, v.CurrentPoint())
	assert.Equal(t, EventAppear, v.Log.Events()[0].Type)
}

func TestVehicle_SetStatus_AllowedTable(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())

	assert.NoError(t, v.SetStatus(VehicleServing))
	assert.NoError(t, v.SetStatus(VehicleRoaming))
	assert.NoError(t, v.SetStatus(VehicleServing))
	assert.NoError(t, v.SetStatus(VehicleReturningToTerminal))
	assert.NoError(t, v.SetStatus(VehicleTerminal))
}

func TestVehicle_SetStatus_RefusesIllegalTransition(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	err := v.SetStatus(VehicleReturningToTerminal) // IDLE -> RETURNING_TO_TERMINAL not allowed
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, VehicleIdle, v.Status) // unchanged
}

func TestVehicle_SetStatus_SameStatusIsNoop(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	assert.NoError(t, v.SetStatus(VehicleIdle))
}

func TestVehicle_UpdatePath_RejectsTooShortPath(t *testing.T) {
	fake := NewFakeRoutingClient()
	start := Point{X: 0, Y: 0}
	target := Point{X: 0, Y: 0.001}
	fake.SetRoute(start, target, []Point{start, target}) // only 2 points

	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, fake)
	ok, err := v.UpdatePath(context.Background(), target, PathReplace)
	assert.False(t, ok)
	assert.ErrorIs(t, err, errPathTooShort)
}

func TestVehicle_UpdatePath_DedupsWhenTailAlreadyTarget(t *testing.T) {
	fake := NewFakeRoutingClient()
	start := Point{X: 0, Y: 0}
	mid := Point{X: 0, Y: 0.0005}
	target := Point{X: 0, Y: 0.001}
	fake.SetRoute(start, target, []Point{start, mid, target})

	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, fake)
	ok, err := v.UpdatePath(context.Background(), target, PathReplace)
	require.NoError(t, err)
	require.True(t, ok)

	callsBefore := fake.Calls
	ok, err = v.UpdatePath(context.Background(), target, PathAppend)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, callsBefore, fake.Calls) // deduped, no extra client call
}

func TestVehicle_UpdatePath_NoRoutePropagates(t *testing.T) {
	fake := NewFakeRoutingClient()
	start := Point{X: 0, Y: 0}
	target := Point{X: 5, Y: 5}
	fake.SetNoRoute(start, target)

	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, fake)
	ok, err := v.UpdatePath(context.Background(), target, PathReplace)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestVehicle_EnqueueNearby_ClaimsUpToRoom(t *testing.T) {
	fake := NewFakeRoutingClient()
	fake.StraightLine = true
	v, w, _ := newVehicleWithWorld(t, "v1", 2, Point{X: 0, Y: 0}, fake)

	p1 := NewPassenger("p1", Point{X: 0, Y: 0.0001}, Point{X: 1, Y: 1}, 0)
	p2 := NewPassenger("p2", Point{X: 0, Y: 0.0002}, Point{X: 1, Y: 1}, 0)
	p3 := NewPassenger("p3", Point{X: 0, Y: 0.0003}, Point{X: 1, Y: 1}, 0)
	w.AddPassenger(p1)
	w.AddPassenger(p2)
	w.AddPassenger(p3)

	v.EnqueueNearby(context.Background(), 1000, 0)

	assert.Equal(t, PassengerEnqueued, p1.Status)
	assert.Equal(t, PassengerEnqueued, p2.Status)
	assert.Equal(t, PassengerWaiting, p3.Status) // capacity 2, third left WAITING
	assert.Equal(t, 2, v.EnqueuedCount())
}

func TestVehicle_EnqueueNearby_SkipsClaimedByOthers(t *testing.T) {
	fake := NewFakeRoutingClient()
	fake.StraightLine = true
	v, w, _ := newVehicleWithWorld(t, "v1", 3, Point{X: 0, Y: 0}, fake)

	p := NewPassenger("p1", Point{X: 0, Y: 0.0001}, Point{X: 1, Y: 1}, 0)
	w.AddPassenger(p)
	p.Enqueue("other-vehicle", 0)

	v.EnqueueNearby(context.Background(), 1000, 0)
	assert.Equal(t, "other-vehicle", p.ClaimedBy)
	assert.Equal(t, 0, v.EnqueuedCount())
}

func TestVehicle_TryLoad_LoadsWithinRadiusAndTransitionsToServing(t *testing.T) {
	fake := NewFakeRoutingClient()
	fake.StraightLine = true
	start := Point{X: 0, Y: 0}
	v, w, _ := newVehicleWithWorld(t, "v1", 3, start, fake)

	p := NewPassenger("p1", start, Point{X: 1, Y: 1}, 0)
	w.AddPassenger(p)
	p.Enqueue("v1", 0)
	v.enqueued["p1"] = true

	v.TryLoad(2, 1)

	assert.Equal(t, PassengerOnboard, p.Status)
	assert.Equal(t, 1, v.OnboardCount())
	assert.Equal(t, VehicleServing, v.Status)
	assert.Equal(t, 0, v.EnqueuedCount())
}

func TestVehicle_TryLoad_RefusesAtCapacity(t *testing.T) {
	fake := NewFakeRoutingClient()
	start := Point{X: 0, Y: 0}
	v, w, _ := newVehicleWithWorld(t, "v1", 1, start, fake)
	v.onboard = append(v.onboard, NewPassenger("already-on", start, Point{X: 9, Y: 9}, 0))

	p := NewPassenger("p1", start, Point{X: 1, Y: 1}, 0)
	w.AddPassenger(p)
	p.Enqueue("v1", 0)
	v.enqueued["p1"] = true

	v.TryLoad(2, 1)

	assert.Equal(t, PassengerWaiting, p.Status)
	assert.Empty(t, p.ClaimedBy)
}

func TestVehicle_TryOffload_DropsWithinRadiusAndTransitions(t *testing.T) {
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	_ = v.SetStatus(VehicleServing)

	p := NewPassenger("p1", Point{}, start, 0)
	p.Status = PassengerOnboard
	v.onboard = append(v.onboard, p)

	dropped := v.TryOffload(2, 5)

	assert.Len(t, dropped, 1)
	assert.Equal(t, PassengerCompleted, p.Status)
	assert.Equal(t, 0, v.OnboardCount())
	assert.Equal(t, VehicleReturningToTerminal, v.Status)
}

func TestVehicle_TryOffload_RoamingGoesToRoaming(t *testing.T) {
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	v.IsRoaming = true
	_ = v.SetStatus(VehicleServing)

	p := NewPassenger("p1", Point{}, start, 0)
	p.Status = PassengerOnboard
	v.onboard = append(v.onboard, p)

	v.TryOffload(2, 5)
	assert.Equal(t, VehicleRoaming, v.Status)
}

func TestVehicle_Move_NoProgressWhenTerminal(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	_ = v.SetStatus(VehicleTerminal)
	assert.False(t, v.Move(0))
}

func TestVehicle_Move_NoProgressWhenPathEmpty(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	assert.False(t, v.Move(0))
}

func TestVehicle_Move_AdvancesTowardTargetAndAccumulatesDistance(t *testing.T) {
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	v.pathQueue = []Point{{X: 0, Y: 0.01}} // far enough that one tick won't finish

	progressed := v.Move(1)
	assert.True(t, progressed)
	assert.Greater(t, v.TotalDistance, 0.0)
	assert.NotEqual(t, start, v.CurrentPoint())
	assert.Len(t, v.pathQueue, 1) // not yet reached
}

func TestVehicle_Move_PopsQueueHeadOnArrival(t *testing.T) {
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	// Small enough distance that one tick of travel (5.556 m) fully covers it.
	target := Point{X: 0, Y: 0.00001}
	v.pathQueue = []Point{target}

	progressed := v.Move(1)
	assert.True(t, progressed)
	assert.Empty(t, v.pathQueue)
}

func TestVehicle_Move_ProductiveDistanceOnlyWithPassenger(t *testing.T) {
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, NewFakeRoutingClient())
	v.pathQueue = []Point{{X: 0, Y: 0.01}}

	v.Move(1)
	assert.Equal(t, 0.0, v.TotalProductiveDistance)

	v.onboard = append(v.onboard, NewPassenger("p1", start, Point{X: 1, Y: 1}, 0))
	v.Move(2)
	assert.Greater(t, v.TotalProductiveDistance, 0.0)
}

func TestVehicle_ScheduleNextPassenger_NoneOnboard(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	ok, err := v.ScheduleNextPassenger(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestVehicle_ScheduleNextPassenger_ReplacesPath(t *testing.T) {
	fake := NewFakeRoutingClient()
	fake.StraightLine = true
	start := Point{X: 0, Y: 0}
	v, _, _ := newVehicleWithWorld(t, "v1", 3, start, fake)
	v.pathQueue = []Point{{X: 99, Y: 99}} // stale target
	v.onboard = append(v.onboard, NewPassenger("p1", start, Point{X: 1, Y: 1}, 0))

	ok, err := v.ScheduleNextPassenger(context.Background())
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 1}, v.pathQueue[len(v.pathQueue)-1])
}

func TestVehicle_FinishTrip_IsIrreversible(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	v.FinishTrip(42)
	assert.False(t, v.Active)
	assert.Equal(t, int64(42), v.DeathTick)
	last := v.Log.Events()[len(v.Log.Events())-1]
	assert.Equal(t, EventFinish, last.Type)
}

func TestVehicle_LoadNextCyclePoint_NoopForNonRoaming(t *testing.T) {
	v, _, _ := newVehicleWithWorld(t, "v1", 3, Point{}, NewFakeRoutingClient())
	v.LoadNextCyclePoint()
	assert.Empty(t, v.pathQueue)
}

func TestVehicleStatus_String(t *testing.T) {
	cases := map[VehicleStatus]string{
		VehicleIdle:                "IDLE",
		VehicleServing:             "SERVING",
		VehicleTerminal:            "TERMINAL",
		VehicleRoaming:             "ROAMING",
		VehicleReturningToTerminal: "RETURNING_TO_TERMINAL",
		VehicleStatus(99):          "UNKNOWN",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}
