package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteCache_MemoizesForwardAndReverseQueries(t *testing.T) {
	fake := NewFakeRoutingClient()
	a := Point{X: 0, Y: 0}
	mid := Point{X: 0.5, Y: 0.5}
	b := Point{X: 1, Y: 1}
	fake.SetRoute(a, b, []Point{a, mid, b})

	cache := NewRouteCache(fake)

	pathAB, err := cache.RoadPath(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, []Point{a, mid, b}, pathAB)
	assert.Equal(t, 1, fake.Calls)

	pathBA, err := cache.RoadPath(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, []Point{b, mid, a}, pathBA)
	// Reverse query hits the same cache entry, no new client call.
	assert.Equal(t, 1, fake.Calls)

	pathAB2, err := cache.RoadPath(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, pathAB, pathAB2)
	assert.Equal(t, 1, fake.Calls)
}

func TestRouteCache_CachesNegativeResult(t *testing.T) {
	fake := NewFakeRoutingClient()
	a := Point{X: 0, Y: 0}
	b := Point{X: 1, Y: 1}
	fake.SetNoRoute(a, b)

	cache := NewRouteCache(fake)

	_, err := cache.RoadPath(context.Background(), a, b)
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Equal(t, 1, fake.Calls)

	_, err = cache.RoadPath(context.Background(), a, b)
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Equal(t, 1, fake.Calls) // negative result served from cache
}

func TestRouteCache_UnorderedKey(t *testing.T) {
	a := Point{X: 3, Y: 1}
	b := Point{X: 1, Y: 5}
	assert.Equal(t, newPointPairKey(a, b), newPointPairKey(b, a))
}

func TestFakeRoutingClient_StraightLineFallback(t *testing.T) {
	fake := NewFakeRoutingClient()
	fake.StraightLine = true
	a := Point{X: 0, Y: 0}
	b := Point{X: 2, Y: 2}

	path, err := fake.RoadPath(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, []Point{a, {X: 1, Y: 1}, b}, path)
}

func TestFakeRoutingClient_NoRouteWithoutRegistration(t *testing.T) {
	fake := NewFakeRoutingClient()
	_, err := fake.RoadPath(context.Background(), Point{X: 0, Y: 0}, Point{X: 9, Y: 9})
	assert.ErrorIs(t, err, ErrNoRoute)
}
