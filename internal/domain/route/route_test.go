package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(stopID, routeID, title string) Route {
	return Route{
		Stop:  StopRef{ID: stopID},
		Route: RouteRef{ID: routeID, Title: title},
	}
}

func TestCompositeID(t *testing.T) {
	assert.Equal(t, "A1", sample("A", "1", "").CompositeID())
	assert.Equal(t, "13543N", sample("13543", "N", "").CompositeID())
}

func TestFind_UniqueIDs(t *testing.T) {
	routes := []Route{sample("A", "1", "first"), sample("B", "2", "second")}

	got, ok := Find(routes, "A1")
	require.True(t, ok)
	assert.Equal(t, "first", got.Route.Title)

	got, ok = Find(routes, "B2")
	require.True(t, ok)
	assert.Equal(t, "second", got.Route.Title)

	_, ok = Find(routes, "Z9")
	assert.False(t, ok)
}

func TestFind_DuplicateIDsFirstWins(t *testing.T) {
	// "A" + "12" and "A1" + "2" collide on "A12".
	routes := []Route{
		sample("A", "12", "first"),
		sample("A1", "2", "second"),
		sample("A", "12", "third"),
	}

	got, ok := Find(routes, "A12")
	require.True(t, ok)
	assert.Equal(t, "first", got.Route.Title)
}

func TestFind_EmptyList(t *testing.T) {
	_, ok := Find(nil, "A1")
	assert.False(t, ok)
}

func TestCache_ReplaceOverwrites(t *testing.T) {
	c := NewCache()
	assert.True(t, c.FetchedAt().IsZero())

	first := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	c.Replace([]Route{sample("A", "1", "old"), sample("B", "2", "old")}, first)

	second := first.Add(time.Minute)
	c.Replace([]Route{sample("C", "3", "new")}, second)

	_, ok := c.Find("A1")
	assert.False(t, ok, "routes from the first fetch must be gone")
	got, ok := c.Find("C3")
	require.True(t, ok)
	assert.Equal(t, "new", got.Route.Title)
	assert.Len(t, c.Snapshot(), 1)
	assert.Equal(t, second, c.FetchedAt())
}

func TestCache_SnapshotIsCopy(t *testing.T) {
	c := NewCache()
	input := []Route{sample("A", "1", "orig")}
	c.Replace(input, time.Now())

	input[0].Route.Title = "mutated"
	snap := c.Snapshot()
	snap[0].Route.Title = "mutated again"

	got, ok := c.Find("A1")
	require.True(t, ok)
	assert.Equal(t, "orig", got.Route.Title)
}
