package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiderSetJSONIsSorted(t *testing.T) {
	s := NewRiderSet("carol", "alice", "bob", "alice")
	assert.Equal(t, 3, s.Len())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["alice","bob","carol"]`, string(raw))

	var back RiderSet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}

func TestRideCloneIsDeep(t *testing.T) {
	driver := "dave"
	r := &Ride{ID: "ride_1", Riders: NewRiderSet("alice"), Owner: "alice", DriverID: &driver, MaxRiders: 2}

	c := r.Clone()
	c.Riders.Add("bob")
	*c.DriverID = "eve"

	assert.False(t, r.Riders.Has("bob"))
	assert.Equal(t, "dave", *r.DriverID)
	assert.True(t, r.HasDriver("dave"))
	assert.False(t, r.IsFull())
	assert.True(t, c.IsFull())
}
