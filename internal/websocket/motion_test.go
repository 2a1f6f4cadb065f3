package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Significance Tests
// =============================================================================

func TestMotionFilter_FirstSampleAlwaysAccepted(t *testing.T) {
	f := DefaultMotionFilter()
	assert.True(t, f.Significant(nil, 28.6139, 77.2090, time.Now()))
}

func TestMotionFilter_IdenticalAndImmediate_Rejected(t *testing.T) {
	f := DefaultMotionFilter()
	now := time.Now()
	prev := &Sample{
		UserID:     uuid.New(),
		Latitude:   28.6139,
		Longitude:  77.2090,
		ObservedAt: now,
	}

	assert.False(t, f.Significant(prev, 28.6139, 77.2090, now))
}

func TestMotionFilter_BigMoveImmediate_Accepted(t *testing.T) {
	f := DefaultMotionFilter()
	now := time.Now()
	prev := &Sample{
		Latitude:   28.6139,
		Longitude:  77.2090,
		ObservedAt: now,
	}

	// Roughly 1km north: distance alone clears the gate.
	assert.True(t, f.Significant(prev, 28.6229, 77.2090, now))
}

func TestMotionFilter_IdenticalAfterInterval_Accepted(t *testing.T) {
	f := DefaultMotionFilter()
	now := time.Now()
	prev := &Sample{
		Latitude:   28.6139,
		Longitude:  77.2090,
		ObservedAt: now.Add(-31 * time.Second),
	}

	// Stationary user still produces a heartbeat sample once the interval
	// elapses.
	assert.True(t, f.Significant(prev, 28.6139, 77.2090, now))
}

func TestMotionFilter_TinyJitterSoonAfter_Rejected(t *testing.T) {
	f := DefaultMotionFilter()
	now := time.Now()
	prev := &Sample{
		Latitude:   28.6139,
		Longitude:  77.2090,
		ObservedAt: now.Add(-5 * time.Second),
	}

	// ~5 meters of GPS jitter within the interval is noise.
	assert.False(t, f.Significant(prev, 28.61394, 77.20902, now))
}

// =============================================================================
// Haversine Tests
// =============================================================================

func TestHaversineKm_ZeroDistance(t *testing.T) {
	assert.Zero(t, haversineKm(28.6139, 77.2090, 28.6139, 77.2090))
}

func TestHaversineKm_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111km everywhere on the sphere.
	d := haversineKm(28.0, 77.0, 29.0, 77.0)
	assert.InDelta(t, 111.2, d, 0.5)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := haversineKm(19.0760, 72.8777, 28.6139, 77.2090)
	b := haversineKm(28.6139, 77.2090, 19.0760, 72.8777)
	assert.InDelta(t, a, b, 1e-9)
}
