package cpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays a fixed list of reads; a nil snapshot pointer is a failure.
type scripted struct {
	reads []*Snapshot
	i     int
}

func (s *scripted) Read() (Snapshot, error) {
	if s.i >= len(s.reads) {
		return Snapshot{}, errors.New("exhausted")
	}
	r := s.reads[s.i]
	s.i++
	if r == nil {
		return Snapshot{}, errors.New("unavailable")
	}
	return *r, nil
}

func snap(user, idle uint64) *Snapshot {
	return &Snapshot{User: user, Idle: idle}
}

func TestSampler_CalibrationThenSmoothing(t *testing.T) {
	src := &scripted{reads: []*Snapshot{snap(100, 100), snap(150, 100)}}
	s := NewSampler(src, DefaultSmoothing, nil)

	assert.Equal(t, 0.0, s.Sample(), "first read is calibration")
	assert.InDelta(t, 50.0, s.Sample(), 1e-9)
}

func TestSampler_ZeroDeltaKeepsValue(t *testing.T) {
	src := &scripted{reads: []*Snapshot{snap(100, 100), snap(150, 100), snap(150, 100), snap(150, 150)}}
	s := NewSampler(src, DefaultSmoothing, nil)

	s.Sample()
	first := s.Sample()
	assert.Equal(t, first, s.Sample(), "identical totals leave load unchanged")

	// the zero-delta read still replaced the baseline: 50 idle of 50 total
	assert.InDelta(t, first*DefaultSmoothing, s.Sample(), 1e-9)
}

func TestSampler_ReadFailureKeepsValue(t *testing.T) {
	src := &scripted{reads: []*Snapshot{nil, snap(100, 100), snap(200, 100), nil}}
	s := NewSampler(src, DefaultSmoothing, nil)

	assert.Equal(t, 0.0, s.Sample(), "failure before baseline")
	assert.Equal(t, 0.0, s.Sample(), "calibration")
	load := s.Sample()
	assert.InDelta(t, 50.0, load, 1e-9)
	assert.Equal(t, load, s.Sample(), "failure returns last value")
}

func TestSampler_CounterResetRebaselines(t *testing.T) {
	src := &scripted{reads: []*Snapshot{snap(1000, 1000), snap(1100, 1000), snap(10, 10), snap(10, 110)}}
	s := NewSampler(src, DefaultSmoothing, nil)

	s.Sample()
	load := s.Sample()
	assert.Equal(t, load, s.Sample(), "backwards counters are not diffed")
	assert.InDelta(t, load*DefaultSmoothing, s.Sample(), 1e-9, "diffed against the post-reset snapshot")
}

func TestSampler_StaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	cur := Snapshot{}
	reads := make([]*Snapshot, 0, 2000)
	for i := 0; i < 2000; i++ {
		next := cur
		next.User += uint64(rng.Intn(50))
		next.Nice += uint64(rng.Intn(5))
		next.System += uint64(rng.Intn(20))
		next.Idle += uint64(rng.Intn(100))
		next.IOWait += uint64(rng.Intn(10))
		next.IRQ += uint64(rng.Intn(3))
		next.SoftIRQ += uint64(rng.Intn(3)) + 1 // strictly increasing total
		cur = next
		s := next
		reads = append(reads, &s)
	}

	s := NewSampler(&scripted{reads: reads}, DefaultSmoothing, nil)
	for range reads {
		load := s.Sample()
		require.GreaterOrEqual(t, load, 0.0)
		require.LessOrEqual(t, load, 100.0)
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Smoothing = 1
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.Source = "sysfs"
	assert.Error(t, c.Validate())
	_, err := c.NewSource()
	assert.Error(t, err)

	c.Source = SourceGopsutil
	src, err := c.NewSource()
	require.NoError(t, err)
	assert.IsType(t, PSUtil{}, src)
}
