package l4worldmap

import (
	"fmt"

	"github.com/banshee-data/rover.nav/internal/config"
	"github.com/banshee-data/rover.nav/internal/rover/l3coords"
)

// Observations are one tick's world cells per class.
type Observations struct {
	Navigable l3coords.WorldPoints
	Sample    l3coords.WorldPoints
	Obstacle  l3coords.WorldPoints
}

// Accumulator writes observations into a WorldMap it owns.
type Accumulator struct {
	m         *WorldMap
	intensity uint8
}

// NewAccumulator creates an accumulator over a fresh map.
func NewAccumulator(size int, intensity uint8) (*Accumulator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %d", size)
	}
	if intensity == 0 {
		return nil, fmt.Errorf("detected intensity must be non-zero")
	}
	return &Accumulator{m: NewWorldMap(size), intensity: intensity}, nil
}

// AccumulatorFromTuning builds an Accumulator from a loaded TuningConfig.
func AccumulatorFromTuning(cfg *config.TuningConfig) (*Accumulator, error) {
	return NewAccumulator(cfg.GetWorldSize(), uint8(cfg.GetMapIntensity()))
}

// Mark overwrites ch at every listed cell with the detected intensity.
func (a *Accumulator) Mark(ch Channel, pts l3coords.WorldPoints) {
	for i := range pts.X {
		a.m.Set(pts.X[i], pts.Y[i], ch, a.intensity)
	}
}

// Update writes one tick of observations. Channels are independent, so a
// cell may be marked in more than one.
func (a *Accumulator) Update(obs Observations) {
	a.Mark(ChannelNavigable, obs.Navigable)
	a.Mark(ChannelSample, obs.Sample)
	a.Mark(ChannelObstacle, obs.Obstacle)
}

// Map returns a read-only copy of the current map.
func (a *Accumulator) Map() *WorldMap {
	return a.m.Snapshot()
}
