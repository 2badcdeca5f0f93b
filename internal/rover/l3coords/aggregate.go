package l3coords

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/rover.nav/internal/rover"
)

// MeanPolar returns the arithmetic mean distance and angle. An empty set
// yields zero for both.
func MeanPolar(dists, angles []float64) (meanDist, meanAngle float64) {
	if len(dists) == 0 || len(angles) == 0 {
		return 0, 0
	}
	meanDist = stat.Mean(dists, nil)
	meanAngle = stat.Mean(angles, nil)
	if math.IsNaN(meanDist) || math.IsNaN(meanAngle) {
		return 0, 0
	}
	return meanDist, meanAngle
}

// Summarize reduces one tick's rover points to the controller's perception
// summary. When more than sampleMinPixels sample points are visible the
// steering target switches from navigable terrain to the sample.
func Summarize(navigable, sample RoverPoints, sampleMinPixels int) rover.Perception {
	p := rover.Perception{
		Valid:        true,
		GroundPixels: navigable.Len(),
		SamplePixels: sample.Len(),
	}

	target := navigable
	if sample.Len() > sampleMinPixels {
		p.FoundSample = true
		target = sample
	}

	dist, angle := MeanPolar(ToPolar(target))
	p.MeanDist = dist
	p.MeanAngle = angle * 180 / math.Pi
	return p
}
