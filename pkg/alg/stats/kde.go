package stats

import (
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// DefaultDensityPoints is the grid size used for density curves.
const DefaultDensityPoints = 200

// densityCut extends the evaluation grid this many bandwidths past the data.
const densityCut = 3

// fallbackBandwidth is used when Scott's rule yields zero (constant samples).
const fallbackBandwidth = 1.0

// Density is a Gaussian kernel density estimate evaluated on an even grid.
type Density struct {
	X         []float64
	Y         []float64
	Bandwidth float64
}

// Peak returns the largest density value.
func (d Density) Peak() float64 {
	return Max(d.Y)
}

// KDE estimates the density of the finite values with a Gaussian kernel and
// Scott's bandwidth, evaluated at points positions spanning the data range
// plus three bandwidths on either side.
func KDE(values []float64, points int) (Density, error) {
	finite := Finite(values)
	if len(finite) == 0 {
		return Density{}, ErrEmptySample
	}

	if points < 2 {
		points = DefaultDensityPoints
	}

	sample := mstats.Sample{Xs: finite}

	bandwidth := mstats.BandwidthScott(sample)
	if bandwidth <= 0 || math.IsNaN(bandwidth) {
		bandwidth = fallbackBandwidth
	}

	kde := &mstats.KDE{
		Sample:    sample,
		Kernel:    mstats.GaussianKernel,
		Bandwidth: bandwidth,
	}

	lo, hi := sample.Bounds()
	xs := vec.Linspace(lo-densityCut*bandwidth, hi+densityCut*bandwidth, points)

	return Density{
		X:         xs,
		Y:         vec.Map(kde.PDF, xs),
		Bandwidth: bandwidth,
	}, nil
}

// ViolinShape is a density outline scaled so the widest point spans halfWidth.
type ViolinShape struct {
	Positions []float64
	HalfWidth []float64
}

// NewViolinShape evaluates the KDE of values and scales it to halfWidth.
// The outline is clipped to the observed data range.
func NewViolinShape(values []float64, points int, halfWidth float64) (ViolinShape, error) {
	density, err := KDE(values, points)
	if err != nil {
		return ViolinShape{}, err
	}

	finite := Finite(values)
	lo, hi := Min(finite), Max(finite)

	peak := density.Peak()
	if peak == 0 {
		peak = 1
	}

	shape := ViolinShape{}

	for i, x := range density.X {
		if x < lo || x > hi {
			continue
		}

		shape.Positions = append(shape.Positions, x)
		shape.HalfWidth = append(shape.HalfWidth, density.Y[i]/peak*halfWidth)
	}

	if len(shape.Positions) == 0 {
		shape.Positions = []float64{lo, hi}
		shape.HalfWidth = []float64{halfWidth, halfWidth}
	}

	return shape, nil
}
