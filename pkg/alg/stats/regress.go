package stats

import (
	"errors"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateFit is returned when x has no variance or too few points.
var ErrDegenerateFit = errors.New("least-squares fit needs two distinct x values")

// Interval selects the uncertainty drawn around an estimate.
type Interval int

const (
	// IntervalNone draws no band or error bar.
	IntervalNone Interval = iota
	// IntervalCI95 draws a 95% t-based confidence interval.
	IntervalCI95
	// IntervalSD draws plus or minus one standard deviation.
	IntervalSD
)

// ConfidenceLevel is the coverage used by IntervalCI95.
const ConfidenceLevel = 0.95

// Fit is an ordinary least-squares line y = Alpha + Beta·x.
type Fit struct {
	Alpha      float64
	Beta       float64
	N          int
	ResidualSE float64

	meanX float64
	sxx   float64
}

// LinearFit regresses y on x, dropping pairs where either value is NaN.
func LinearFit(x, y []float64) (Fit, error) {
	if len(x) != len(y) {
		return Fit{}, ErrLengthMismatch
	}

	xs, ys := completePairs(x, y)
	if len(xs) < minPairs {
		return Fit{}, ErrDegenerateFit
	}

	meanX := stat.Mean(xs, nil)

	var sxx float64

	for _, v := range xs {
		sxx += (v - meanX) * (v - meanX)
	}

	if sxx == 0 {
		return Fit{}, ErrDegenerateFit
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	fit := Fit{Alpha: alpha, Beta: beta, N: len(xs), meanX: meanX, sxx: sxx}

	if fit.N > minPairs {
		var ssr float64

		for i, v := range xs {
			r := ys[i] - fit.Predict(v)
			ssr += r * r
		}

		fit.ResidualSE = math.Sqrt(ssr / float64(fit.N-minPairs))
	}

	return fit, nil
}

// Predict evaluates the fitted line at x.
func (f Fit) Predict(x float64) float64 {
	return f.Alpha + f.Beta*x
}

// Residuals returns y − ŷ for every pair. NaN inputs stay NaN.
func (f Fit) Residuals(x, y []float64) []float64 {
	out := make([]float64, len(x))

	for i := range x {
		out[i] = y[i] - f.Predict(x[i])
	}

	return out
}

// Band returns the lower and upper envelope of the fit at xs.
// IntervalCI95 is the confidence band of the mean response;
// IntervalSD is the fit plus or minus the residual standard error.
func (f Fit) Band(xs []float64, kind Interval) (lower, upper []float64) {
	lower = make([]float64, len(xs))
	upper = make([]float64, len(xs))

	var tcrit float64

	if kind == IntervalCI95 && f.N > minPairs {
		tcrit = tCritical(f.N - minPairs)
	}

	for i, x := range xs {
		center := f.Predict(x)

		var half float64

		switch kind {
		case IntervalCI95:
			half = tcrit * f.ResidualSE * math.Sqrt(1/float64(f.N)+(x-f.meanX)*(x-f.meanX)/f.sxx)
		case IntervalSD:
			half = f.ResidualSE
		case IntervalNone:
		}

		lower[i] = center - half
		upper[i] = center + half
	}

	return lower, upper
}

// MeanError returns the mean of the finite values with the interval bounds
// selected by kind. A sample too small for an interval collapses to the mean.
func MeanError(values []float64, kind Interval) (mean, lo, hi float64, err error) {
	finite := Finite(values)
	if len(finite) == 0 {
		return 0, 0, 0, ErrEmptySample
	}

	mean = Mean(finite)

	if len(finite) < minPairs {
		return mean, mean, mean, nil
	}

	switch kind {
	case IntervalSD:
		sd := mstats.StdDev(finite)

		return mean, mean - sd, mean + sd, nil
	case IntervalCI95:
		n := len(finite)
		half := tCritical(n-1) * mstats.StdDev(finite) / math.Sqrt(float64(n))

		return mean, mean - half, mean + half, nil
	case IntervalNone:
	}

	return mean, mean, mean, nil
}

// tCritical is the two-sided Student's t quantile at ConfidenceLevel.
func tCritical(df int) float64 {
	return -mstats.InvCDF(mstats.TDist{V: float64(df)})((1 - ConfidenceLevel) / 2)
}

func completePairs(x, y []float64) (xs, ys []float64) {
	xs = make([]float64, 0, len(x))
	ys = make([]float64, 0, len(y))

	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}

		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}

	return xs, ys
}
