package flowstats

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

const DefaultConfidenceLevel = 0.95

func getMean(series []float64) float64 {
	ret := float64(0)
	nSamplesF64 := float64(len(series))

	for _, element := range series {
		ret += element / nSamplesF64
	}

	return ret
}

// population variance, i.e. divided by N
func getVarianceUsingMean(series []float64, mean float64) float64 {
	ret := float64(0)
	nSamplesF64 := float64(len(series))

	for _, element := range series {
		ret += (element - mean) * (element - mean) / nSamplesF64
	}

	return ret
}

func getStdErrUsingVariance(variance float64, nSamples int) float64 {
	nSamplesF64 := float64(nSamples)
	sampleVariance := variance * nSamplesF64 / (nSamplesF64 - 1)

	return math.Sqrt(sampleVariance) / math.Sqrt(nSamplesF64)
}

// two-tailed critical value of Student's t for the given confidence level
func getTCritical(level float64, degreesOfFreedom int) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}

	return t.Quantile((1 + level) / 2)
}

// Describe computes the population statistics of series.
func Describe(series []float64) (*SeriesSummary, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	ret := &SeriesSummary{
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		MinIndex: 0,
		MaxIndex: 0,
	}

	for index, element := range series {
		if element < ret.Min {
			ret.Min = element
			ret.MinIndex = index
		}
		if element > ret.Max {
			ret.Max = element
			ret.MaxIndex = index
		}
	}

	ret.NSamples = len(series)
	ret.Mean = getMean(series)
	ret.Variance = getVarianceUsingMean(series, ret.Mean)
	ret.StdDev = math.Sqrt(ret.Variance)

	return ret, nil
}

// ConfidenceHalfWidth returns h such that mean ± h is the confidence interval
// of the mean of series at the given level, using Student's t with N-1
// degrees of freedom.
func ConfidenceHalfWidth(series []float64, level float64) (float64, error) {
	if !(level > 0 && level < 1) {
		return 0, errors.Errorf("confidence level %v out of range (0, 1)", level)
	}
	if len(series) < 2 {
		return 0, errors.Wrapf(ErrInsufficientData, "%d sample(s)", len(series))
	}

	mean := getMean(series)
	stdErr := getStdErrUsingVariance(getVarianceUsingMean(series, mean), len(series))

	return stdErr * getTCritical(level, len(series)-1), nil
}

// Summarize is Describe plus the confidence interval of the mean.
func Summarize(series []float64, level float64) (*SeriesSummary, error) {
	halfWidth, err := ConfidenceHalfWidth(series, level)
	if err != nil {
		return nil, err
	}

	ret, err := Describe(series)
	if err != nil {
		return nil, err
	}
	ret.StdErr = getStdErrUsingVariance(ret.Variance, ret.NSamples)
	ret.ConfidenceLevel = level
	ret.HalfWidth = halfWidth

	return ret, nil
}
