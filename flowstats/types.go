package flowstats

type FlowRecord struct {
	FlowID      uint32
	TxPackets   uint64
	RxPackets   uint64
	LostPackets uint64
	DelaySumMS  float64
	JitterSumMS float64
}

type FlowMetrics struct {
	LossPercent  float64
	MeanDelayMS  float64
	MeanJitterMS float64
	HasTiming    bool
}

type TrialMetrics struct {
	Name         string
	Flows        int
	LossPercent  float64
	MeanDelayMS  float64
	MeanJitterMS float64
}

type SeriesSummary struct {
	NSamples int
	Mean     float64
	Variance float64
	StdDev   float64
	Min      float64
	Max      float64
	MinIndex int
	MaxIndex int

	// Set by Summarize only.
	StdErr          float64
	ConfidenceLevel float64
	HalfWidth       float64
}

type MetricSummaries struct {
	Trials int
	Loss   *SeriesSummary
	Delay  *SeriesSummary
	Jitter *SeriesSummary
}

// Group is one level of a GroupedResult. Leaf groups carry Summaries, outer
// groups of a nested result carry Children instead.
type Group struct {
	Key       int
	Name      string
	Summaries *MetricSummaries
	Children  []*Group
}

type GroupedResult struct {
	Nested bool
	Groups []*Group
}

// Metric selects one of loss, delay or jitter from trial and group results.
type Metric struct {
	Name    string
	Unit    string
	Trial   func(*TrialMetrics) float64
	Summary func(*MetricSummaries) *SeriesSummary
}

var Metrics = []Metric{
	{
		Name:    "loss",
		Unit:    "%",
		Trial:   func(t *TrialMetrics) float64 { return t.LossPercent },
		Summary: func(s *MetricSummaries) *SeriesSummary { return s.Loss },
	},
	{
		Name:    "delay",
		Unit:    "ms",
		Trial:   func(t *TrialMetrics) float64 { return t.MeanDelayMS },
		Summary: func(s *MetricSummaries) *SeriesSummary { return s.Delay },
	},
	{
		Name:    "jitter",
		Unit:    "ms",
		Trial:   func(t *TrialMetrics) float64 { return t.MeanJitterMS },
		Summary: func(s *MetricSummaries) *SeriesSummary { return s.Jitter },
	},
}

func (m Metric) Series(trials []*TrialMetrics) []float64 {
	ret := make([]float64, 0, len(trials))
	for _, trial := range trials {
		ret = append(ret, m.Trial(trial))
	}
	return ret
}
