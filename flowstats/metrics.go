package flowstats

import (
	"io"

	"github.com/pkg/errors"
)

// DeriveFlowMetrics computes loss, mean delay and mean jitter of one flow.
// Delay and jitter are only meaningful for flows with at least two received
// packets; HasTiming reports whether they were computed.
func DeriveFlowMetrics(record FlowRecord) (FlowMetrics, error) {
	if record.TxPackets == 0 {
		return FlowMetrics{}, errors.Wrapf(ErrDivision, "flow %d", record.FlowID)
	}

	ret := FlowMetrics{
		LossPercent: 100.0 * float64(record.LostPackets) / float64(record.TxPackets),
	}

	if record.RxPackets > 1 {
		rxF64 := float64(record.RxPackets)
		ret.MeanDelayMS = record.DelaySumMS / rxF64
		ret.MeanJitterMS = record.JitterSumMS / rxF64
		ret.HasTiming = true
	}

	return ret, nil
}

// TrialAccumulator collects the per-flow metrics of one trial.
type TrialAccumulator struct {
	loss   []float64
	delay  []float64
	jitter []float64
}

func (a *TrialAccumulator) Add(record FlowRecord) error {
	metrics, err := DeriveFlowMetrics(record)
	if err != nil {
		return err
	}

	a.loss = append(a.loss, metrics.LossPercent)
	if metrics.HasTiming {
		a.delay = append(a.delay, metrics.MeanDelayMS)
		a.jitter = append(a.jitter, metrics.MeanJitterMS)
	}

	return nil
}

func (a *TrialAccumulator) Flows() int {
	return len(a.loss)
}

func (a *TrialAccumulator) LossMean() (float64, error) {
	return meanOf(a.loss, "loss")
}

func (a *TrialAccumulator) DelayMean() (float64, error) {
	return meanOf(a.delay, "delay")
}

func (a *TrialAccumulator) JitterMean() (float64, error) {
	return meanOf(a.jitter, "jitter")
}

func (a *TrialAccumulator) Metrics(name string) (*TrialMetrics, error) {
	loss, err := a.LossMean()
	if err != nil {
		return nil, errors.Wrapf(err, "trial %s", name)
	}
	delay, err := a.DelayMean()
	if err != nil {
		return nil, errors.Wrapf(err, "trial %s", name)
	}
	jitter, err := a.JitterMean()
	if err != nil {
		return nil, errors.Wrapf(err, "trial %s", name)
	}

	return &TrialMetrics{
		Name:         name,
		Flows:        a.Flows(),
		LossPercent:  loss,
		MeanDelayMS:  delay,
		MeanJitterMS: jitter,
	}, nil
}

// AggregateTrial reads one flow monitor report and reduces it to the trial's
// mean loss, delay and jitter.
func AggregateTrial(name string, report io.Reader) (*TrialMetrics, error) {
	acc := &TrialAccumulator{}
	reader := NewFlowReader(report)

	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "trial %s", name)
		}
		if err := acc.Add(record); err != nil {
			return nil, errors.Wrapf(err, "trial %s", name)
		}
	}

	return acc.Metrics(name)
}

func meanOf(series []float64, label string) (float64, error) {
	if len(series) == 0 {
		return 0, errors.Wrapf(ErrEmptySeries, "no %s samples", label)
	}

	return getMean(series), nil
}
