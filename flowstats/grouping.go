package flowstats

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// KeyPattern extracts an integer group key from a directory name shaped as
// Prefix + digits + Suffix, e.g. "10-meters" with Suffix "-meters".
type KeyPattern struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
}

func (p KeyPattern) String() string {
	return p.Prefix + "<n>" + p.Suffix
}

func (p KeyPattern) ParseKey(name string) (int, error) {
	if len(name) <= len(p.Prefix)+len(p.Suffix) || !strings.HasPrefix(name, p.Prefix) || !strings.HasSuffix(name, p.Suffix) {
		return 0, errors.Wrapf(ErrKeyParse, "%q does not match %s", name, p)
	}

	raw := name[len(p.Prefix) : len(name)-len(p.Suffix)]
	key, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrKeyParse, "%q: %q is not an integer", name, raw)
	}

	return key, nil
}

func (p KeyPattern) Matches(name string) bool {
	_, err := p.ParseKey(name)
	return err == nil
}

// GroupTrials summarizes trials grouped by the key encoded in each group name.
// Groups are ordered by ascending key.
func GroupTrials(trials map[string][]*TrialMetrics, pattern KeyPattern, level float64) (*GroupedResult, error) {
	groups, err := groupLevel(trials, pattern, leafBuilder(level))
	if err != nil {
		return nil, err
	}

	return &GroupedResult{Groups: groups}, nil
}

// GroupTrialsNested is GroupTrials with an outer grouping level, e.g.
// aggregation percentage outside and meter count inside.
func GroupTrialsNested(trials map[string]map[string][]*TrialMetrics, outer, inner KeyPattern, level float64) (*GroupedResult, error) {
	buildLeaf := leafBuilder(level)

	groups, err := groupLevel(trials, outer, func(name string, members map[string][]*TrialMetrics) (*Group, error) {
		children, err := groupLevel(members, inner, buildLeaf)
		if err != nil {
			return nil, errors.Wrapf(err, "group %s", name)
		}
		return &Group{Children: children}, nil
	})
	if err != nil {
		return nil, err
	}

	return &GroupedResult{Nested: true, Groups: groups}, nil
}

func leafBuilder(level float64) func(string, []*TrialMetrics) (*Group, error) {
	return func(name string, members []*TrialMetrics) (*Group, error) {
		summaries, err := SummarizeTrials(members, level)
		if err != nil {
			return nil, errors.Wrapf(err, "group %s", name)
		}
		return &Group{Summaries: summaries}, nil
	}
}

func groupLevel[T any](members map[string]T, pattern KeyPattern, build func(string, T) (*Group, error)) ([]*Group, error) {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	slices.Sort(names)

	byKey := make(map[int]*Group, len(names))
	keys := make([]int, 0, len(names))

	for _, name := range names {
		key, err := pattern.ParseKey(name)
		if err != nil {
			return nil, err
		}
		if prev, ok := byKey[key]; ok {
			return nil, errors.Wrapf(ErrKeyParse, "%q and %q share key %d", prev.Name, name, key)
		}

		group, err := build(name, members[name])
		if err != nil {
			return nil, err
		}
		group.Key = key
		group.Name = name

		byKey[key] = group
		keys = append(keys, key)
	}

	slices.Sort(keys)

	ret := make([]*Group, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, byKey[key])
	}

	return ret, nil
}

// SummarizeTrials runs Summarize over the loss, delay and jitter series of
// trials.
func SummarizeTrials(trials []*TrialMetrics, level float64) (*MetricSummaries, error) {
	loss, delay, jitter := splitSeries(trials)

	lossSummary, err := Summarize(loss, level)
	if err != nil {
		return nil, errors.Wrap(err, "loss")
	}
	delaySummary, err := Summarize(delay, level)
	if err != nil {
		return nil, errors.Wrap(err, "delay")
	}
	jitterSummary, err := Summarize(jitter, level)
	if err != nil {
		return nil, errors.Wrap(err, "jitter")
	}

	return &MetricSummaries{
		Trials: len(trials),
		Loss:   lossSummary,
		Delay:  delaySummary,
		Jitter: jitterSummary,
	}, nil
}

func splitSeries(trials []*TrialMetrics) (loss, delay, jitter []float64) {
	for _, trial := range trials {
		loss = append(loss, trial.LossPercent)
		delay = append(delay, trial.MeanDelayMS)
		jitter = append(jitter, trial.MeanJitterMS)
	}

	return loss, delay, jitter
}
