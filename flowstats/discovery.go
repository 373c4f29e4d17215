package flowstats

import (
	"context"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFlowMonFile = "FlowMon.xml"
	defaultTrialPrefix = "trial"
	defaultWorkers     = 4
)

type LoadOptions struct {
	FlowMonFile string
	TrialPrefix string
	Workers     int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.FlowMonFile == "" {
		o.FlowMonFile = defaultFlowMonFile
	}
	if o.TrialPrefix == "" {
		o.TrialPrefix = defaultTrialPrefix
	}
	if o.Workers < 1 {
		o.Workers = defaultWorkers
	}
	return o
}

// ListDirs returns the names of the subdirectories of dir accepted by match,
// sorted by name.
func ListDirs(fsys fs.FS, dir string, match func(string) bool) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	ret := []string{}
	for _, entry := range entries {
		if entry.IsDir() && match(entry.Name()) {
			ret = append(ret, entry.Name())
		}
	}

	return ret, nil
}

// LoadTrials aggregates every trial directory directly under dir. Trials are
// processed concurrently; the result keeps directory name order.
func LoadTrials(ctx context.Context, fsys fs.FS, dir string, opts LoadOptions) ([]*TrialMetrics, error) {
	opts = opts.withDefaults()

	names, err := ListDirs(fsys, dir, func(name string) bool {
		return strings.HasPrefix(name, opts.TrialPrefix)
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(ErrEmptySeries, "no %s* directories in %s", opts.TrialPrefix, dir)
	}

	ret := make([]*TrialMetrics, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for index, name := range names {
		index, name := index, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			trial, err := loadTrial(fsys, path.Join(dir, name), opts.FlowMonFile)
			if err != nil {
				return err
			}
			ret[index] = trial

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ret, nil
}

// LoadGroups loads the trials of every directory under dir matching pattern,
// keyed by directory name.
func LoadGroups(ctx context.Context, fsys fs.FS, dir string, pattern KeyPattern, opts LoadOptions) (map[string][]*TrialMetrics, error) {
	names, err := ListDirs(fsys, dir, pattern.Matches)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(ErrEmptySeries, "no %s directories in %s", pattern, dir)
	}

	ret := make(map[string][]*TrialMetrics, len(names))
	for _, name := range names {
		trials, err := LoadTrials(ctx, fsys, path.Join(dir, name), opts)
		if err != nil {
			return nil, err
		}
		ret[name] = trials
	}

	return ret, nil
}

// LoadNestedGroups is LoadGroups over two directory levels.
func LoadNestedGroups(ctx context.Context, fsys fs.FS, dir string, outer, inner KeyPattern, opts LoadOptions) (map[string]map[string][]*TrialMetrics, error) {
	names, err := ListDirs(fsys, dir, outer.Matches)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Wrapf(ErrEmptySeries, "no %s directories in %s", outer, dir)
	}

	ret := make(map[string]map[string][]*TrialMetrics, len(names))
	for _, name := range names {
		groups, err := LoadGroups(ctx, fsys, path.Join(dir, name), inner, opts)
		if err != nil {
			return nil, err
		}
		ret[name] = groups
	}

	return ret, nil
}

func loadTrial(fsys fs.FS, trialDir string, flowMonFile string) (*TrialMetrics, error) {
	report, err := fsys.Open(path.Join(trialDir, flowMonFile))
	if err != nil {
		return nil, errors.Wrapf(err, "trial %s", trialDir)
	}
	defer report.Close()

	return AggregateTrial(trialDir, report)
}
