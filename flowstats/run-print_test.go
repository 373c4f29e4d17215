package flowstats

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
)

func twoTrialFS() fstest.MapFS {
	fsys := fstest.MapFS{}
	addTrial(fsys, "trial1", trialDoc(5, 2, 1))
	addTrial(fsys, "trial2", trialDoc(15, 4, 3))
	return fsys
}

func TestRunTrialsAndPrint(t *testing.T) {
	out := &bytes.Buffer{}
	printer := log.New(out, "", 0)

	err := RunTrialsAndPrint(context.Background(), printer, RunOptions{
		Config: DefaultConfig(),
		FS:     twoTrialFS(),
		NoPlot: true,
	})

	assert.NilError(t, err)
	assert.Equal(t, out.String(), ""+
		"loss            - Mean: 10.00   - StdDev: 5.00   - Variance: 25.00   \n"+
		"delay           - Mean: 3.00    - StdDev: 1.00   - Variance: 1.00    \n"+
		"jitter          - Mean: 2.00    - StdDev: 1.00   - Variance: 1.00    \n")
}

func TestRunTrialsAndPrint_SingleTrial(t *testing.T) {
	fsys := fstest.MapFS{}
	addTrial(fsys, "trial1", trialDoc(5, 2, 1))
	out := &bytes.Buffer{}

	err := RunTrialsAndPrint(context.Background(), log.New(out, "", 0), RunOptions{
		Config: DefaultConfig(),
		FS:     fsys,
		NoPlot: true,
	})

	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(out.String(), "loss            - Mean: 5.00    - StdDev: 0.00   - Variance: 0.00    \n"))
}

func TestRunTrialsAndPrint_WritesPlots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlotDir = filepath.Join(t.TempDir(), "plots")

	err := RunTrialsAndPrint(context.Background(), log.New(&bytes.Buffer{}, "", 0), RunOptions{
		Config: cfg,
		FS:     twoTrialFS(),
	})

	assert.NilError(t, err)
	for _, name := range []string{"loss.svg", "delay.svg", "jitter.svg"} {
		info, err := os.Stat(filepath.Join(cfg.PlotDir, name))
		assert.NilError(t, err)
		assert.Assert(t, info.Size() > 0)
	}
}

func TestRunTrialsAndPrint_PlotFailureDoesNotAbort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlotDir = t.TempDir()
	cfg.PlotFormat = "gif"
	out := &bytes.Buffer{}

	err := RunTrialsAndPrint(context.Background(), log.New(out, "", 0), RunOptions{
		Config: cfg,
		FS:     twoTrialFS(),
	})

	assert.NilError(t, err)
	assert.Equal(t, strings.Count(out.String(), "\n"), 3)
}

func TestRunTrialsAndPrint_ParseError(t *testing.T) {
	fsys := twoTrialFS()
	addTrial(fsys, "trial3", `<FlowMonitor><FlowStats><Flow txPackets="1"/></FlowStats></FlowMonitor>`)

	err := RunTrialsAndPrint(context.Background(), log.New(&bytes.Buffer{}, "", 0), RunOptions{
		Config: DefaultConfig(),
		FS:     fsys,
		NoPlot: true,
	})

	assert.Assert(t, errors.Is(err, ErrParse))
	assert.ErrorContains(t, err, "could not load trials")
}

func TestRunMetersAndPrint(t *testing.T) {
	fsys := fstest.MapFS{}
	addTrial(fsys, "10-meters/trial1", trialDoc(10, 2, 1))
	addTrial(fsys, "10-meters/trial2", trialDoc(20, 4, 1))
	addTrial(fsys, "9-meters/trial1", trialDoc(1, 1, 1))
	addTrial(fsys, "9-meters/trial2", trialDoc(3, 1, 1))

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.PlotDir = dir
	out := &bytes.Buffer{}

	err := RunMetersAndPrint(context.Background(), log.New(out, "", 0), RunOptions{
		Config:  cfg,
		FS:      fsys,
		CSVPath: filepath.Join(dir, "meters.csv"),
	})

	assert.NilError(t, err)
	printed := out.String()
	assert.Assert(t, strings.Index(printed, "9-meters (n=2)") < strings.Index(printed, "10-meters (n=2)"))
	assert.Assert(t, strings.Contains(printed, "  loss     - Mean: 15.00   +/- "))

	for _, name := range []string{"meters.csv", "loss-by-meters.svg", "delay-by-meters.svg", "jitter-by-meters.svg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NilError(t, err, name)
	}
}

func TestRunMetersAndPrint_SingleTrialGroup(t *testing.T) {
	fsys := fstest.MapFS{}
	addTrial(fsys, "10-meters/trial1", trialDoc(10, 2, 1))

	err := RunMetersAndPrint(context.Background(), log.New(&bytes.Buffer{}, "", 0), RunOptions{
		Config: DefaultConfig(),
		FS:     fsys,
		NoPlot: true,
	})

	assert.Assert(t, errors.Is(err, ErrInsufficientData))
}

func TestRunAggregationAndPrint(t *testing.T) {
	fsys := fstest.MapFS{}
	addTrial(fsys, "aggregation-50/5-meters/trial1", trialDoc(1, 1, 1))
	addTrial(fsys, "aggregation-50/5-meters/trial2", trialDoc(3, 1, 1))
	addTrial(fsys, "aggregation-10/5-meters/trial1", trialDoc(2, 1, 1))
	addTrial(fsys, "aggregation-10/5-meters/trial2", trialDoc(4, 1, 1))
	out := &bytes.Buffer{}

	err := RunAggregationAndPrint(context.Background(), log.New(out, "", 0), RunOptions{
		Config: DefaultConfig(),
		FS:     fsys,
		NoPlot: true,
	})

	assert.NilError(t, err)
	printed := out.String()
	assert.Assert(t, strings.HasPrefix(printed, "aggregation-10\n  5-meters (n=2)\n"))
	assert.Assert(t, strings.Contains(printed, "aggregation-50\n  5-meters (n=2)\n"))
}
