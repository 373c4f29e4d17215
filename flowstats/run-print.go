package flowstats

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var logger = log.New(os.Stderr, "", 0)

type RunOptions struct {
	Config *Config
	// FS is rooted at the outputs directory; os.DirFS(Config.OutputsDir) when nil.
	FS      fs.FS
	NoPlot  bool
	CSVPath string
}

func (o RunOptions) fsys() fs.FS {
	if o.FS != nil {
		return o.FS
	}
	return os.DirFS(o.Config.OutputsDir)
}

func (o RunOptions) plotDir() string {
	if o.Config.PlotDir != "" {
		return o.Config.PlotDir
	}
	return o.Config.OutputsDir
}

func printSeriesSummary(printer *log.Logger, name string, summary *SeriesSummary) {
	printer.Printf("%-15s - Mean: %-7.2f - StdDev: %-6.2f - Variance: %-8.2f\n", name, summary.Mean, summary.StdDev, summary.Variance)
}

func printGroup(printer *log.Logger, indent string, group *Group) {
	printer.Printf("%s%s (n=%d)\n", indent, group.Name, group.Summaries.Trials)
	for _, metric := range Metrics {
		summary := metric.Summary(group.Summaries)
		printer.Printf("%s  %-8s - Mean: %-7.2f +/- %-6.2f %-2s - StdDev: %-6.2f - CI: %.0f%%\n",
			indent, metric.Name, summary.Mean, summary.HalfWidth, metric.Unit, summary.StdDev, summary.ConfidenceLevel*100)
	}
}

func printGroupedResult(printer *log.Logger, result *GroupedResult) {
	for _, group := range result.Groups {
		if result.Nested {
			printer.Printf("%s\n", group.Name)
			for _, child := range group.Children {
				printGroup(printer, "  ", child)
			}
		} else {
			printGroup(printer, "", group)
		}
		printer.Println()
	}
}

// savePlot renders a plot without ever failing the run; errors are only
// reported.
func savePlot(plotDir, name, format string, render func(file string) error) {
	if err := os.MkdirAll(plotDir, 0o755); err != nil {
		logger.Printf("'%s' could not have its plot made due to '%v'\n", name, err)
		return
	}
	if err := render(filepath.Join(plotDir, name+"."+format)); err != nil {
		logger.Printf("'%s' could not have its plot made due to '%v'\n", name, err)
	}
}

// RunTrialsAndPrint summarizes every trial directory of the outputs directory
// and plots the distribution of each metric across trials.
func RunTrialsAndPrint(ctx context.Context, printer *log.Logger, opts RunOptions) error {
	trials, err := LoadTrials(ctx, opts.fsys(), ".", opts.Config.LoadOptions())
	if err != nil {
		return errors.Wrap(err, "could not load trials")
	}

	for _, metric := range Metrics {
		series := metric.Series(trials)

		if !opts.NoPlot {
			savePlot(opts.plotDir(), metric.Name, opts.Config.PlotFormat, func(file string) error {
				return PlotDistribution(series, metric, file)
			})
		}

		summary, err := Describe(series)
		if err != nil {
			return errors.Wrapf(err, "%s summary failed", metric.Name)
		}
		printSeriesSummary(printer, metric.Name, summary)
	}

	return nil
}

// RunMetersAndPrint summarizes trials grouped by meter count.
func RunMetersAndPrint(ctx context.Context, printer *log.Logger, opts RunOptions) error {
	cfg := opts.Config

	trials, err := LoadGroups(ctx, opts.fsys(), ".", cfg.Meters, cfg.LoadOptions())
	if err != nil {
		return errors.Wrap(err, "could not load meter groups")
	}
	result, err := GroupTrials(trials, cfg.Meters, cfg.ConfidenceLevel)
	if err != nil {
		return errors.Wrap(err, "grouping by meters failed")
	}

	return reportGroupedResult(printer, opts, result, "meters")
}

// RunAggregationAndPrint summarizes trials grouped by aggregation percentage
// and then by meter count.
func RunAggregationAndPrint(ctx context.Context, printer *log.Logger, opts RunOptions) error {
	cfg := opts.Config

	trials, err := LoadNestedGroups(ctx, opts.fsys(), ".", cfg.Aggregation, cfg.Meters, cfg.LoadOptions())
	if err != nil {
		return errors.Wrap(err, "could not load aggregation groups")
	}
	result, err := GroupTrialsNested(trials, cfg.Aggregation, cfg.Meters, cfg.ConfidenceLevel)
	if err != nil {
		return errors.Wrap(err, "grouping by aggregation failed")
	}

	return reportGroupedResult(printer, opts, result, "meters")
}

func reportGroupedResult(printer *log.Logger, opts RunOptions, result *GroupedResult, xLabel string) error {
	printGroupedResult(printer, result)

	if !opts.NoPlot {
		for _, metric := range Metrics {
			savePlot(opts.plotDir(), metric.Name+"-by-"+xLabel, opts.Config.PlotFormat, func(file string) error {
				return PlotErrorBars(result, metric, xLabel, file)
			})
		}
	}

	if opts.CSVPath != "" {
		if err := ExportGroupedCSV(opts.CSVPath, result); err != nil {
			return errors.Wrap(err, "CSV export failed")
		}
	}

	return nil
}
