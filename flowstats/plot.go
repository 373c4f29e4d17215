package flowstats

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth     = 8 * vg.Inch
	plotHeight    = 5 * vg.Inch
	histogramBins = 10
)

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// PlotDistribution renders a normalized histogram of per-trial values. The
// image format follows the extension of file.
func PlotDistribution(values []float64, metric Metric, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s distribution over %d trials", metric.Name, len(values))
	p.X.Label.Text = fmt.Sprintf("%s (%s)", metric.Name, metric.Unit)
	p.Y.Label.Text = "density"

	hist, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return errors.Wrapf(err, "%s histogram", metric.Name)
	}
	hist.Normalize(1)
	p.Add(hist)

	return p.Save(plotWidth, plotHeight, file)
}

// PlotErrorBars renders group means with their confidence intervals against
// the group key. Nested results get one line per outer group.
func PlotErrorBars(result *GroupedResult, metric Metric, xLabel string, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by %s", metric.Name, xLabel)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", metric.Name, metric.Unit)

	lines := map[string][]*Group{}
	names := []string{}
	if result.Nested {
		for _, outer := range result.Groups {
			lines[outer.Name] = outer.Children
			names = append(names, outer.Name)
		}
	} else {
		lines[metric.Name] = result.Groups
		names = append(names, metric.Name)
	}

	for index, name := range names {
		points := groupErrorPoints(lines[name], metric)

		line, scatter, err := plotter.NewLinePoints(points)
		if err != nil {
			return errors.Wrapf(err, "%s line", name)
		}
		bars, err := plotter.NewYErrorBars(points)
		if err != nil {
			return errors.Wrapf(err, "%s error bars", name)
		}

		line.Color = plotutil.Color(index)
		scatter.Color = plotutil.Color(index)
		bars.Color = plotutil.Color(index)

		p.Add(line, scatter, bars)
		p.Legend.Add(name, line, scatter)
	}

	return p.Save(plotWidth, plotHeight, file)
}

func groupErrorPoints(groups []*Group, metric Metric) errorPoints {
	ret := errorPoints{
		XYs:     make(plotter.XYs, len(groups)),
		YErrors: make(plotter.YErrors, len(groups)),
	}

	for index, group := range groups {
		summary := metric.Summary(group.Summaries)
		ret.XYs[index].X = float64(group.Key)
		ret.XYs[index].Y = summary.Mean
		ret.YErrors[index].Low = summary.HalfWidth
		ret.YErrors[index].High = summary.HalfWidth
	}

	return ret
}
