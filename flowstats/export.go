package flowstats

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

var summaryCSVHeader = []string{
	"outer_key",
	"key",
	"metric",
	"n",
	"mean",
	"variance",
	"stddev",
	"stderr",
	"confidence",
	"half_width",
	"min",
	"max",
}

// WriteGroupedCSV writes one row per leaf group and metric, in group order.
// outer_key is empty for single level results.
func WriteGroupedCSV(out io.Writer, result *GroupedResult) error {
	w := csv.NewWriter(out)

	if err := w.Write(summaryCSVHeader); err != nil {
		return err
	}

	writeLeaves := func(outerKey string, groups []*Group) error {
		for _, group := range groups {
			for _, metric := range Metrics {
				if err := w.Write(summaryRow(outerKey, group.Key, metric.Name, metric.Summary(group.Summaries))); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if result.Nested {
		for _, outer := range result.Groups {
			if err := writeLeaves(strconv.Itoa(outer.Key), outer.Children); err != nil {
				return err
			}
		}
	} else if err := writeLeaves("", result.Groups); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func ExportGroupedCSV(path string, result *GroupedResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "cannot create CSV directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create CSV file")
	}

	if err := WriteGroupedCSV(f, result); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}

	return f.Close()
}

func summaryRow(outerKey string, key int, metric string, s *SeriesSummary) []string {
	return []string{
		outerKey,
		strconv.Itoa(key),
		metric,
		strconv.Itoa(s.NSamples),
		ff(s.Mean),
		ff(s.Variance),
		ff(s.StdDev),
		ff(s.StdErr),
		ff(s.ConfidenceLevel),
		ff(s.HalfWidth),
		ff(s.Min),
		ff(s.Max),
	}
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
