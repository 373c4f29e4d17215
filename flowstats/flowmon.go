package flowstats

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	flowMonitorElement = "FlowMonitor"
	flowStatsElement   = "FlowStats"
	flowElement        = "Flow"

	// ns-3 serializes Time attributes as e.g. "+200000000.0ns"
	durationSuffix = "ns"
	nanosPerMilli  = 1e6
)

// FlowReader streams the per-flow statistics of a flow monitor report. Only
// FlowMonitor/FlowStats/Flow elements are yielded; the classifier sections
// reuse the Flow element name and are skipped.
type FlowReader struct {
	dec     *xml.Decoder
	path    []string
	sawRoot bool
	nFlows  int
}

func NewFlowReader(r io.Reader) *FlowReader {
	return &FlowReader{dec: xml.NewDecoder(r)}
}

// Next returns the next flow record, or io.EOF once the document is exhausted.
func (r *FlowReader) Next() (FlowRecord, error) {
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if !r.sawRoot {
				return FlowRecord{}, errors.Wrapf(ErrParse, "no %s element", flowMonitorElement)
			}
			return FlowRecord{}, io.EOF
		}
		if err != nil {
			return FlowRecord{}, errors.Wrapf(ErrParse, "decoding xml: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			r.path = append(r.path, t.Name.Local)
			if len(r.path) == 1 {
				if t.Name.Local != flowMonitorElement {
					return FlowRecord{}, errors.Wrapf(ErrParse, "unexpected root element %q", t.Name.Local)
				}
				r.sawRoot = true
			}
			if len(r.path) == 3 && r.path[1] == flowStatsElement && t.Name.Local == flowElement {
				r.nFlows++
				record, err := parseFlowAttrs(t.Attr)
				if err != nil {
					return FlowRecord{}, errors.Wrapf(err, "flow #%d", r.nFlows)
				}
				return record, nil
			}
		case xml.EndElement:
			r.path = r.path[:len(r.path)-1]
		}
	}
}

func ReadFlows(r io.Reader) ([]FlowRecord, error) {
	records := []FlowRecord{}
	reader := NewFlowReader(r)

	for {
		record, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func parseFlowAttrs(attrs []xml.Attr) (FlowRecord, error) {
	values := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		values[attr.Name.Local] = attr.Value
	}

	ret := FlowRecord{}
	var err error

	if rawID, ok := values["flowId"]; ok {
		id, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			return FlowRecord{}, errors.Wrapf(ErrParse, "attribute flowId=%q is not a flow id", rawID)
		}
		ret.FlowID = uint32(id)
	}

	if ret.TxPackets, err = counterAttr(values, "txPackets"); err != nil {
		return FlowRecord{}, err
	}
	if ret.RxPackets, err = counterAttr(values, "rxPackets"); err != nil {
		return FlowRecord{}, err
	}
	if ret.LostPackets, err = counterAttr(values, "lostPackets"); err != nil {
		return FlowRecord{}, err
	}
	if ret.LostPackets > ret.TxPackets {
		return FlowRecord{}, errors.Wrapf(ErrParse, "lostPackets (%d) exceeds txPackets (%d)", ret.LostPackets, ret.TxPackets)
	}

	if ret.DelaySumMS, err = durationAttr(values, "delaySum"); err != nil {
		return FlowRecord{}, err
	}
	if ret.JitterSumMS, err = durationAttr(values, "jitterSum"); err != nil {
		return FlowRecord{}, err
	}

	return ret, nil
}

func counterAttr(values map[string]string, name string) (uint64, error) {
	raw, ok := values[name]
	if !ok {
		return 0, errors.Wrapf(ErrParse, "missing attribute %s", name)
	}

	count, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrParse, "attribute %s=%q is not a packet count", name, raw)
	}

	return count, nil
}

// durationAttr returns the attribute in milliseconds.
func durationAttr(values map[string]string, name string) (float64, error) {
	raw, ok := values[name]
	if !ok {
		return 0, errors.Wrapf(ErrParse, "missing attribute %s", name)
	}
	if len(raw) <= len(durationSuffix) || !strings.HasSuffix(raw, durationSuffix) {
		return 0, errors.Wrapf(ErrParse, "attribute %s=%q is not a %q duration", name, raw, durationSuffix)
	}

	nanos, err := strconv.ParseFloat(strings.TrimSuffix(raw, durationSuffix), 64)
	if err != nil || nanos < 0 || math.IsInf(nanos, 0) || math.IsNaN(nanos) {
		return 0, errors.Wrapf(ErrParse, "attribute %s=%q is not a duration", name, raw)
	}

	return nanos / nanosPerMilli, nil
}
