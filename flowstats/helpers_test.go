package flowstats

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
)

func assertClose(t *testing.T, got, want float64) {
	t.Helper()
	assert.DeepEqual(t, got, want, cmpopts.EquateApprox(0, 1e-9))
}

// quantile based values are compared loosely
func assertCloseT(t *testing.T, got, want float64) {
	t.Helper()
	assert.DeepEqual(t, got, want, cmpopts.EquateApprox(1e-8, 1e-8))
}

func flowXML(flowID int, tx, rx, lost uint64, delaySum, jitterSum string) string {
	return fmt.Sprintf(`    <Flow flowId="%d" timeFirstTxPacket="+1e+09ns" timeLastRxPacket="+9.9e+09ns" delaySum="%s" jitterSum="%s" txBytes="%d" rxBytes="%d" txPackets="%d" rxPackets="%d" lostPackets="%d" timesForwarded="0">
      <delayHistogram nBins="1">
        <bin index="0" start="0" width="0.001" count="%d" />
      </delayHistogram>
      <jitterHistogram nBins="0" />
    </Flow>
`, flowID, delaySum, jitterSum, tx*512, rx*512, tx, rx, lost, rx)
}

func flowMonitorDoc(flows ...string) string {
	return `<?xml version="1.0" ?>
<FlowMonitor>
  <FlowStats>
` + strings.Join(flows, "") + `  </FlowStats>
  <Ipv4FlowClassifier>
    <Flow flowId="1" sourceAddress="10.1.1.1" destinationAddress="10.1.1.2" protocol="17" sourcePort="49153" destinationPort="9" />
  </Ipv4FlowClassifier>
  <FlowProbes>
    <FlowProbe index="0">
      <FlowStats flowId="1" packets="100" bytes="51200" delayFromFirstProbeSum="+0.0ns" />
    </FlowProbe>
  </FlowProbes>
</FlowMonitor>
`
}

// trialDoc builds a single flow report of 100 transmitted packets whose
// derived loss is lost%, and whose mean delay and jitter are the given
// whole milliseconds.
func trialDoc(lost uint64, delayMS, jitterMS uint64) string {
	rx := 100 - lost
	return flowMonitorDoc(flowXML(
		1, 100, rx, lost,
		fmt.Sprintf("+%dns", delayMS*rx*1000*1000),
		fmt.Sprintf("+%dns", jitterMS*rx*1000*1000),
	))
}

func addTrial(fsys fstest.MapFS, dir string, doc string) {
	fsys[dir+"/FlowMon.xml"] = &fstest.MapFile{Data: []byte(doc)}
}

func trialsWithLoss(losses ...float64) []*TrialMetrics {
	ret := []*TrialMetrics{}
	for index, loss := range losses {
		ret = append(ret, &TrialMetrics{
			Name:         fmt.Sprintf("trial%d", index),
			Flows:        1,
			LossPercent:  loss,
			MeanDelayMS:  2 * loss,
			MeanJitterMS: loss / 2,
		})
	}
	return ret
}
