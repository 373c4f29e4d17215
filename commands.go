package main

import (
	"github.com/spf13/cobra"

	"github.com/makotom/flowstats/flowstats"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Summarize all trial directories of the outputs directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, flowstats.RunTrialsAndPrint)
	},
}

var metersCmd = &cobra.Command{
	Use:   "meters",
	Short: "Summarize trials grouped by meter count",
	Long:  "meters expects <outputs>/<n>-meters/<trial>/FlowMon.xml and reports mean and confidence interval per meter count.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, flowstats.RunMetersAndPrint)
	},
}

var aggregationCmd = &cobra.Command{
	Use:   "aggregation",
	Short: "Summarize trials grouped by aggregation percentage and meter count",
	Long:  "aggregation expects <outputs>/aggregation-<p>/<n>-meters/<trial>/FlowMon.xml.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(cmd, flowstats.RunAggregationAndPrint)
	},
}
