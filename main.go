package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/makotom/flowstats/flowstats"
)

var (
	BuildName       = "\b"
	BuildAnnotation = "git"
)

type CmdOpts struct {
	configPath         string
	outputsDir         string
	plotDir            string
	plotFormat         string
	noPlot             bool
	csvPath            string
	workers            int
	confidenceLevel    float64
	showVersionAndExit bool
}

var cmdOpts = CmdOpts{}

var rootCmd = &cobra.Command{
	Use:   "flowstats",
	Short: "Summarize ns-3 flow monitor reports across simulation trials",
	Long: "flowstats reads FlowMon.xml reports from trial directories, derives packet loss, delay and jitter,\n" +
		"and prints their statistics across trials. Without a subcommand it behaves like \"flowstats trials\".",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmdOpts.showVersionAndExit {
			return nil
		}
		return runMode(cmd, flowstats.RunTrialsAndPrint)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cmdOpts.configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVarP(&cmdOpts.outputsDir, "outputs", "o", "", "Directory holding the simulation outputs (default \"outputs\")")
	flags.StringVar(&cmdOpts.plotDir, "plot-dir", "", "Directory to write plots to (default: the outputs directory)")
	flags.StringVar(&cmdOpts.plotFormat, "plot-format", "", "Plot image format: svg, png or pdf (default \"svg\")")
	flags.BoolVar(&cmdOpts.noPlot, "no-plot", false, "Skip rendering plots")
	flags.StringVar(&cmdOpts.csvPath, "csv", "", "Export grouped statistics to this CSV file")
	flags.IntVarP(&cmdOpts.workers, "workers", "j", 0, "Number of trials parsed concurrently (default 4)")
	flags.Float64Var(&cmdOpts.confidenceLevel, "confidence", 0, "Confidence level of the intervals (default 0.95)")
	rootCmd.Flags().BoolVar(&cmdOpts.showVersionAndExit, "version", false, "Show version information and exit")

	rootCmd.AddCommand(trialsCmd, metersCmd, aggregationCmd)
}

func buildConfig(flags *pflag.FlagSet) (*flowstats.Config, error) {
	cfg, err := flowstats.LoadConfig(cmdOpts.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("outputs") {
		cfg.OutputsDir = cmdOpts.outputsDir
	}
	if flags.Changed("plot-dir") {
		cfg.PlotDir = cmdOpts.plotDir
	}
	if flags.Changed("plot-format") {
		cfg.PlotFormat = cmdOpts.plotFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = cmdOpts.workers
	}
	if flags.Changed("confidence") {
		cfg.ConfidenceLevel = cmdOpts.confidenceLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runMode(cmd *cobra.Command, run func(context.Context, *log.Logger, flowstats.RunOptions) error) error {
	cfg, err := buildConfig(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printer := log.New(os.Stdout, "", 0)

	return run(ctx, printer, flowstats.RunOptions{
		Config:  cfg,
		NoPlot:  cmdOpts.noPlot,
		CSVPath: cmdOpts.csvPath,
	})
}

func main() {
	fmt.Printf("flowstats %s (%s)\n", BuildName, BuildAnnotation)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
