package flowstats

import (
	_ "embed"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed config.cue
var configSchema []byte

const defaultOutputsDir = "outputs"

var plotFormats = map[string]bool{"svg": true, "png": true, "pdf": true}

type Config struct {
	OutputsDir      string     `yaml:"outputs_dir"`
	FlowMonFile     string     `yaml:"flowmon_file"`
	TrialPrefix     string     `yaml:"trial_prefix"`
	Meters          KeyPattern `yaml:"meters"`
	Aggregation     KeyPattern `yaml:"aggregation"`
	ConfidenceLevel float64    `yaml:"confidence_level"`
	Workers         int        `yaml:"workers"`
	PlotDir         string     `yaml:"plot_dir"`
	PlotFormat      string     `yaml:"plot_format"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.OutputsDir == "" {
		c.OutputsDir = defaultOutputsDir
	}
	if c.FlowMonFile == "" {
		c.FlowMonFile = defaultFlowMonFile
	}
	if c.TrialPrefix == "" {
		c.TrialPrefix = defaultTrialPrefix
	}
	if c.Meters == (KeyPattern{}) {
		c.Meters = KeyPattern{Suffix: "-meters"}
	}
	if c.Aggregation == (KeyPattern{}) {
		c.Aggregation = KeyPattern{Prefix: "aggregation-"}
	}
	if c.ConfidenceLevel == 0 {
		c.ConfidenceLevel = DefaultConfidenceLevel
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
	if c.PlotFormat == "" {
		c.PlotFormat = "svg"
	}
}

// Validate checks the values that may also come from command line flags.
func (c *Config) Validate() error {
	if !(c.ConfidenceLevel > 0 && c.ConfidenceLevel < 1) {
		return errors.Errorf("confidence level %v out of range (0, 1)", c.ConfidenceLevel)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	if !plotFormats[c.PlotFormat] {
		return errors.Errorf("unsupported plot format %q", c.PlotFormat)
	}
	return nil
}

func (c *Config) LoadOptions() LoadOptions {
	return LoadOptions{
		FlowMonFile: c.FlowMonFile,
		TrialPrefix: c.TrialPrefix,
		Workers:     c.Workers,
	}
}

// LoadConfig reads a YAML config file, validates it against the embedded CUE
// schema and fills unset fields with defaults. An empty path yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}

	return ParseConfig(configPath, data)
}

func ParseConfig(filename string, data []byte) (*Config, error) {
	if err := ValidateWithCue(filename, data); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal YAML config")
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateWithCue checks YAML config data against the #Config definition of
// the embedded schema.
func ValidateWithCue(filename string, data []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(configSchema, cue.Filename("config.cue"))
	if schemaVal.Err() != nil {
		return errors.Wrap(schemaVal.Err(), "cannot compile config schema")
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return errors.Wrap(err, "cannot parse YAML config")
	}
	configVal := ctx.BuildFile(file)
	if configVal.Err() != nil {
		return errors.Wrap(configVal.Err(), "cannot build YAML config")
	}

	final := schemaVal.LookupPath(cue.ParsePath("#Config")).Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return errors.Wrap(err, "config validation failed")
	}

	return nil
}
