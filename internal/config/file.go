// This file contains the optional YAML configuration file layer.

package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
)

// fileConfig mirrors AppConfig in a YAML document. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Start   *int           `yaml:"start"`
	End     *int           `yaml:"end"`
	Numbers *string        `yaml:"numbers"`
	Rules   *string        `yaml:"rules"`
	Tokens  *int           `yaml:"tokens"`
	APIURL  *string        `yaml:"api_url"`
	APIRPS  *float64       `yaml:"api_rps"`
	Timeout *time.Duration `yaml:"timeout"`
	Columns *int           `yaml:"columns"`
	Output  *string        `yaml:"output"`
	Quiet   *bool          `yaml:"quiet"`
	Verbose *bool          `yaml:"verbose"`
	JSON    *bool          `yaml:"json"`
	NoColor *bool          `yaml:"no_color"`
	Serve   *string        `yaml:"serve"`
}

// loadConfigFile reads a YAML configuration file. Unknown keys are errors.
func loadConfigFile(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, err
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, apperrors.WrapError(err, "failed to parse %s", path)
	}
	return fc, nil
}

// apply copies the file values into config for every flag that was not
// set on the command line. Environment overrides are applied afterwards,
// so the resulting priority is flags > env > file > defaults.
func (fc fileConfig) apply(config *AppConfig, fs *flag.FlagSet) {
	set := func(flags []string, assign func()) {
		if !isFlagSetAny(fs, flags...) {
			assign()
		}
	}
	if fc.Start != nil {
		set([]string{"start"}, func() { config.Start = *fc.Start })
	}
	if fc.End != nil {
		set([]string{"end"}, func() { config.End = *fc.End })
	}
	if fc.Numbers != nil {
		set([]string{"numbers"}, func() { config.NumbersText = *fc.Numbers })
	}
	if fc.Rules != nil {
		set([]string{"rules"}, func() { config.RulesText = *fc.Rules })
	}
	if fc.Tokens != nil {
		set([]string{"tokens"}, func() { config.Tokens = *fc.Tokens })
	}
	if fc.APIURL != nil {
		set([]string{"api-url"}, func() { config.APIURL = *fc.APIURL })
	}
	if fc.APIRPS != nil {
		set([]string{"api-rps"}, func() { config.APIRPS = *fc.APIRPS })
	}
	if fc.Timeout != nil {
		set([]string{"timeout"}, func() { config.Timeout = *fc.Timeout })
	}
	if fc.Columns != nil {
		set([]string{"columns"}, func() { config.Columns = *fc.Columns })
	}
	if fc.Output != nil {
		set([]string{"output", "o"}, func() { config.OutputFile = *fc.Output })
	}
	if fc.Quiet != nil {
		set([]string{"quiet", "q"}, func() { config.Quiet = *fc.Quiet })
	}
	if fc.Verbose != nil {
		set([]string{"verbose", "v"}, func() { config.Verbose = *fc.Verbose })
	}
	if fc.JSON != nil {
		set([]string{"json"}, func() { config.JSON = *fc.JSON })
	}
	if fc.NoColor != nil {
		set([]string{"no-color"}, func() { config.NoColor = *fc.NoColor })
	}
	if fc.Serve != nil {
		set([]string{"serve"}, func() { config.ServeAddr = *fc.Serve })
	}
}
