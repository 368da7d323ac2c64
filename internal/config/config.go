// Package config parses and validates the fizzcalc command-line
// configuration. Values resolve with the priority
// CLI flags > FIZZCALC_* environment variables > YAML config file > defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "FIZZCALC_"

const (
	// DefaultStart and DefaultEnd bound the range computed when no
	// explicit numbers are given.
	DefaultStart = 1
	DefaultEnd   = 100
	// DefaultColumns is the number of values printed per output line.
	DefaultColumns = 10
	// DefaultTimeout bounds a whole run, remote fetches included.
	DefaultTimeout = 30 * time.Second
	// DefaultAPIURL is the word service queried for remote tokens.
	DefaultAPIURL = "https://pie-healthy-swift.glitch.me/word"
	// DefaultAPIRPS paces word service requests.
	DefaultAPIRPS = 5.0
	// MaxTokens caps the number of remote tokens per run.
	MaxTokens = 50
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Start and End bound the inclusive range to evaluate.
	Start, End int
	// NumbersText is the raw --numbers value; Numbers is its parsed form.
	NumbersText string
	Numbers     []int
	// RulesText is the raw --rules value; Rules is its parsed form. A nil
	// Rules selects the default rule set.
	RulesText string
	Rules     fizzbuzz.RuleSet
	// Tokens is the number of rules to fetch from the word service.
	Tokens int
	// APIURL is the word service endpoint.
	APIURL string
	// APIRPS is the word service request rate; 0 disables pacing.
	APIRPS float64
	// Timeout bounds the run.
	Timeout time.Duration
	// Columns is the number of values per output line; 0 prints one line.
	Columns int
	// OutputFile optionally receives the results.
	OutputFile string
	// Quiet prints one bare value per line.
	Quiet bool
	// Verbose enables debug logging.
	Verbose bool
	// JSON prints a JSON report instead of the table.
	JSON bool
	// NoColor disables colored output.
	NoColor bool
	// ServeAddr, when set, runs the HTTP API on that address.
	ServeAddr string
	// ConfigFile is the optional YAML file the values were loaded from.
	ConfigFile string
}

// HasNumbers reports whether an explicit number list was requested.
func (c AppConfig) HasNumbers() bool {
	return c.NumbersText != ""
}

// ParseConfig parses command-line arguments into an AppConfig.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The arguments, without the program name.
//   - errorWriter: Destination of usage and parse errors.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp when help was requested, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintln(errorWriter, "Computes a generalized FizzBuzz sequence over a range or a list of numbers.")
		fmt.Fprintf(errorWriter, "Every option may also be set with a %s* environment variable.\n\nOptions:\n", EnvPrefix)
		fs.PrintDefaults()
	}

	config := AppConfig{}
	fs.IntVar(&config.Start, "start", DefaultStart, "First number of the range (inclusive).")
	fs.IntVar(&config.End, "end", DefaultEnd, "Last number of the range (inclusive); may be below --start.")
	fs.StringVar(&config.NumbersText, "numbers", "", "Comma separated numbers to evaluate instead of a range (e.g. \"1,15,-3\").")
	fs.StringVar(&config.RulesText, "rules", "", "Comma separated divisor:token rules (default \"3:Fizz,5:Buzz\").")
	fs.IntVar(&config.Tokens, "tokens", 0, fmt.Sprintf("Number of rules to fetch from the word service (0-%d).", MaxTokens))
	fs.StringVar(&config.APIURL, "api-url", DefaultAPIURL, "Word service endpoint.")
	fs.Float64Var(&config.APIRPS, "api-rps", DefaultAPIRPS, "Word service requests per second (0 disables pacing).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of the run.")
	fs.IntVar(&config.Columns, "columns", DefaultColumns, "Values per output line (0 for a single line).")
	fs.StringVar(&config.OutputFile, "output", "", "Write the results to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print one value per line, without decoration.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.JSON, "json", false, "Print a JSON report.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.ServeAddr, "serve", "", "Serve the HTTP API on this address (e.g. \":8080\").")
	fs.StringVar(&config.ConfigFile, "config", "", "Load option values from this YAML file.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if config.ConfigFile == "" {
		config.ConfigFile = os.Getenv(EnvPrefix + "CONFIG")
	}
	if config.ConfigFile != "" {
		fc, err := loadConfigFile(config.ConfigFile)
		if err != nil {
			return AppConfig{}, apperrors.NewConfigError("invalid --config: %v", err)
		}
		fc.apply(&config, fs)
	}

	applyEnvOverrides(&config, fs)

	if err := config.resolve(); err != nil {
		return AppConfig{}, err
	}
	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// resolve parses the textual rule and number lists.
func (c *AppConfig) resolve() error {
	rules, err := fizzbuzz.ParseRuleSet(c.RulesText)
	if err != nil {
		return apperrors.NewConfigError("invalid --rules: %v", err)
	}
	c.Rules = rules

	numbers, err := fizzbuzz.ParseNumbers(c.NumbersText)
	if err != nil {
		return apperrors.NewConfigError("invalid --numbers: %v", err)
	}
	c.Numbers = numbers
	return nil
}

// Validate checks the configuration for out-of-range values.
func (c AppConfig) Validate() error {
	switch {
	case c.Tokens < 0 || c.Tokens > MaxTokens:
		return apperrors.NewConfigError("--tokens must be between 0 and %d, got %d", MaxTokens, c.Tokens)
	case c.APIRPS < 0:
		return apperrors.NewConfigError("--api-rps must not be negative, got %g", c.APIRPS)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	case c.Columns < 0:
		return apperrors.NewConfigError("--columns must not be negative, got %d", c.Columns)
	case c.Tokens > 0 && len(c.Rules) > 0:
		return apperrors.NewConfigError("--rules and --tokens cannot be combined")
	case c.Tokens > 0 && c.APIURL == "":
		return apperrors.NewConfigError("--api-url is required when --tokens is set")
	}
	return nil
}
