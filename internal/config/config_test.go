package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig("fizzcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Start != DefaultStart || cfg.End != DefaultEnd {
		t.Errorf("range = %d..%d, want %d..%d", cfg.Start, cfg.End, DefaultStart, DefaultEnd)
	}
	if cfg.Rules != nil {
		t.Errorf("Rules = %v, want nil (default rules)", cfg.Rules)
	}
	if cfg.HasNumbers() {
		t.Error("HasNumbers() should be false by default")
	}
	if cfg.Columns != DefaultColumns || cfg.Timeout != DefaultTimeout || cfg.APIURL != DefaultAPIURL {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfig_Flags(t *testing.T) {
	args := []string{
		"--start", "-20", "--end", "127",
		"--rules", "5:Fizz,9:Buzz,27:Bar",
		"--numbers", "1, 2,3",
		"--api-rps", "0",
		"--columns", "0", "-o", "out.txt", "-q", "-v", "--json", "--no-color",
		"--timeout", "5s", "--serve", ":9090",
	}
	cfg, err := ParseConfig("fizzcalc", args, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}

	wantRules := fizzbuzz.RuleSet{{Divisor: 5, Token: "Fizz"}, {Divisor: 9, Token: "Buzz"}, {Divisor: 27, Token: "Bar"}}
	switch {
	case cfg.Start != -20 || cfg.End != 127:
		t.Errorf("range = %d..%d, want -20..127", cfg.Start, cfg.End)
	case !slices.Equal(cfg.Rules, wantRules):
		t.Errorf("Rules = %v, want %v", cfg.Rules, wantRules)
	case !slices.Equal(cfg.Numbers, []int{1, 2, 3}) || !cfg.HasNumbers():
		t.Errorf("Numbers = %v", cfg.Numbers)
	case cfg.Tokens != 0 || cfg.APIRPS != 0:
		t.Errorf("Tokens/APIRPS = %d/%g", cfg.Tokens, cfg.APIRPS)
	case cfg.Columns != 0 || cfg.OutputFile != "out.txt":
		t.Errorf("Columns/OutputFile = %d/%q", cfg.Columns, cfg.OutputFile)
	case !cfg.Quiet || !cfg.Verbose || !cfg.JSON || !cfg.NoColor:
		t.Errorf("bool flags not applied: %+v", cfg)
	case cfg.Timeout != 5*time.Second || cfg.ServeAddr != ":9090":
		t.Errorf("Timeout/ServeAddr = %s/%q", cfg.Timeout, cfg.ServeAddr)
	}
}

func TestParseConfig_Help(t *testing.T) {
	_, err := ParseConfig("fizzcalc", []string{"--help"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("error = %v, want flag.ErrHelp", err)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"malformed rules", []string{"--rules", "3Fizz"}},
		{"malformed numbers", []string{"--numbers", "1,two"}},
		{"too many tokens", []string{"--tokens", "51"}},
		{"negative tokens", []string{"--tokens", "-1"}},
		{"negative columns", []string{"--columns", "-2"}},
		{"zero timeout", []string{"--timeout", "0s"}},
		{"negative rps", []string{"--api-rps", "-1"}},
		{"tokens without url", []string{"--tokens", "1", "--api-url", ""}},
		{"rules with tokens", []string{"--tokens", "1", "--rules", "3:Fizz"}},
		{"positional arguments", []string{"15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("fizzcalc", tt.args, io.Discard)
			var configErr apperrors.ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}

func TestLoadConfigFile_ParseErrorNamesPath(t *testing.T) {
	path := writeConfigFile(t, "start: many\n")
	_, err := loadConfigFile(path)
	if err == nil {
		t.Fatal("loadConfigFile() should reject a non-integer start")
	}
	if !strings.HasPrefix(err.Error(), "failed to parse "+path+": ") {
		t.Errorf("error = %q, want the file path as context", err)
	}
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("error chain should keep the YAML cause, got %T", errors.Unwrap(err))
	}
}

func TestParseConfig_UnknownFlag(t *testing.T) {
	_, err := ParseConfig("fizzcalc", []string{"--bogus"}, io.Discard)
	var configErr apperrors.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"START", "10")
	t.Setenv(EnvPrefix+"END", "1")
	t.Setenv(EnvPrefix+"TOKENS", "3")
	t.Setenv(EnvPrefix+"TIMEOUT", "1m")
	t.Setenv(EnvPrefix+"QUIET", "yes")
	t.Setenv(EnvPrefix+"COLUMNS", "not-a-number")

	cfg, err := ParseConfig("fizzcalc", []string{"--end", "5"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}

	if cfg.Start != 10 {
		t.Errorf("Start = %d, want 10 from env", cfg.Start)
	}
	if cfg.End != 5 {
		t.Errorf("End = %d, want 5: flags take precedence over env", cfg.End)
	}
	if cfg.Rules != nil {
		t.Errorf("Rules = %v, want nil", cfg.Rules)
	}
	if cfg.Tokens != 3 || cfg.Timeout != time.Minute || !cfg.Quiet {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Columns != DefaultColumns {
		t.Errorf("Columns = %d, want default for unparseable env value", cfg.Columns)
	}
}

func TestApplyEnvOverrides_Lists(t *testing.T) {
	t.Setenv(EnvPrefix+"RULES", "2:Even")
	t.Setenv(EnvPrefix+"NUMBERS", "4,5")

	cfg, err := ParseConfig("fizzcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if !slices.Equal(cfg.Rules, fizzbuzz.RuleSet{{Divisor: 2, Token: "Even"}}) {
		t.Errorf("Rules = %v, want [2:Even]", cfg.Rules)
	}
	if !slices.Equal(cfg.Numbers, []int{4, 5}) {
		t.Errorf("Numbers = %v, want [4 5]", cfg.Numbers)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		val      string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"false", true, false},
		{"No", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		if got := parseBoolEnv(tt.val, tt.fallback); got != tt.want {
			t.Errorf("parseBoolEnv(%q, %v) = %v, want %v", tt.val, tt.fallback, got, tt.want)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fizzcalc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestParseConfig_File(t *testing.T) {
	path := writeConfigFile(t, `
start: 5
end: 25
rules: "2:Even,7:Seven"
columns: 4
timeout: 45s
quiet: true
serve: ":9000"
`)
	t.Setenv(EnvPrefix+"COLUMNS", "6")

	cfg, err := ParseConfig("fizzcalc", []string{"--config", path, "--end", "30"}, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}

	if cfg.Start != 5 {
		t.Errorf("Start = %d, want 5 from file", cfg.Start)
	}
	if cfg.End != 30 {
		t.Errorf("End = %d, want 30: flags take precedence over the file", cfg.End)
	}
	if cfg.Columns != 6 {
		t.Errorf("Columns = %d, want 6: env takes precedence over the file", cfg.Columns)
	}
	if cfg.Timeout != 45*time.Second || !cfg.Quiet || cfg.ServeAddr != ":9000" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	wantRules := fizzbuzz.RuleSet{{Divisor: 2, Token: "Even"}, {Divisor: 7, Token: "Seven"}}
	if !slices.Equal(cfg.Rules, wantRules) {
		t.Errorf("Rules = %v, want %v", cfg.Rules, wantRules)
	}
}

func TestParseConfig_FileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "numbers: \"3,5\"\n")
	t.Setenv(EnvPrefix+"CONFIG", path)

	cfg, err := ParseConfig("fizzcalc", nil, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if !slices.Equal(cfg.Numbers, []int{3, 5}) || cfg.ConfigFile != path {
		t.Errorf("Numbers/ConfigFile = %v/%q", cfg.Numbers, cfg.ConfigFile)
	}
}

func TestParseConfig_EmptyFile(t *testing.T) {
	path := writeConfigFile(t, "")
	cfg, err := ParseConfig("fizzcalc", []string{"--config", path}, io.Discard)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Start != DefaultStart || cfg.End != DefaultEnd {
		t.Errorf("empty file should keep defaults, got %d..%d", cfg.Start, cfg.End)
	}
}

func TestParseConfig_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") }},
		{"unknown key", func(t *testing.T) string { return writeConfigFile(t, "algorithm: fast\n") }},
		{"wrong type", func(t *testing.T) string { return writeConfigFile(t, "start: many\n") }},
		{"invalid value", func(t *testing.T) string { return writeConfigFile(t, "tokens: 500\n") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig("fizzcalc", []string{"--config", tt.path(t)}, io.Discard)
			var configErr apperrors.ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("error = %v, want ConfigError", err)
			}
		})
	}
}
