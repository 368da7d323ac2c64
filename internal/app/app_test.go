package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fizzcalc/internal/config"
	apperrors "github.com/agbru/fizzcalc/internal/errors"
	"github.com/agbru/fizzcalc/internal/fizzbuzz"
	"github.com/agbru/fizzcalc/internal/logging"
	"github.com/agbru/fizzcalc/internal/wordapi"
)

// stubSource returns fixed rules and remembers the requested count.
type stubSource struct {
	rules     fizzbuzz.RuleSet
	err       error
	requested int
}

func (s *stubSource) FetchTokens(_ context.Context, count int) fizzbuzz.FetchResult {
	s.requested = count
	return fizzbuzz.FetchResult{Requested: count, Rules: s.rules, Err: s.err}
}

func newTestApp(t *testing.T, args []string, opts ...AppOption) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	opts = append([]AppOption{WithLogger(logging.NewNopLogger())}, opts...)
	app, err := New(append([]string{"fizzcalc", "--no-color"}, args...), &errBuf, opts...)
	if err != nil {
		t.Fatalf("New() error: %v (stderr: %s)", err, errBuf.String())
	}
	return app, &errBuf
}

func TestNew_DefaultSource(t *testing.T) {
	app, _ := newTestApp(t, []string{"--api-url", "http://localhost:1/word"})

	if _, ok := app.Source.(*wordapi.Client); !ok {
		t.Fatalf("Source = %T, want *wordapi.Client", app.Source)
	}
	if app.Metrics != nil {
		t.Error("Metrics should only be created in serve mode")
	}
}

func TestNew_ServeModeCreatesMetrics(t *testing.T) {
	app, _ := newTestApp(t, []string{"--serve", "127.0.0.1:0"})
	if app.Metrics == nil {
		t.Error("Metrics should be created in serve mode")
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		_, err := New([]string{"fizzcalc", "--help"}, io.Discard)
		if !IsHelpError(err) {
			t.Errorf("error = %v, want help error", err)
		}
		if ExitCode(err) != apperrors.ExitSuccess {
			t.Errorf("ExitCode() = %d, want 0", ExitCode(err))
		}
	})

	t.Run("config error", func(t *testing.T) {
		_, err := New([]string{"fizzcalc", "--rules", "nonsense"}, io.Discard)
		var configErr apperrors.ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("error = %v, want ConfigError", err)
		}
		if ExitCode(err) != apperrors.ExitErrorConfig {
			t.Errorf("ExitCode() = %d, want %d", ExitCode(err), apperrors.ExitErrorConfig)
		}
	})
}

func TestRun_QuietRange(t *testing.T) {
	app, _ := newTestApp(t, []string{"--start", "1", "--end", "15", "-q"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, want 0", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 15 || lines[2] != "Fizz" || lines[4] != "Buzz" || lines[14] != "FizzBuzz" {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRun_TableOutput(t *testing.T) {
	app, _ := newTestApp(t, []string{"--start", "1", "--end", "15", "--columns", "10"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, want 0", code)
	}
	for _, want := range []string{
		"1, 2, Fizz, 4, Buzz, Fizz, 7, 8, Fizz, Buzz,\n",
		"11, Fizz, 13, 14, FizzBuzz\n",
		`3 → "Fizz"`,
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestRun_NumbersJSON(t *testing.T) {
	app, _ := newTestApp(t, []string{"--numbers", "30,7,-9", "--rules", "2:Even,3:Three", "--json"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, want 0", code)
	}
	var report fizzbuzz.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	want := []string{"EvenThree", "7", "Three"}
	if strings.Join(report.Results, ",") != strings.Join(want, ",") {
		t.Errorf("Results = %v, want %v", report.Results, want)
	}
}

func TestRun_RemoteTokens(t *testing.T) {
	t.Run("fetched rules replace the defaults", func(t *testing.T) {
		src := &stubSource{rules: fizzbuzz.RuleSet{{Divisor: 4, Token: "Quad"}}}
		app, _ := newTestApp(t, []string{"--start", "1", "--end", "8", "--tokens", "2", "-q"}, WithTokenSource(src))

		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("Run() = %d, want 0", code)
		}
		if src.requested != 2 {
			t.Errorf("requested = %d, want 2", src.requested)
		}
		if got := strings.Fields(out.String()); got[3] != "Quad" || got[7] != "Quad" || got[2] != "3" {
			t.Errorf("unexpected output: %v", got)
		}
	})

	t.Run("empty fetch falls back to defaults", func(t *testing.T) {
		src := &stubSource{err: errors.New("unreachable")}
		app, _ := newTestApp(t, []string{"--start", "15", "--end", "15", "--tokens", "1", "-q"}, WithTokenSource(src))

		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("Run() = %d, want 0", code)
		}
		if strings.TrimSpace(out.String()) != "FizzBuzz" {
			t.Errorf("output = %q, want FizzBuzz", out.String())
		}
	})

	t.Run("decorated output shows spinner path", func(t *testing.T) {
		src := &stubSource{rules: fizzbuzz.RuleSet{{Divisor: 1, Token: "All"}}}
		app, _ := newTestApp(t, []string{"--start", "1", "--end", "2", "--tokens", "1"}, WithTokenSource(src))

		var out bytes.Buffer
		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("Run() = %d, want 0", code)
		}
		if !strings.Contains(out.String(), "All, All") {
			t.Errorf("output should contain fetched tokens, got:\n%s", out.String())
		}
	})
}

func TestRun_CanceledContext(t *testing.T) {
	src := &stubSource{}
	app, _ := newTestApp(t, []string{"--tokens", "1", "-q"}, WithTokenSource(src))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if code := app.Run(ctx, &out); code != apperrors.ExitErrorCanceled {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
	if out.Len() != 0 {
		t.Errorf("no output expected after cancellation, got %q", out.String())
	}
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fizz.txt")
	app, _ := newTestApp(t, []string{"--start", "1", "--end", "5", "-o", path})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, want 0", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.HasSuffix(string(data), "1\n2\nFizz\n4\nBuzz\n") {
		t.Errorf("unexpected file content:\n%s", data)
	}
	if !strings.Contains(out.String(), "Results saved to "+path) {
		t.Errorf("output should confirm the saved file, got:\n%s", out.String())
	}
}

func TestRun_OutputFileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	app, errBuf := newTestApp(t, []string{"--start", "1", "--end", "3", "-q", "-o", filepath.Join(blocker, "out.txt")})

	if code := app.Run(context.Background(), io.Discard); code != apperrors.ExitErrorGeneric {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "Error saving results") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRun_ServeStopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, []string{"--serve", "127.0.0.1:0"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan int, 1)
	go func() { done <- app.Run(ctx, io.Discard) }()

	select {
	case code := <-done:
		if code != apperrors.ExitSuccess {
			t.Errorf("Run() = %d, want 0", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve mode did not stop after cancellation")
	}
}

func TestRun_ServeListenFailure(t *testing.T) {
	app, _ := newTestApp(t, []string{"--serve", "not-an-address"})
	if code := app.Run(context.Background(), io.Discard); code != apperrors.ExitErrorGeneric {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	if !HasVersionFlag([]string{"-q", "--version"}) || HasVersionFlag([]string{"--verbose"}) {
		t.Error("HasVersionFlag() mismatch")
	}

	var out bytes.Buffer
	PrintVersion(&out)
	if !strings.HasPrefix(out.String(), "fizzcalc ") {
		t.Errorf("PrintVersion() = %q", out.String())
	}
}

func TestConfigDefaultsFlowThrough(t *testing.T) {
	app, _ := newTestApp(t, nil)
	if app.Config.Start != config.DefaultStart || app.Config.End != config.DefaultEnd {
		t.Errorf("range = %d..%d", app.Config.Start, app.Config.End)
	}
}
