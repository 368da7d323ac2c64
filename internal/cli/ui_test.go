package cli

import (
	"io"
	"testing"
)

// fakeSpinner records the calls made by RunWithSpinner.
type fakeSpinner struct {
	calls  []string
	suffix string
}

func (f *fakeSpinner) Start()                { f.calls = append(f.calls, "start") }
func (f *fakeSpinner) Stop()                 { f.calls = append(f.calls, "stop") }
func (f *fakeSpinner) UpdateSuffix(s string) { f.suffix = s }

func TestRunWithSpinner(t *testing.T) {
	fake := &fakeSpinner{}
	orig := newSpinner
	newSpinner = func(io.Writer) Spinner { return fake }
	defer func() { newSpinner = orig }()

	ran := false
	RunWithSpinner(io.Discard, "Fetching tokens", func() {
		ran = true
		if len(fake.calls) != 1 || fake.calls[0] != "start" {
			t.Errorf("spinner should be running during fn, calls = %v", fake.calls)
		}
	})

	if !ran {
		t.Error("fn was not called")
	}
	if len(fake.calls) != 2 || fake.calls[1] != "stop" {
		t.Errorf("calls = %v, want [start stop]", fake.calls)
	}
	if fake.suffix != " Fetching tokens" {
		t.Errorf("suffix = %q, want %q", fake.suffix, " Fetching tokens")
	}
}

func TestRealSpinner_NonTerminal(t *testing.T) {
	s := newSpinner(io.Discard)
	s.UpdateSuffix(" working")
	s.Start()
	s.Stop()
}
