package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// SpinnerRefreshRate is the animation interval of the fetch spinner.
const SpinnerRefreshRate = 120 * time.Millisecond

// Spinner abstracts a terminal spinner so that RunWithSpinner can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

// newSpinner is a variable so tests can substitute a fake.
var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s}
}

// RunWithSpinner runs fn while a spinner labelled with suffix animates on
// out. The spinner library stays silent when out is not a terminal.
func RunWithSpinner(out io.Writer, suffix string, fn func()) {
	s := newSpinner(out)
	s.UpdateSuffix(" " + suffix)
	s.Start()
	defer s.Stop()
	fn()
}
