package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color scheme for console output.
// The string fields hold ANSI escape codes; Accent holds the matching
// lipgloss color used for styled blocks such as titles.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Token colors rule tokens in sequence output.
	Token string
	// Number colors plain numbers in sequence output.
	Number string
	// Success indicates completed operations.
	Success string
	// Warning is used for degraded but non-fatal conditions.
	Warning string
	// Error indicates failures.
	Error string
	// Reset clears all formatting.
	Reset string
	// Accent is the title color.
	Accent lipgloss.TerminalColor
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:    "dark",
		Token:   "\033[38;5;208m", // Orange
		Number:  "\033[38;5;245m", // Grey
		Success: "\033[38;5;82m",  // Bright green
		Warning: "\033[38;5;220m", // Yellow
		Error:   "\033[38;5;196m", // Red
		Reset:   "\033[0m",
		Accent:  lipgloss.Color("#FF8C00"),
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color is provided.
	NoColorTheme = Theme{
		Name:   "none",
		Accent: lipgloss.NoColor{},
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the currently active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/):
// when it is set, or noColor is true, colors are disabled.
func InitTheme(noColor bool) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}

// ColorToken returns the escape code for rule tokens.
func ColorToken() string { return GetCurrentTheme().Token }

// ColorNumber returns the escape code for plain numbers.
func ColorNumber() string { return GetCurrentTheme().Number }

// ColorSuccess returns the escape code for success messages.
func ColorSuccess() string { return GetCurrentTheme().Success }

// ColorWarning returns the escape code for warnings.
func ColorWarning() string { return GetCurrentTheme().Warning }

// ColorError returns the escape code for failures.
func ColorError() string { return GetCurrentTheme().Error }

// ColorReset returns the escape code clearing all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// TitleStyle returns the lipgloss style used for section titles.
func TitleStyle() lipgloss.Style {
	t := GetCurrentTheme()
	style := lipgloss.NewStyle().Foreground(t.Accent)
	if t.Name != NoColorTheme.Name {
		style = style.Bold(true)
	}
	return style
}
