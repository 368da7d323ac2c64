// Package ui holds the color themes shared by the console output.
//
// Themes expose raw ANSI codes for inline coloring of sequence values and a
// lipgloss style for titles. NO_COLOR and --no-color select the colorless
// theme.
package ui
