// Package logging provides the structured logging interface used across
// fizzcalc. Components depend on the Logger interface; the zerolog-backed
// adapter is the only production implementation.
package logging
