package fizzbuzz

import (
	"iter"
	"math"
	"strconv"
	"strings"
)

// maxPrealloc bounds the capacity reserved up front by ProcessRange so that
// a huge range grows its result slice incrementally instead of attempting a
// single enormous allocation.
const maxPrealloc = 1 << 16

// Evaluate maps n to its sequence output under rules.
//
// Rules are applied in order; the token of every rule whose non-zero divisor
// evenly divides n is appended to the output. When no rule matches, the
// decimal representation of n is returned. Evaluate applies exactly the
// rules it is given: default substitution is the drivers' job.
//
// Evaluate never panics. Zero divisors are skipped before any modulo, and
// math.MinInt % -1 is defined as 0 by the language.
func Evaluate(n int, rules RuleSet) string {
	var sb strings.Builder
	for _, r := range rules {
		if r.matches(n) {
			sb.WriteString(r.Token)
		}
	}
	if sb.Len() > 0 {
		return sb.String()
	}
	return strconv.Itoa(n)
}

// Range returns a lazy sequence of (n, output) pairs over the inclusive range
// [start, end], ascending when start <= end and descending otherwise.
// A nil or empty rules argument selects the default rules.
//
// The loop terminates on reaching end rather than stepping past it, so
// ranges touching math.MinInt or math.MaxInt never overflow.
func Range(start, end int, rules RuleSet) iter.Seq2[int, string] {
	rules = rules.OrDefault()
	step := 1
	if start > end {
		step = -1
	}
	return func(yield func(int, string) bool) {
		for n := start; ; n += step {
			if !yield(n, Evaluate(n, rules)) || n == end {
				return
			}
		}
	}
}

// ProcessRange evaluates every integer of the inclusive range [start, end].
// Both endpoints are always included; start > end iterates downwards, and
// start == end yields a single element.
//
// Parameters:
//   - start: The first integer to evaluate.
//   - end: The last integer to evaluate.
//   - rules: The rules to apply; nil or empty selects DefaultRules.
//
// Returns:
//   - []string: One output per integer, in iteration order.
func ProcessRange(start, end int, rules RuleSet) []string {
	size := RangeSize(start, end)
	results := make([]string, 0, min(size, maxPrealloc))
	for _, out := range Range(start, end, rules) {
		results = append(results, out)
	}
	return results
}

// ProcessNumbers evaluates each element of numbers in input order, without
// reordering or deduplication. A nil or empty input yields an empty,
// non-nil slice.
func ProcessNumbers(numbers []int, rules RuleSet) []string {
	results := make([]string, 0, len(numbers))
	if len(numbers) == 0 {
		return results
	}
	rules = rules.OrDefault()
	for _, n := range numbers {
		results = append(results, Evaluate(n, rules))
	}
	return results
}

// RangeSize returns the number of integers in the inclusive range between
// start and end, |end-start|+1, saturating at math.MaxUint64 for the one
// range (the whole int64 domain) whose size does not fit.
func RangeSize(start, end int) uint64 {
	lo, hi := start, end
	if lo > hi {
		lo, hi = hi, lo
	}
	diff := uint64(hi) - uint64(lo)
	if diff == math.MaxUint64 {
		return diff
	}
	return diff + 1
}
