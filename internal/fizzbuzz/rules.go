package fizzbuzz

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule maps a divisor to the token emitted when it evenly divides a number.
// The zero value is a valid, inert rule.
type Rule struct {
	Divisor int    `json:"divisor"`
	Token   string `json:"token"`
}

// String renders the rule in the "divisor:token" form accepted by
// [ParseRuleSet].
func (r Rule) String() string {
	return strconv.Itoa(r.Divisor) + ":" + r.Token
}

// matches reports whether the rule applies to n. A zero divisor never
// matches and is never used as a modulus.
func (r Rule) matches(n int) bool {
	return r.Divisor != 0 && n%r.Divisor == 0
}

// RuleSet is an ordered list of rules. Order determines the concatenation
// order of matched tokens. A nil RuleSet means "not provided".
type RuleSet []Rule

// DefaultRules returns a fresh copy of the classic rule set {3:Fizz, 5:Buzz}.
func DefaultRules() RuleSet {
	return RuleSet{
		{Divisor: 3, Token: "Fizz"},
		{Divisor: 5, Token: "Buzz"},
	}
}

// OrDefault returns rs, or the default rules when rs is nil or empty.
// Absent and empty rule sets are the same case.
func (rs RuleSet) OrDefault() RuleSet {
	if len(rs) == 0 {
		return DefaultRules()
	}
	return rs
}

// String renders the set in the comma separated form accepted by
// [ParseRuleSet].
func (rs RuleSet) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// ParseRuleSet parses a rule list such as "3:Fizz,5:Buzz".
//
// Entries are separated by commas and surrounding whitespace is ignored.
// The token may be empty ("7:"), in which case the rule matches but
// contributes nothing. An empty string yields a nil RuleSet, which the
// drivers treat as the default rules.
//
// Parameters:
//   - s: The textual rule list.
//
// Returns:
//   - RuleSet: The parsed rules, in input order.
//   - error: An error describing the first malformed entry.
func ParseRuleSet(s string) (RuleSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	entries := strings.Split(s, ",")
	rules := make(RuleSet, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		divisorText, token, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("rule %d (%q): expected divisor:token", i+1, entry)
		}
		divisor, err := strconv.Atoi(strings.TrimSpace(divisorText))
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): invalid divisor: %w", i+1, entry, err)
		}
		rules = append(rules, Rule{Divisor: divisor, Token: strings.TrimSpace(token)})
	}
	return rules, nil
}

// ParseNumbers parses a comma separated integer list such as "1, 2,-3".
// An empty string yields an empty list.
func ParseNumbers(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}

	fields := strings.Split(s, ",")
	numbers := make([]int, 0, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("number %d (%q): %w", i+1, strings.TrimSpace(field), err)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}
