package fizzbuzz

// Report is the serializable summary of one evaluation pass, shared by the
// JSON console output and the HTTP API.
type Report struct {
	// Start and End are set for range evaluations.
	Start *int `json:"start,omitempty"`
	End   *int `json:"end,omitempty"`
	// Numbers is set for list evaluations. An empty list is kept in JSON
	// as [], a range report has none.
	Numbers []int `json:"numbers,omitzero"`
	// Rules are the rules actually applied, after default substitution.
	Rules   RuleSet  `json:"rules"`
	Count   int      `json:"count"`
	Results []string `json:"results"`
}

// NewRangeReport evaluates [start, end] and wraps the outcome in a Report.
func NewRangeReport(start, end int, rules RuleSet) Report {
	rules = rules.OrDefault()
	results := ProcessRange(start, end, rules)
	return Report{Start: &start, End: &end, Rules: rules, Count: len(results), Results: results}
}

// NewNumbersReport evaluates numbers and wraps the outcome in a Report.
func NewNumbersReport(numbers []int, rules RuleSet) Report {
	rules = rules.OrDefault()
	results := ProcessNumbers(numbers, rules)
	if numbers == nil {
		numbers = []int{}
	}
	return Report{Numbers: numbers, Rules: rules, Count: len(results), Results: results}
}
