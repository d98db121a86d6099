package contracts

import "fmt"

// FilterResult is the outcome of one filter stage for one candidate.
// A failed result carries exactly one reason: the first gate that
// rejected the candidate. Filters short-circuit, so a candidate failing
// several gates reports only the first.
type FilterResult struct {
	Ticker string `json:"ticker"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Pass returns a passing result for the ticker.
func Pass(ticker string) FilterResult {
	return FilterResult{Ticker: ticker, Passed: true}
}

// Reject returns a failing result with a formatted reason. Reasons
// embed the observed value and the violated threshold so a rejection
// log is diagnosable without re-running the filter.
func Reject(ticker, format string, args ...interface{}) FilterResult {
	return FilterResult{
		Ticker: ticker,
		Passed: false,
		Reason: fmt.Sprintf(format, args...),
	}
}
