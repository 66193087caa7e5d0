package domain

import "time"

// Status is the outcome of a single check
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Result represents the outcome of a test case or one of its steps
type Result struct {
	Name     string
	Status   Status
	Message  string
	Duration time.Duration // not part of the XML document
}

// Passed creates a passed result.
func Passed(name, message string) Result {
	return Result{Name: name, Status: StatusPassed, Message: message}
}

// Failed creates a failed result.
func Failed(name, message string) Result {
	return Result{Name: name, Status: StatusFailed, Message: message}
}

// Summary contains the totals of a run
type Summary struct {
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Failures []Result // failed test case results, in run order
}

// Total returns the number of test cases that were evaluated or skipped.
func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Skipped
}
