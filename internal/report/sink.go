// Package report writes run results to one or more sinks.
package report

import (
	"errors"

	"instcheck/internal/domain"
)

// Sink receives results as they are produced. Close finalizes the sink and must
// be called exactly once per run, also when the run failed.
type Sink interface {
	Add(result domain.Result) error
	Close() error
}

type multiSink []Sink

// Multi returns a Sink that forwards every call to all sinks in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Add(result domain.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Add(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collector keeps results in memory.
type Collector struct {
	Results []domain.Result
}

func (c *Collector) Add(result domain.Result) error {
	c.Results = append(c.Results, result)
	return nil
}

func (c *Collector) Close() error { return nil }
