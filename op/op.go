// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

// Package op records the outcome of each step of an obfuscation run.
package op

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status describes the result of an op
type Status string

const (
	// Success means the step completed.
	Success Status = "success"
	// Fail means the step returned an error.
	Fail Status = "fail"
	// Skip means the step never ran because an earlier step failed.
	Skip Status = "skip"
	// Canceled means the step was interrupted by its context.
	Canceled Status = "canceled"
)

// Op is the record of one step.
type Op struct {
	Identifier string    `json:"op"`
	ErrString  string    `json:"error,omitempty"` // this simplifies json marshaling
	Error      error     `json:"-"`
	Status     Status    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// New builds an Op. When err is non-nil the status is derived from it and the given status is ignored.
func New(id string, status Status, err error, start, end time.Time) Op {
	o := Op{
		Identifier: id,
		Status:     status,
		Start:      start,
		End:        end,
	}
	if err != nil {
		o.Error = err
		o.ErrString = err.Error()
		o.Status = Fail
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			o.Status = Canceled
		}
	}
	return o
}

// Skipped builds the Op of a step that never ran.
func Skipped(id string) Op {
	return Op{Identifier: id, Status: Skip}
}

// Duration is how long the step took; zero for skipped steps.
func (o Op) Duration() time.Duration {
	if o.Start.IsZero() || o.End.IsZero() {
		return 0
	}
	return o.End.Sub(o.Start)
}

// StatusCounts takes a slice of ops and returns a map containing sums of each Status
func StatusCounts(ops []Op) (map[Status]int, error) {
	statuses := make(map[Status]int)
	for _, o := range ops {
		if o.Status == "" {
			return nil, fmt.Errorf("unable to build Statuses map, op not run: op=%s", o.Identifier)
		}
		statuses[o.Status]++
	}
	return statuses, nil
}
